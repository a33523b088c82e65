package wsgi

import (
	"fmt"
	"net/http"
	"slices"
)

// chunkRecorder is an http.ResponseWriter keeping every Write as a separate chunk.
type chunkRecorder struct {
	header      http.Header
	code        int
	wroteHeader bool
	chunks      [][]byte
}

func newChunkRecorder() *chunkRecorder {
	return &chunkRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *chunkRecorder) Header() http.Header {
	return r.header
}

func (r *chunkRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.code = code
}

func (r *chunkRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		if r.header.Get("Content-Type") == "" && r.header.Get("Transfer-Encoding") == "" && len(p) > 0 {
			r.header.Set("Content-Type", http.DetectContentType(p))
		}
		r.WriteHeader(http.StatusOK)
	}
	r.chunks = append(r.chunks, slices.Clone(p))
	return len(p), nil
}

// Flush commits the status code. Chunks are only released once the handler returns.
func (r *chunkRecorder) Flush() {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
}

func (r *chunkRecorder) statusLine() string {
	return fmt.Sprintf("%03d %s", r.code, http.StatusText(r.code))
}

func (r *chunkRecorder) headerPairs() []Header {
	names := make([]string, 0, len(r.header))
	for name := range r.header {
		names = append(names, name)
	}
	slices.Sort(names)

	var pairs []Header
	for _, name := range names {
		for _, v := range r.header[name] {
			pairs = append(pairs, Header{Name: name, Value: v})
		}
	}
	return pairs
}

func (r *chunkRecorder) body() Body {
	if len(r.chunks) == 0 {
		return Chunks([]byte{})
	}
	return Chunks(r.chunks...)
}
