package wsgi

import (
	"context"
	"iter"
	"net/http"

	"github.com/pkg/errors"
)

// Header is a single response header name/value pair.
type Header struct {
	Name  string
	Value string
}

// StartResponseFunc is the callback an Application invokes exactly once,
// before producing any body content, to report the status line (e.g.
// "404 Not Found") and the response headers. excInfo is accepted for
// compatibility and may be nil.
type StartResponseFunc func(status string, headers []Header, excInfo error) error

// Body is the lazy sequence of response body chunks.
type Body = iter.Seq[[]byte]

// Application is the synchronous request-processing entry point.
type Application interface {
	Call(ctx context.Context, env Environ, start StartResponseFunc) (Body, error)
}

// ApplicationFunc adapts a function to the Application interface.
type ApplicationFunc func(ctx context.Context, env Environ, start StartResponseFunc) (Body, error)

// Call implements Application.
func (f ApplicationFunc) Call(ctx context.Context, env Environ, start StartResponseFunc) (Body, error) {
	return f(ctx, env, start)
}

// Chunks returns a Body yielding the given chunks in order.
func Chunks(chunks ...[]byte) Body {
	return func(yield func([]byte) bool) {
		for _, c := range chunks {
			if !yield(c) {
				return
			}
		}
	}
}

type environKey struct{}

// NewContext returns a copy of ctx carrying env.
func NewContext(ctx context.Context, env Environ) context.Context {
	return context.WithValue(ctx, environKey{}, env)
}

// EnvironFromContext returns the environ a request was built from, if any.
func EnvironFromContext(ctx context.Context) (Environ, bool) {
	env, ok := ctx.Value(environKey{}).(Environ)
	return env, ok
}

type handlerApplication struct {
	handler http.Handler
}

// FromHandler exposes an http.Handler through the Application contract.
// Each Write performed by the handler becomes one body chunk; a handler that
// writes nothing yields a single empty chunk.
func FromHandler(h http.Handler) Application {
	return handlerApplication{handler: h}
}

func (a handlerApplication) Call(ctx context.Context, env Environ, start StartResponseFunc) (Body, error) {
	req, err := env.Request()
	if err != nil {
		return nil, err
	}
	req = req.WithContext(NewContext(ctx, env))

	rec := newChunkRecorder()
	a.handler.ServeHTTP(rec, req)

	if err = start(rec.statusLine(), rec.headerPairs(), nil); err != nil {
		return nil, errors.Wrap(err, "failed to start response")
	}
	return rec.body(), nil
}
