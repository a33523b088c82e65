// Package wsgi provides the synchronous environ/start-response contract used to run
// framework-authored HTTP handlers behind an event-driven invoker.
package wsgi

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cgi"
	"strings"
)

// Protocol variables.
const (
	KeyRequestMethod  = "REQUEST_METHOD"
	KeyPathInfo       = "PATH_INFO"
	KeyQueryString    = "QUERY_STRING"
	KeyContentType    = "CONTENT_TYPE"
	KeyContentLength  = "CONTENT_LENGTH"
	KeyServerPort     = "SERVER_PORT"
	KeyServerProtocol = "SERVER_PROTOCOL"
	KeyRemoteAddr     = "REMOTE_ADDR"
	KeyHost           = "HOST"
	KeyScriptName     = "SCRIPT_NAME"
	KeyHTTPHost       = "HTTP_HOST"
	KeyHTTPS          = "HTTPS"

	HeaderPrefix = "HTTP_"
)

// Metadata variables.
const (
	KeyURLScheme    = "wsgi.url_scheme"
	KeyInput        = "wsgi.input"
	KeyVersion      = "wsgi.version"
	KeyErrors       = "wsgi.errors"
	KeyMultithread  = "wsgi.multithread"
	KeyMultiprocess = "wsgi.multiprocess"
	KeyRunOnce      = "wsgi.run_once"
)

// Version is the protocol version advertised under KeyVersion.
var Version = [2]int{1, 0}

// Environ is the per-request variable mapping handed to an Application.
// Values are heterogeneous: strings for protocol variables, an io.Reader
// for the input stream, an io.Writer for the error stream, booleans for
// the execution flags and a [2]int for the version.
type Environ map[string]any

// String returns the string value stored under key.
func (e Environ) String(key string) (string, bool) {
	v, ok := e[key]
	if !ok || v == nil {
		return "", false
	}
	switch vt := v.(type) {
	case string:
		return vt, true
	case fmt.Stringer:
		return vt.String(), true
	default:
		return fmt.Sprint(vt), true
	}
}

// Get returns the string value stored under key, or the empty string.
func (e Environ) Get(key string) string {
	s, _ := e.String(key)
	return s
}

// SetDefault stores value under key unless the key is already present.
func (e Environ) SetDefault(key string, value any) {
	if _, ok := e[key]; !ok {
		e[key] = value
	}
}

// Input returns the request body stream. A string input (as produced by a
// decoded JSON environ) is wrapped in a reader.
func (e Environ) Input() io.Reader {
	switch v := e[KeyInput].(type) {
	case io.Reader:
		return v
	case string:
		return strings.NewReader(v)
	case []byte:
		return strings.NewReader(string(v))
	default:
		return http.NoBody
	}
}

// Errors returns the error stream, or io.Discard when none is set.
func (e Environ) Errors() io.Writer {
	if w, ok := e[KeyErrors].(io.Writer); ok {
		return w
	}
	return io.Discard
}

// CGIVars returns the string-valued protocol variables, i.e. every key that
// is not a metadata key.
func (e Environ) CGIVars() map[string]string {
	vars := make(map[string]string, len(e))
	for k := range e {
		if strings.HasPrefix(k, "wsgi.") {
			continue
		}
		if s, ok := e.String(k); ok {
			vars[k] = s
		}
	}
	return vars
}

// Request validates the environ by turning it into an *http.Request. The
// returned request reads its body from the environ input stream and, like a
// handler behind http.StripPrefix, has SCRIPT_NAME removed from its URL path.
func (e Environ) Request() (*http.Request, error) {
	vars := e.CGIVars()
	if e.Get(KeyURLScheme) == "https" {
		vars[KeyHTTPS] = "on"
	}

	req, err := cgi.RequestFromMap(vars)
	if err != nil {
		return nil, &InvalidEnvironError{Cause: err}
	}
	// handlers route on PATH_INFO, SCRIPT_NAME stays visible in RequestURI
	if e.Get(KeyScriptName) != "" {
		req.URL.Path = e.Get(KeyPathInfo)
		req.URL.RawPath = ""
	}
	req.Body = io.NopCloser(e.Input())
	return req, nil
}
