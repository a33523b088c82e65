package wsgi

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// HeaderKey folds an HTTP header name into its environ variable name:
// dashes become underscores and the name is upper-cased. CONTENT_TYPE and
// CONTENT_LENGTH keep their bare names, every other header is prefixed with
// HTTP_.
func HeaderKey(name string) string {
	folded := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	switch folded {
	case KeyContentType, KeyContentLength:
		return folded
	default:
		return HeaderPrefix + folded
	}
}

// EnvironFromRequest builds an environ for a request received by a local
// net/http server. Repeated header values are joined with a comma.
func EnvironFromRequest(r *http.Request) Environ {
	env := Environ{
		KeyRequestMethod:  r.Method,
		KeyScriptName:     "",
		KeyPathInfo:       r.URL.Path,
		KeyQueryString:    r.URL.RawQuery,
		KeyServerProtocol: r.Proto,
		KeyHTTPHost:       r.Host,
		KeyContentLength:  "",
	}

	for name, values := range r.Header {
		env[HeaderKey(name)] = strings.Join(values, ",")
	}
	if r.ContentLength > 0 {
		env[KeyContentLength] = strconv.FormatInt(r.ContentLength, 10)
	}

	if _, port, err := net.SplitHostPort(r.Host); err == nil {
		env[KeyServerPort] = port
	}
	env[KeyHost] = r.Host
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		env[KeyRemoteAddr] = host
	} else if r.RemoteAddr != "" {
		env[KeyRemoteAddr] = r.RemoteAddr
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	body := r.Body
	if body == nil {
		body = http.NoBody
	}

	env[KeyURLScheme] = scheme
	env[KeyInput] = body
	env[KeyVersion] = Version
	env[KeyErrors] = os.Stderr
	env[KeyMultithread] = true
	env[KeyMultiprocess] = false
	env[KeyRunOnce] = false
	return env
}
