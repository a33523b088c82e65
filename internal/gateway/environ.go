// Package gateway translates API Gateway proxy events into environ-based
// application calls and the application responses back into proxy responses.
package gateway

import (
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
)

const (
	// DefaultHost is the HTTP_HOST placeholder used when the event carries no Host header.
	DefaultHost = "default"
	// DefaultServerProtocol is the SERVER_PROTOCOL reported for every gateway request.
	DefaultServerProtocol = "HTTP/1.1"
	// DefaultForwardedAddrHeader is the header consulted for the client address
	// when the request context carries no source IP.
	DefaultForwardedAddrHeader = "X-Envoy-External-Address"

	forwardedProtoKey = wsgi.HeaderPrefix + "X_FORWARDED_PROTO"
	forwardedPortKey  = wsgi.HeaderPrefix + "X_FORWARDED_PORT"
)

// EnvironBuilder maps inbound events onto environs.
type EnvironBuilder struct {
	// DefaultHost seeds HTTP_HOST.
	DefaultHost string
	// ForwardedAddrHeader names the header used as a REMOTE_ADDR fallback.
	ForwardedAddrHeader string
	// Extra returns additional variables seeded before the event is applied.
	Extra func() map[string]string
	// Errors is exposed as the environ error stream.
	Errors io.Writer
}

// NewEnvironBuilder returns a builder using the package defaults.
func NewEnvironBuilder() *EnvironBuilder {
	return &EnvironBuilder{
		DefaultHost:         DefaultHost,
		ForwardedAddrHeader: DefaultForwardedAddrHeader,
		Errors:              os.Stderr,
	}
}

// BuildEnviron builds and validates the environ for evt using the package defaults.
func BuildEnviron(evt events.APIGatewayProxyRequest) (wsgi.Environ, error) {
	return NewEnvironBuilder().Build(evt)
}

// Build maps evt onto a validated environ. Validation failures are returned
// as *wsgi.InvalidEnvironError.
func (b *EnvironBuilder) Build(evt events.APIGatewayProxyRequest) (wsgi.Environ, error) {
	env := wsgi.Environ{
		wsgi.KeyHTTPHost:       b.DefaultHost,
		wsgi.KeyServerProtocol: DefaultServerProtocol,
	}
	if b.Extra != nil {
		for k, v := range b.Extra() {
			env[k] = v
		}
	}

	for name, value := range evt.Headers {
		env[wsgi.HeaderKey(name)] = value
	}

	env[wsgi.KeyRequestMethod] = evt.HTTPMethod
	env[wsgi.KeyPathInfo] = evt.Path
	env[wsgi.KeyQueryString] = encodeQuery(evt.QueryStringParameters)

	if ip := evt.RequestContext.Identity.SourceIP; ip != "" {
		env[wsgi.KeyRemoteAddr] = ip
	} else if addr, ok := env.String(wsgi.HeaderKey(b.ForwardedAddrHeader)); ok {
		env[wsgi.KeyRemoteAddr] = addr
	}

	proto, hasProto := env.String(forwardedProtoKey)
	if hasProto {
		port := "443"
		if proto == "http" {
			port = "80"
		}
		env[forwardedPortKey] = port
	}

	// HOST keeps the trailing colon when no forwarded port is known
	env[wsgi.KeyHost] = env.Get(wsgi.KeyHTTPHost) + ":" + env.Get(forwardedPortKey)
	env.SetDefault(wsgi.KeyScriptName, "")
	env[wsgi.KeyServerPort] = env.Get(forwardedPortKey)

	env[wsgi.KeyContentLength] = ""
	if evt.Body != "" {
		env[wsgi.KeyContentLength] = strconv.Itoa(len(evt.Body))
	}

	if hasProto {
		env[wsgi.KeyURLScheme] = proto
	}
	env[wsgi.KeyInput] = strings.NewReader(evt.Body)
	env[wsgi.KeyVersion] = wsgi.Version
	env[wsgi.KeyErrors] = b.errors()
	env[wsgi.KeyMultithread] = false
	env[wsgi.KeyRunOnce] = true
	env[wsgi.KeyMultiprocess] = false

	if _, err := env.Request(); err != nil {
		return nil, err
	}
	return env, nil
}

func (b *EnvironBuilder) errors() io.Writer {
	if b.Errors == nil {
		return io.Discard
	}
	return b.Errors
}

func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}
