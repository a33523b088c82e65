package gateway_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/isometry/wsgi-lambda/internal/gateway"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return gopter.NewProperties(parameters)
}

func TestProperties_Environ(t *testing.T) {
	properties := newProperties()

	properties.Property("content length is the body byte length", prop.ForAll(
		func(body string) bool {
			evt := newEvent("POST", "/x")
			evt.Body = body
			env, err := gateway.BuildEnviron(evt)
			if err != nil {
				return false
			}
			if body == "" {
				return env.Get(wsgi.KeyContentLength) == ""
			}
			return env.Get(wsgi.KeyContentLength) == fmt.Sprint(len(body))
		},
		gen.AnyString(),
	))

	properties.Property("query string decodes back to the parameters", prop.ForAll(
		func(params map[string]string) bool {
			evt := newEvent("GET", "/x")
			evt.QueryStringParameters = params
			env, err := gateway.BuildEnviron(evt)
			if err != nil {
				return false
			}
			parsed, err := url.ParseQuery(env.Get(wsgi.KeyQueryString))
			if err != nil || len(parsed) != len(params) {
				return false
			}
			for k, v := range params {
				if parsed.Get(k) != v {
					return false
				}
			}
			return true
		},
		gen.MapOf(gen.Identifier(), gen.AnyString()),
	))

	properties.Property("extension headers fold into HTTP_ keys", prop.ForAll(
		func(suffix, value string) bool {
			name := "X-" + suffix
			evt := newEvent("GET", "/x")
			evt.Headers[name] = value
			env, err := gateway.BuildEnviron(evt)
			if err != nil {
				return false
			}
			key := wsgi.HeaderKey(name)
			return strings.HasPrefix(key, wsgi.HeaderPrefix) &&
				!strings.Contains(key, "-") &&
				key == strings.ToUpper(key) &&
				env.Get(key) == value
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("forwarded proto selects the port", prop.ForAll(
		func(proto string) bool {
			evt := newEvent("GET", "/x")
			evt.Headers["X-Forwarded-Proto"] = proto
			env, err := gateway.BuildEnviron(evt)
			if err != nil {
				return false
			}
			expected := "443"
			if proto == "http" {
				expected = "80"
			}
			return env.Get(wsgi.KeyServerPort) == expected &&
				env.Get(wsgi.KeyHost) == gateway.DefaultHost+":"+expected &&
				env.Get(wsgi.KeyURLScheme) == proto
		},
		gen.OneConstOf("http", "https"),
	))

	properties.TestingRun(t)
}

func TestProperties_Capture(t *testing.T) {
	properties := newProperties()

	properties.Property("status is the numeric prefix of the status line", prop.ForAll(
		func(code int) bool {
			c := gateway.NewResponseCapture()
			if err := c.StartResponse(fmt.Sprintf("%d %s", code, http.StatusText(code)), nil, nil); err != nil {
				return false
			}
			return c.Status == code
		},
		gen.IntRange(100, 599),
	))

	properties.Property("last header value wins", prop.ForAll(
		func(values []string) bool {
			headers := make([]wsgi.Header, 0, len(values))
			for _, v := range values {
				headers = append(headers, wsgi.Header{Name: "X-Value", Value: v})
			}
			c := gateway.NewResponseCapture()
			if err := c.StartResponse("200 OK", headers, nil); err != nil {
				return false
			}
			if len(values) == 0 {
				return len(c.Headers) == 0
			}
			return c.Headers["X-Value"] == values[len(values)-1]
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
