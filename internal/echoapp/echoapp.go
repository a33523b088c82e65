// Package echoapp provides a small gin application that reports back how it
// saw each request. It is served by the binary and exercised by the tests.
package echoapp

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/isometry/wsgi-lambda/internal/helpers"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
)

// RequestIDHeader carries the request id assigned by the RequestID middleware.
const RequestIDHeader = "X-Request-ID"

// Echo is the document returned by the echo route.
type Echo struct {
	RequestID  string            `json:"requestId"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Query      string            `json:"query"`
	Host       string            `json:"host"`
	RemoteAddr string            `json:"remoteAddr"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	ScriptName string            `json:"scriptName"`
	Environ    map[string]string `json:"environ,omitempty"`
}

// Option configures the application.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	environKeys []string
}

// WithLogger sets the access logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEnvironKeys lists environ variables echoed back under "environ".
func WithEnvironKeys(keys ...string) Option {
	return func(o *options) {
		o.environKeys = keys
	}
}

// New returns the gin engine.
func New(opts ...Option) *gin.Engine {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = helpers.NewNoopLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), AccessLog(o.logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.Any("/echo", echoHandler(o.environKeys))
	engine.Any("/echo/*rest", echoHandler(o.environKeys))
	return engine
}

// RequestID assigns a request id unless the client supplied one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDHeader, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// AccessLog logs one line per request.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("served request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("requestId", c.GetString(RequestIDHeader)))
	}
}

func echoHandler(environKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k := range c.Request.Header {
			headers[k] = c.Request.Header.Get(k)
		}

		echo := Echo{
			RequestID:  c.GetString(RequestIDHeader),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Query:      c.Request.URL.RawQuery,
			Host:       c.Request.Host,
			RemoteAddr: c.Request.RemoteAddr,
			Headers:    headers,
			Body:       string(body),
		}
		if env, ok := wsgi.EnvironFromContext(c.Request.Context()); ok {
			echo.ScriptName = env.Get(wsgi.KeyScriptName)
			if len(environKeys) > 0 {
				echo.Environ = make(map[string]string, len(environKeys))
				for _, k := range environKeys {
					if v, found := env.String(k); found {
						echo.Environ[k] = v
					}
				}
			}
		}
		c.JSON(http.StatusOK, echo)
	}
}
