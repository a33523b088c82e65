package gateway

import (
	"io"
	"log/slog"
)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger instance for the adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithBodyMode selects between first-chunk and full-body capture.
func WithBodyMode(mode BodyMode) Option {
	return func(a *Adapter) {
		a.bodyMode = mode
	}
}

// WithDefaultHost overrides the HTTP_HOST placeholder.
func WithDefaultHost(host string) Option {
	return func(a *Adapter) {
		a.builder.DefaultHost = host
	}
}

// WithForwardedAddrHeader sets the header used as the client address fallback.
func WithForwardedAddrHeader(name string) Option {
	return func(a *Adapter) {
		a.builder.ForwardedAddrHeader = name
	}
}

// WithEnvironExtra registers a source of variables seeded into every gateway environ.
func WithEnvironExtra(extra func() map[string]string) Option {
	return func(a *Adapter) {
		a.builder.Extra = extra
	}
}

func WithErrorStream(w io.Writer) Option {
	return func(a *Adapter) {
		a.builder.Errors = w
	}
}
