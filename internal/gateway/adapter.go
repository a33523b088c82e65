package gateway

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/wsgi-lambda/internal/helpers"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
	"github.com/pkg/errors"
)

// BodyMode selects how much of the application body ends up in a proxy response.
type BodyMode string

const (
	// BodyModeFirst keeps only the first body chunk.
	BodyModeFirst BodyMode = "first"
	// BodyModeAll concatenates every body chunk.
	BodyModeAll BodyMode = "all"
)

// ParseBodyMode validates a configured body mode. The empty string maps to BodyModeFirst.
func ParseBodyMode(s string) (BodyMode, error) {
	switch BodyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", BodyModeFirst:
		return BodyModeFirst, nil
	case BodyModeAll:
		return BodyModeAll, nil
	default:
		return "", fmt.Errorf("unsupported body mode: %s", s)
	}
}

// Adapter runs an Application for gateway events and direct calls.
type Adapter struct {
	app      wsgi.Application
	logger   *slog.Logger
	builder  *EnvironBuilder
	bodyMode BodyMode
}

// New returns an Adapter wrapping app.
func New(app wsgi.Application, opts ...Option) *Adapter {
	_inst := &Adapter{
		app:      app,
		builder:  NewEnvironBuilder(),
		bodyMode: BodyModeFirst,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// Invoke dispatches inv according to its mode. Gateway invocations return an
// events.APIGatewayProxyResponse, direct invocations return whatever the
// application returned.
func (a *Adapter) Invoke(ctx context.Context, inv Invocation) (any, error) {
	switch inv.Mode {
	case ModeGateway:
		return a.HandleEvent(ctx, inv.Event)
	case ModeDirect:
		return a.Call(ctx, inv.Environ, inv.StartResponse)
	default:
		return nil, fmt.Errorf("unsupported invocation mode: %s", inv.Mode)
	}
}

// Call delegates to the application unchanged.
func (a *Adapter) Call(ctx context.Context, env wsgi.Environ, start wsgi.StartResponseFunc) (wsgi.Body, error) {
	a.logger.Debug("delegating direct invocation...")
	return a.app.Call(ctx, env, start)
}

// HandleEvent builds the environ for evt, calls the application and
// assembles the proxy response from the captured status, headers and body.
func (a *Adapter) HandleEvent(ctx context.Context, evt events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := a.logger.With(slog.String("method", evt.HTTPMethod), slog.String("path", evt.Path))
	logger.Debug("building environ...")

	env, err := a.builder.Build(evt)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed to build environ")
	}

	capture := NewResponseCapture()
	body, err := a.app.Call(ctx, env, capture.StartResponse)
	if err != nil {
		logger.Warn("application call failed", slog.Any("error", err))
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "application call failed")
	}

	payload, err := a.collect(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	logger.Info("handled event", slog.Int("status", capture.Status), slog.Int("bytes", len(payload)))
	return events.APIGatewayProxyResponse{
		StatusCode: capture.Status,
		Headers:    capture.Headers,
		Body:       payload,
	}, nil
}

func (a *Adapter) collect(body wsgi.Body) (string, error) {
	if body == nil {
		return "", ErrEmptyBody
	}

	if a.bodyMode == BodyModeAll {
		var (
			sb     strings.Builder
			chunks int
		)
		for chunk := range body {
			sb.Write(chunk)
			chunks++
		}
		if chunks == 0 {
			return "", ErrEmptyBody
		}
		return sb.String(), nil
	}

	next, stop := iter.Pull(body)
	defer stop()
	chunk, ok := next()
	if !ok {
		return "", ErrEmptyBody
	}
	return string(chunk), nil
}
