package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/isometry/wsgi-lambda/internal/gateway"
	"github.com/isometry/wsgi-lambda/internal/helpers"
	"github.com/isometry/wsgi-lambda/internal/models"
	"github.com/isometry/wsgi-lambda/internal/processor"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
	"github.com/pkg/errors"
)

type Option func(*Runtime)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithPostProcessors registers processors run after every gateway invocation.
func WithPostProcessors(processors ...processor.Processor) Option {
	return func(r *Runtime) {
		r.processors = append(r.processors, processors...)
	}
}

// WithEventPath sets the local path accepting POSTed gateway events.
func WithEventPath(path string) Option {
	return func(r *Runtime) {
		r.eventPath = path
	}
}

type Runtime struct {
	adapter    *gateway.Adapter
	logger     *slog.Logger
	processors []processor.Processor
	eventPath  string
}

// NewRuntime creates a new runtime instance
func NewRuntime(adapter *gateway.Adapter, opts ...Option) *Runtime {
	_inst := &Runtime{adapter: adapter}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// Lambda is the Lambda handler for the runtime. Gateway events are answered
// with an API Gateway proxy response; any other JSON object is treated as a
// prebuilt environ and answered with a models.DirectResponse.
func (r *Runtime) Lambda(ctx context.Context, payload json.RawMessage) (any, error) {
	capture := gateway.NewResponseCapture()
	inv, err := gateway.DecodeInvocation(payload, capture.StartResponse)
	if err != nil {
		r.logger.Warn("rejecting invocation", slog.Any("error", err))
		return nil, err
	}
	r.logger.Info("received invocation", slog.String("mode", inv.Mode.String()))

	result, err := r.adapter.Invoke(ctx, inv)
	switch res := result.(type) {
	case events.APIGatewayProxyResponse:
		r.extensions(payload, inv.Mode, res.StatusCode, err)
		if err != nil {
			return nil, err
		}
		return res, nil
	case wsgi.Body:
		if err != nil {
			return nil, err
		}
		chunks := []string{}
		for chunk := range res {
			chunks = append(chunks, string(chunk))
		}
		return models.DirectResponse{
			Status:  capture.Status,
			Headers: capture.Headers,
			Chunks:  chunks,
		}, nil
	default:
		if err == nil {
			err = fmt.Errorf("unexpected invocation result %T", result)
		}
		return nil, err
	}
}

// ServeHTTP is the HTTP handler for the runtime. Requests on the event path
// carry a gateway event; every other request is passed to the application
// in direct mode.
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	if r.eventPath != "" && req.URL.Path == r.eventPath {
		r.serveEvent(resp, req)
		return
	}
	r.serveDirect(resp, req)
}

func (r *Runtime) serveEvent(resp http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.logger.Debug("rejecting HTTP request...", slog.Any("requestor", req.RemoteAddr), "reason", "method not allowed", slog.Any("method", req.Method))
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusMethodNotAllowed}, nil, resp)
		return
	}

	payload, err := io.ReadAll(req.Body)
	if err != nil {
		r.logger.Error("failed to read request body", slog.Any("error", err))
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusInternalServerError}, err, resp)
		return
	}

	result, err := r.Lambda(req.Context(), payload)
	if err != nil {
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusBadGateway}, err, resp)
		return
	}
	helpers.RespondJSON(resp, http.StatusOK, result)
}

func (r *Runtime) serveDirect(resp http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.Any("method", req.Method), slog.Any("path", req.URL.Path))

	started := false
	capture := gateway.NewResponseCapture()
	start := func(status string, headers []wsgi.Header, excInfo error) error {
		if err := capture.StartResponse(status, headers, excInfo); err != nil {
			return err
		}
		for _, h := range headers {
			resp.Header().Add(h.Name, h.Value)
		}
		resp.WriteHeader(capture.Status)
		started = true
		return nil
	}

	body, err := r.adapter.Call(req.Context(), wsgi.EnvironFromRequest(req), start)
	if err != nil {
		r.logger.Error("application call failed", slog.Any("error", err))
		if !started {
			helpers.RespondHTTP(models.Response{StatusCode: http.StatusInternalServerError}, err, resp)
		}
		return
	}
	for chunk := range body {
		if _, err = resp.Write(chunk); err != nil {
			r.logger.Warn("failed to write response chunk", slog.Any("error", err))
			return
		}
	}
}

// extensions runs the post-processors for a completed gateway invocation.
func (r *Runtime) extensions(payload []byte, mode gateway.Mode, statusCode int, err error) {
	if len(r.processors) == 0 {
		return
	}
	rec := &models.Record{
		ID:         uuid.NewString(),
		Time:       time.Now(),
		Mode:       mode.String(),
		Payload:    payload,
		StatusCode: statusCode,
		Err:        err,
	}
	if procErr := processor.Process(r.logger, rec, r.processors...); procErr != nil {
		r.logger.Warn("post-processing failed", slog.Any("error", errors.Cause(procErr)))
	}
}
