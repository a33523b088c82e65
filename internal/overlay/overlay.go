// Package overlay provides extra environ variables sourced from static
// configuration and from a JSON object stored in an SSM parameter.
package overlay

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/isometry/wsgi-lambda/internal/helpers"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// SecretGetter fetches a parameter value by key.
type SecretGetter interface {
	GetSecret(key string, encrypted bool) (*string, error)
}

// Overlay merges static variables with variables loaded from a parameter.
// Loaded variables take precedence over static ones.
type Overlay struct {
	source  SecretGetter
	key     string
	ttl     time.Duration
	logger  *slog.Logger
	refresh *rate.Sometimes

	mu     sync.RWMutex
	static map[string]string
	loaded map[string]string
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithLogger sets the logger instance for the overlay.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Overlay) {
		o.logger = logger
	}
}

// WithTTL sets the minimum interval between two parameter loads.
func WithTTL(ttl time.Duration) Option {
	return func(o *Overlay) {
		o.ttl = ttl
	}
}

// WithStatic sets variables that are always part of the overlay.
func WithStatic(vars map[string]string) Option {
	return func(o *Overlay) {
		o.static = maps.Clone(vars)
	}
}

// New returns an Overlay reading the JSON object stored under key. A nil
// source or an empty key disables parameter loading.
func New(source SecretGetter, key string, opts ...Option) *Overlay {
	_inst := &Overlay{source: source, key: key}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.refresh = helpers.Every(_inst.ttl)
	return _inst
}

// Vars returns the current overlay, reloading the parameter when the TTL
// has elapsed. A failed load keeps the previously loaded variables.
func (o *Overlay) Vars() map[string]string {
	if o.source != nil && o.key != "" {
		o.refresh.Do(o.load)
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	vars := make(map[string]string, len(o.static)+len(o.loaded))
	maps.Copy(vars, o.static)
	maps.Copy(vars, o.loaded)
	return vars
}

func (o *Overlay) load() {
	logger := o.logger.With(slog.String("key", o.key))
	value, err := o.source.GetSecret(o.key, true)
	if err != nil {
		helpers.OnceAMinute.Do(func() {
			logger.Warn("failed to load environ overlay", slog.Any("error", err))
		})
		return
	}
	if value == nil || !gjson.Valid(*value) || !gjson.Parse(*value).IsObject() {
		logger.Warn("environ overlay is not a JSON object")
		return
	}

	vars := make(map[string]string)
	gjson.Parse(*value).ForEach(func(k, v gjson.Result) bool {
		vars[k.String()] = v.String()
		return true
	})

	o.mu.Lock()
	o.loaded = vars
	o.mu.Unlock()
	logger.Debug("loaded environ overlay", slog.Int("vars", len(vars)))
}
