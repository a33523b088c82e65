// Package processor provides the post-processing steps run after a gateway invocation.
package processor

import (
	"log/slog"

	"github.com/isometry/wsgi-lambda/internal/models"
)

// Option is a function that applies an option to a Processor.
type Option = func(Processor)

// Processor is an interface that defines a method to process an invocation record.
type Processor interface {
	SetLogger(logger *slog.Logger)
	Process(*models.Record) error
}

// Process runs rec through processors in order, stopping at the first error.
func Process(logger *slog.Logger, rec *models.Record, processors ...Processor) error {
	for _, p := range processors {
		p.SetLogger(logger)
		if err := p.Process(rec); err != nil {
			return err
		}
	}
	return nil
}

// WithLogger sets the logger of a Processor at construction time.
func WithLogger(logger *slog.Logger) Option {
	return func(p Processor) {
		p.SetLogger(logger)
	}
}

func applyOpts(m Processor, opts ...Option) {
	for _, opt := range opts {
		opt(m)
	}
}
