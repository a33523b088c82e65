package gateway

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyBody is returned when the application produced no body chunk at all.
var ErrEmptyBody = errors.New("application returned an empty body sequence")

// MissingKeyError reports a required inbound event key that is absent.
type MissingKeyError struct {
	Key string
}

func (m *MissingKeyError) Error() string {
	return fmt.Sprintf("malformed event: missing key %q", m.Key)
}

// StatusLineError reports a status line without a numeric 3-digit prefix.
type StatusLineError struct {
	Status string
	Cause  error
}

func (m *StatusLineError) Error() string {
	if m.Cause != nil {
		return fmt.Sprintf("invalid status line %q: %v", m.Status, m.Cause)
	}
	return fmt.Sprintf("invalid status line %q", m.Status)
}

func (m *StatusLineError) Unwrap() error {
	return m.Cause
}
