package wsgi

import "fmt"

// InvalidEnvironError is returned when an environ cannot be turned into a request.
type InvalidEnvironError struct {
	Cause error
}

func (m *InvalidEnvironError) Error() string {
	return fmt.Sprintf("invalid environ: %v", m.Cause)
}

func (m *InvalidEnvironError) Unwrap() error {
	return m.Cause
}
