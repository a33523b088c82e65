package gateway

import (
	"strconv"

	"github.com/isometry/wsgi-lambda/internal/wsgi"
)

// ResponseCapture records the status and headers reported by an application.
type ResponseCapture struct {
	Status  int
	Headers map[string]string
}

// NewResponseCapture returns an empty capture.
func NewResponseCapture() *ResponseCapture {
	return &ResponseCapture{}
}

// StartResponse implements wsgi.StartResponseFunc. The status code is read
// from the first three characters of the status line, repeated header names
// keep their last value and excInfo is ignored. Every call overwrites the
// previously captured values.
func (c *ResponseCapture) StartResponse(status string, headers []wsgi.Header, _ error) error {
	if len(status) < 3 {
		return &StatusLineError{Status: status}
	}
	code, err := strconv.Atoi(status[:3])
	if err != nil {
		return &StatusLineError{Status: status, Cause: err}
	}

	h := make(map[string]string, len(headers))
	for _, hdr := range headers {
		h[hdr.Name] = hdr.Value
	}
	c.Status = code
	c.Headers = h
	return nil
}
