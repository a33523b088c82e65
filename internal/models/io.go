// Package models provides the data structures exchanged at the runtime boundaries.
package models

import "time"

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       string
	Headers    map[string]string
	StatusCode int
}

// DirectResponse is the JSON rendition of a direct-mode application call:
// the status and headers reported through start-response and every body chunk.
type DirectResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Chunks  []string          `json:"chunks"`
}

// Record describes a completed invocation handed to the post-processors.
type Record struct {
	ID         string
	Time       time.Time
	Mode       string
	Payload    []byte
	StatusCode int
	Err        error
}
