package domain

import (
	"net/http"
	"time"
)

// Domain contains core models shared by the probe, storage and publishers.

// Request describes the single outbound call of a probe run.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
}

// NewRequest builds a GET request with the JSON content-type hint plus any extra headers.
func NewRequest(url string, extra map[string]string) Request {
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range extra {
		headers[k] = v
	}
	return Request{Method: http.MethodGet, URL: url, Headers: headers}
}

// Result is a successful probe: a 2xx response whose body decoded as JSON.
type Result struct {
	URL         string
	StatusCode  int
	Status      string
	Data        any
	Elapsed     time.Duration
	CompletedAt time.Time
}

// Outcome is the terminal record of one probe run, success or failure.
type Outcome struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	Success     bool          `json:"success"`
	Kind        string        `json:"kind,omitempty"`
	Error       string        `json:"error,omitempty"`
	StatusCode  int           `json:"status_code,omitempty"`
	Status      string        `json:"status,omitempty"`
	Data        any           `json:"data,omitempty"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	CompletedAt time.Time     `json:"completed_at"`
}
