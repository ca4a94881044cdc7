package probe

import (
	"errors"
	"fmt"
)

// Error kinds reported in logs and outcomes.
const (
	KindTransport = "transport"
	KindStatus    = "status"
	KindParse     = "parse"
	KindUnknown   = "unknown"
)

// TransportError means no response was received (DNS, refused connection, cancelled context).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure calling %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NetworkResponseError means the server answered with a status outside 200-299.
type NetworkResponseError struct {
	StatusCode int
	Status     string
}

func (e *NetworkResponseError) Error() string {
	return "network response was not ok: " + e.Status
}

// JSONParseError means a 2xx response body could not be decoded as JSON.
type JSONParseError struct {
	// Hint describes what the body looked like instead, when recognizable.
	Hint string
	Err  error
}

func (e *JSONParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("parse json response: %v (%s)", e.Err, e.Hint)
	}
	return fmt.Sprintf("parse json response: %v", e.Err)
}

func (e *JSONParseError) Unwrap() error { return e.Err }

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	var (
		transportErr *TransportError
		statusErr    *NetworkResponseError
		parseErr     *JSONParseError
	)
	switch {
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.As(err, &parseErr):
		return KindParse
	default:
		return KindUnknown
	}
}
