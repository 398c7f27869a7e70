package backend

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrBackend indicates the backend processed the request and reported a failure.
// StatusCode is set when the failure was an HTTP 4xx rather than a non-success
// status in the response body.
type ErrBackend struct {
	Action     string
	Message    string
	StatusCode int
}

// Reported reports whether the failure came from the response body.
func (e *ErrBackend) Reported() bool { return e.StatusCode == 0 }

func (e *ErrBackend) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Action)
	}
	return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
}

// ErrRateLimit indicates the backend returned 429.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the backend returned content that is not JSON
// or does not match the expected shape.
type ErrInvalidResponse struct {
	Action  string
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid %s response: %v", e.Action, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrUnavailable indicates the backend is down or unreachable.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend unavailable: %v", e.Err)
	}
	return "backend unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }
