package transport

import (
	"errors"
	"fmt"
)

// HTTPError is a completed response with a non-2xx status, or a 2xx response
// whose body could not be parsed. Body holds the decoded JSON error payload
// when the backend sent one, the raw text otherwise, or nil.
type HTTPError struct {
	Status  int
	Message string
	Body    any
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// NetworkError means the request failed before any response arrived
// (connection refused, DNS, reset, ...).
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// TimeoutError means the request was aborted because its timeout budget
// elapsed before a response arrived.
type TimeoutError struct{}

func (e *TimeoutError) Error() string { return "request timed out" }

// IsRetryable reports whether err is worth another attempt: network
// failures, timed-out attempts and server-side (5xx) responses. Client
// errors and parse failures are terminal for the call.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 500
	}
	return false
}

// ErrorMessage extracts the backend-supplied message from err, falling back
// to the given default when there is none.
func ErrorMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}
