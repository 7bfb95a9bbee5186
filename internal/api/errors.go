package api

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError reports a non-2xx response from the toolbox API.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message())
}

// Message returns the human-readable failure text: the server's detail field
// when one was present, otherwise a status-derived fallback.
func (e *HTTPError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "unexpected server response"
	}
	return fmt.Sprintf("%s (status %d)", text, e.StatusCode)
}

// NetworkError reports that a request never produced a response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a failed call is worth reissuing. Transport
// failures and server-side errors retry; client errors (4xx) return the same
// answer every time and fail fast.
func Retryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	return false
}

// ErrorMessage extracts the text to surface to the user for any client error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "could not reach the toolbox service"
	}
	return err.Error()
}
