// Package cda provides an HTTP client for the content delivery API
// with bearer-token authentication, paged sync-endpoint support, and
// error classification.
package cda

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, cda.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("cda: bad request")
	ErrUnauthorized = errors.New("cda: unauthorized")
	ErrForbidden    = errors.New("cda: forbidden")
	ErrNotFound     = errors.New("cda: not found")
	ErrRateLimited  = errors.New("cda: rate limited")
	ErrServerError  = errors.New("cda: server error")
)

// APIError wraps a sentinel error with the HTTP status code, request ID,
// and the API error message body for debugging.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("cda: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("cda: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
