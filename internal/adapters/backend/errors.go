package backend

import (
	"errors"
	"fmt"
)

// Error constants.
var (
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrRequest      = errors.New("backend: request failed")
)

// APIError is a non-2xx response other than 401.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("backend: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}
