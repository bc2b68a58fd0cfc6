package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is returned for any non-2xx backend response
type Error struct {
	StatusCode int
	Message    string // error string reported by the backend, may be empty
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend responded with %d: %s", e.StatusCode, e.Message)
}

// ErrorMessage returns the backend-provided error string carried by err, or fallback if there is none
func ErrorMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
