package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a backend API error
type Error struct {
	Status  int
	Message string
}

// NewError creates a new API error
func NewError(status int, message string) *Error {
	return &Error{
		Status:  status,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// IsAuthExpired reports an expired or missing session (401)
func (e *Error) IsAuthExpired() bool {
	return e.Status == http.StatusUnauthorized
}

// IsForbidden reports a permission failure (403)
func (e *Error) IsForbidden() bool {
	return e.Status == http.StatusForbidden
}

// IsNotFound reports a missing resource (404)
func (e *Error) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// AsError extracts an *Error from an error chain
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuthExpired reports whether err is a 401 API error
func IsAuthExpired(err error) bool {
	if apiErr, ok := AsError(err); ok {
		return apiErr.IsAuthExpired()
	}
	return false
}
