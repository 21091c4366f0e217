package models

import (
	"errors"
	"net/http"
)

// APIError is the typed failure outcome returned by the service layer.
// Controllers map the code to an HTTP status; the response body always
// carries a machine code and a human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Error code constants
const (
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrUnauthenticated  = "UNAUTHENTICATED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
)

// NewAPIError creates a new API error with the given code and message.
func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

func NewValidationError(message string) *APIError {
	return NewAPIError(ErrValidationFailed, message)
}

func NewNotFoundError(message string) *APIError {
	return NewAPIError(ErrNotFound, message)
}

func NewForbiddenError(message string) *APIError {
	return NewAPIError(ErrForbidden, message)
}

func NewConflictError(message string) *APIError {
	return NewAPIError(ErrConflict, message)
}

func NewUnauthenticatedError(message string) *APIError {
	return NewAPIError(ErrUnauthenticated, message)
}

func NewInternalError(message string) *APIError {
	return NewAPIError(ErrInternalServer, message)
}

// Status returns the HTTP status the error code maps to.
func (e *APIError) Status() int {
	switch e.Code {
	case ErrValidationFailed:
		return http.StatusBadRequest
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AsAPIError coerces any error into an *APIError. Errors that are not
// already typed surface as Internal, never leaking store details.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewInternalError("Internal server error")
}
