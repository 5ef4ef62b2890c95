package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewResourceNotFoundError creates a not-found error naming the missing entity
func NewResourceNotFoundError(format string, args ...interface{}) *CustomError {
	return &CustomError{Err: ErrResourceNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError creates an error for malformed input
func NewValidationError(format string, args ...interface{}) *CustomError {
	return &CustomError{Err: ErrValidationFailed, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError creates an error for uniqueness violations
func NewConflictError(format string, args ...interface{}) *CustomError {
	return &CustomError{Err: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// NewForbiddenError creates an error for callers outside the requested scope
func NewForbiddenError(format string, args ...interface{}) *CustomError {
	return &CustomError{Err: ErrPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Message returns the user-facing message of a CustomError in the chain, or fallback
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
