package errors

import (
	"errors"
	"fmt"
)

// Custom error types for better error handling
var (
	// Authentication errors
	ErrUnauthenticated   = errors.New("authentication required")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrForbidden         = errors.New("forbidden")

	// Validation errors
	ErrValidation      = errors.New("invalid input")
	ErrWeakPassword    = errors.New("password does not meet requirements")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidUsername = errors.New("invalid username format")

	// Record errors
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflicting record exists")

	// Store / dispatch errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrDispatchFailed   = errors.New("task dispatch failed")

	// Rate limiting errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context
type AppError struct {
	Err     error
	Message string
	Code    int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error
func NewAppError(err error, message string, code int) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Validation wraps ErrValidation with a field-specific message
func Validation(message string) *AppError {
	return NewAppError(ErrValidation, message, 400)
}

// Conflict wraps ErrConflict with a resource-specific message
func Conflict(message string) *AppError {
	return NewAppError(ErrConflict, message, 409)
}

// StatusCode maps an error to the HTTP status it should produce
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}

	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidUsername):
		return 400
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrInvalidSignature):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConflict):
		return 409
	case errors.Is(err, ErrRateLimitExceeded):
		return 429
	default:
		return 500
	}
}
