package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Serene error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrValidation         ErrorCode = "VALIDATION"          // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrNotReady           ErrorCode = "NOT_READY"           // 409
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE" // 503
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// SereneError represents a structured error with code, status, and details.
type SereneError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause, if any. Never exposed to clients.
	Err error
}

// Error implements the error interface.
func (e *SereneError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SereneError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for malformed request parameters.
func NewInvalidRequest(msg string) *SereneError {
	return &SereneError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewValidation creates a 400 error for a rejected value, e.g. an answer
// outside 0..3 or a malformed date key.
func NewValidation(field string, msg string) *SereneError {
	return &SereneError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
		Details: map[string]any{"field": field},
	}
}

// NewNotFound creates a 404 error.
func NewNotFound(what, identifier string) *SereneError {
	return &SereneError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", what, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewNotReady creates a 409 error for a submit attempted before every item
// has been answered.
func NewNotReady(answered, total int) *SereneError {
	return &SereneError{
		Code:    ErrNotReady,
		Status:  409,
		Message: fmt.Sprintf("assessment incomplete: %d of %d items answered", answered, total),
		Details: map[string]any{"answered": answered, "total": total},
	}
}

// NewStorageUnavailable creates a 503 error wrapping a failed store call.
func NewStorageUnavailable(op string, err error) *SereneError {
	msg := "storage unavailable"
	if op != "" {
		msg = fmt.Sprintf("storage unavailable during %s", op)
	}
	return &SereneError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SereneError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SereneError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if err (or anything it wraps) is a SereneError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SereneError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
