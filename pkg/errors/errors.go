// Package errors provides structured error types for declutter.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a loose naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Missing files or records
//   - TIMEOUT, INTERNAL_ERROR: Runtime failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidBounds, "entity %q: min exceeds max", id)
//	if errors.Is(err, errors.ErrCodeInvalidBounds) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "failed to decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidBounds Code = "INVALID_BOUNDS"
	ErrCodeInvalidFix    Code = "INVALID_FIX"
	ErrCodeDuplicateID   Code = "DUPLICATE_ID"
	ErrCodeInvalidOption Code = "INVALID_OPTION"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Runtime errors
	ErrCodeTimeout Code = "TIMEOUT"
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var ee *EntityError
	if errors.As(err, &ee) {
		return ee.message()
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code an API should answer with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidBounds,
		ErrCodeInvalidFix, ErrCodeDuplicateID, ErrCodeInvalidOption, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusUnprocessableEntity
	case ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// EntityError locates a validation failure inside an entity document.
type EntityError struct {
	Index int    // Position in the document
	ID    string // Entity id, if known
	Err   error
}

// At attaches an entity position to err.
func At(index int, id string, err error) *EntityError {
	return &EntityError{Index: index, ID: id, Err: err}
}

// Error implements the error interface.
func (e *EntityError) Error() string {
	if code := GetCode(e.Err); code != "" {
		return fmt.Sprintf("%s: %s", code, e.message())
	}
	return e.message()
}

func (e *EntityError) message() string {
	if e.ID != "" {
		return fmt.Sprintf("entity %d (%q): %s", e.Index, e.ID, UserMessage(e.Err))
	}
	return fmt.Sprintf("entity %d: %s", e.Index, UserMessage(e.Err))
}

// Unwrap returns the coded error.
func (e *EntityError) Unwrap() error {
	return e.Err
}

// Code returns the error code of the wrapped error.
func (e *EntityError) Code() Code {
	return GetCode(e.Err)
}
