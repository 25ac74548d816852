// Package errors provides structured error types for spritetag.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (bad upload, malformed SVG)
//   - *_FAILED / *_UNAVAILABLE: Rendering failures (decode, surface, measurement)
//   - NETWORK_* and friends: Failures talking to the description service
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSVG, "root element is <%s>, want <svg>", tag)
//	if errors.Is(err, errors.ErrCodeInvalidSVG) {
//	    // nothing to extract
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecode, origErr, "load vector image")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidSVG       Code = "INVALID_SVG"
	ErrCodeInvalidDataURI   Code = "INVALID_DATA_URI"
	ErrCodeInvalidMediaType Code = "INVALID_MEDIA_TYPE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Rendering errors
	ErrCodeDecode  Code = "DECODE_FAILED"
	ErrCodeSurface Code = "SURFACE_UNAVAILABLE"
	ErrCodeMeasure Code = "MEASURE_FAILED"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Description service errors
	ErrCodeNetwork         Code = "NETWORK_ERROR"
	ErrCodeTimeout         Code = "TIMEOUT"
	ErrCodeRateLimited     Code = "RATE_LIMITED"
	ErrCodeUnauthorized    Code = "UNAUTHORIZED"
	ErrCodeEmptyResponse   Code = "EMPTY_RESPONSE"
	ErrCodeInvalidResponse Code = "INVALID_RESPONSE"

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
// It unwraps the error chain looking for an *Error or *RateLimitedError
// with a matching code.
func Is(err error, code Code) bool {
	c := GetCode(err)
	return c != "" && c == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds no coded error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	msg := "rate limited"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(": retry after %d seconds", e.RetryAfter)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RateLimitedError) Unwrap() error {
	return e.Cause
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
