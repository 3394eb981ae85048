// Package errors provides structured error types for apisbr.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP facade
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// Transport failures (network errors, missing resources, undecodable upstream
// responses) are reported with the sentinel errors of package integrations.
// This package covers input and semantic failures: bad identifiers, periods,
// geographic levels or classifications.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND / NO_MATCH: Lookups that found nothing
//   - NETWORK_ERROR / INVALID_RESPONSE: Upstream failures
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPeriod, "invalid period: %s", s)
//	if errors.Is(err, errors.ErrCodeInvalidPeriod) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidResponse, origErr, "decode %s", url)
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
	ErrCodeInvalidInput          Code = "INVALID_INPUT"
	ErrCodeInvalidIdentifier     Code = "INVALID_IDENTIFIER"
	ErrCodeInvalidPeriod         Code = "INVALID_PERIOD"
	ErrCodeInvalidLevel          Code = "INVALID_LEVEL"
	ErrCodeInvalidClassification Code = "INVALID_CLASSIFICATION"
	ErrCodeInvalidFormat         Code = "INVALID_FORMAT"
	ErrCodeInvalidPath           Code = "INVALID_PATH"

	// Lookup errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNoMatch  Code = "NO_MATCH"

	// Upstream errors
	ErrCodeNetwork         Code = "NETWORK_ERROR"
	ErrCodeTimeout         Code = "TIMEOUT"
	ErrCodeInvalidResponse Code = "INVALID_RESPONSE"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

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
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
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
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err carries one of the INVALID_* codes.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidIdentifier, ErrCodeInvalidPeriod,
		ErrCodeInvalidLevel, ErrCodeInvalidClassification, ErrCodeInvalidFormat,
		ErrCodeInvalidPath:
		return true
	}
	return false
}
