package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across trailerflow.
type ErrorCode string

// Error kinds surfaced by the generators and provider adapters.
const (
	// ErrValidation marks violated video-generation constraints
	// (duration / reference-image count).
	ErrValidation ErrorCode = "VALIDATION"
	// ErrLookup marks a scene referencing a character with no reference image.
	ErrLookup ErrorCode = "LOOKUP"
	// ErrProvider marks any failure of an external generation call.
	ErrProvider ErrorCode = "PROVIDER"
)

// Input and local I/O error codes
const (
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrAssetIO      ErrorCode = "ASSET_IO"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Provider != "" {
		prefix += " " + e.Provider
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err carries ErrValidation.
func IsValidation(err error) bool { return GetErrorCode(err) == ErrValidation }

// IsLookup reports whether err carries ErrLookup.
func IsLookup(err error) bool { return GetErrorCode(err) == ErrLookup }

// IsProvider reports whether err carries ErrProvider.
func IsProvider(err error) bool { return GetErrorCode(err) == ErrProvider }
