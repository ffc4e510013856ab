// Package errors defines the single error kind returned by every parse operation.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies a ParseError.
type ErrorCode string

const (
	// ErrCodeMalformedInput indicates the input matched no grammar or format.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"
	// ErrCodeFieldOutOfRange indicates a field was parsed but is not a valid value (e.g. month 13).
	ErrCodeFieldOutOfRange ErrorCode = "FIELD_OUT_OF_RANGE"
	// ErrCodeInvalidTimezone indicates a named zone could not be resolved.
	ErrCodeInvalidTimezone ErrorCode = "INVALID_TIMEZONE"
	// ErrCodeInvalidFormat indicates the format string itself is unusable.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrCodeParserUnavailable indicates the shared heuristic parser could not be built.
	ErrCodeParserUnavailable ErrorCode = "PARSER_UNAVAILABLE"
)

// ParseError is the error kind surfaced by all parse operations.
// Error() is the human-readable diagnostic.
type ParseError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *ParseError) WithContext(key string, value interface{}) *ParseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Convenience constructors for common error types.

// MalformedInput creates a malformed input error.
func MalformedInput(msg string) *ParseError {
	return &ParseError{Code: ErrCodeMalformedInput, Message: msg}
}

// MalformedInputf creates a malformed input error with a formatted message.
func MalformedInputf(format string, args ...any) *ParseError {
	return &ParseError{Code: ErrCodeMalformedInput, Message: fmt.Sprintf(format, args...)}
}

// FieldOutOfRange creates an out-of-range error for the named field.
func FieldOutOfRange(field string, value int) *ParseError {
	return &ParseError{
		Code:    ErrCodeFieldOutOfRange,
		Message: fmt.Sprintf("%s out of range: %d", field, value),
	}
}

// InvalidTimezone creates an invalid timezone error naming the identifier.
func InvalidTimezone(name string) *ParseError {
	return &ParseError{
		Code:    ErrCodeInvalidTimezone,
		Message: "Invalid timezone: " + name,
	}
}

// InvalidFormat creates an invalid format error.
func InvalidFormat(msg string) *ParseError {
	return &ParseError{Code: ErrCodeInvalidFormat, Message: msg}
}

// ParserUnavailable creates an error for a failed parser construction.
func ParserUnavailable(cause error) *ParseError {
	return &ParseError{Code: ErrCodeParserUnavailable, Message: "parser unavailable", Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *ParseError {
	return &ParseError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var pe *ParseError
	if stderrors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ParseError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var pe *ParseError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return defaultCode
}
