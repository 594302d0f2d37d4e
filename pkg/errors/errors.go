// Package errors provides structured error types for pubplot.
//
// Every error that crosses a package boundary carries a machine-readable
// [Code]. Validation errors additionally carry the full, ordered list of
// failing fields so callers can report all problems at once.
//
// # Error Codes
//
//   - INVALID_DATA: the dataset is malformed or incomplete
//   - INVALID_CONFIG: the configuration is malformed, incomplete or names an unknown field
//   - RESOURCE_ERROR: the drawing surface could not be acquired, used or released
//   - SESSION_STATE: the session API was misused (plotting twice, use after close)
//   - INVALID_FORMAT, RENDER_ERROR, INTERNAL_ERROR, UNSUPPORTED
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSessionState, "session closed")
//	if errors.Is(err, errors.ErrCodeSessionState) {
//	    // API misuse
//	}
//
//	for _, f := range errors.FailuresOf(err) {
//	    fmt.Println(f.Path, f.Reason)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeDataValidation   Code = "INVALID_DATA"
	ErrCodeConfigValidation Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Lifecycle errors
	ErrCodeResource     Code = "RESOURCE_ERROR"
	ErrCodeSessionState Code = "SESSION_STATE"

	// Rendering and internal errors
	ErrCodeRender      Code = "RENDER_ERROR"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Failure describes a single failing field.
type Failure struct {
	Path   string `json:"path"`   // dotted field path, e.g. "style.font_params.size"
	Reason string `json:"reason"` // human-readable reason
}

// String formats the failure as "path: reason".
func (f Failure) String() string {
	if f.Path == "" {
		return f.Reason
	}
	return f.Path + ": " + f.Reason
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code     Code      // Machine-readable error code
	Message  string    // Human-readable message
	Cause    error     // Underlying error (optional)
	Failures []Failure // Field-level failures for validation errors (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Failures) > 0 {
		parts := make([]string, len(e.Failures))
		for i, f := range e.Failures {
			parts[i] = f.String()
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
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

// Invalid creates a validation error carrying failures.
// The failures slice is copied.
func Invalid(code Code, message string, failures []Failure) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Failures: append([]Failure(nil), failures...),
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// Joined errors are searched as well.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) && e.Code == code {
		return true
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range j.Unwrap() {
			if Is(inner, code) {
				return true
			}
		}
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

// FailuresOf collects the field failures of every *Error in the chain,
// including joined errors, in order.
func FailuresOf(err error) []Failure {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []Failure
		for _, inner := range j.Unwrap() {
			out = append(out, FailuresOf(inner)...)
		}
		return out
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Failures
	}
	return nil
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
