// Package domerrors provides coded errors for business-rule failures.
//
// Services translate store sentinels and invariant violations into coded
// errors; the HTTP layer maps codes onto status responses. Codes travel
// with the error through wrapping, so callers check HasCode rather than
// matching message strings.
package domerrors

import (
	"errors"
	"fmt"
)

// Code classifies a business-rule failure.
type Code string

const (
	// CodeBadRequest marks malformed requests (unparseable body, bad query).
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput marks a single malformed value (bad UUID, bad enum).
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation marks field-level validation failures with a message
	// safe to surface to the caller.
	CodeValidation Code = "validation_failed"
	// CodeNotFound marks lookups of entities that do not exist.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks operations denied by the authorization engine.
	CodeForbidden Code = "forbidden"
	// CodeConflict marks uniqueness violations and protected-reference
	// deletions (integrity conflicts).
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a domain invariant breach detected by a
	// model constructor or transition guard.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout marks operations aborted by context cancellation.
	CodeTimeout Code = "timeout"
	// CodeInternal marks unexpected infrastructure failures. Details are
	// logged, never surfaced.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Message is safe for API consumers except
// when Code is CodeInternal.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is / errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var derr *Error
	for errors.As(err, &derr) {
		if derr.Code == code {
			return true
		}
		err = derr.cause
		derr = nil
	}
	return false
}

// Is is a readable alias for HasCode at call sites that check a single code.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code.
func CodeOf(err error) Code {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost coded message, or a generic fallback.
func MessageOf(err error) string {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Message
	}
	return "internal error"
}
