// Package domainerrors provides coded errors that cross the service boundary.
//
// Services translate infrastructure sentinels (pkg/platform/sentinel) into
// these coded errors; the HTTP layer maps codes to status lines. Codes are
// stable wire values, messages are human-readable and may change.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. The string value is what callers see in
// the JSON error envelope.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_error"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"

	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	CodeInternal Code = "internal_error"
	CodeTimeout  Code = "timeout"

	// Wizard session codes.
	CodeSessionExpired Code = "session_expired"

	// Approval workflow codes.
	CodeDuplicateIdentifier Code = "duplicate_identifier"
	CodeInvalidTransition   Code = "invalid_transition"
	CodeAlreadyApproved     Code = "already_approved"
	CodeAlreadyRejected     Code = "already_rejected"
	CodeMissingReason       Code = "missing_reason"
	CodeInvalidState        Code = "invalid_state"
)

// Error is a coded domain error, optionally wrapping a cause.
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

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the outermost code, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the outermost message, empty when err is not coded.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
