package services

import "errors"

// Error kinds. Match them with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
)

// Error is a failure the caller can act on. Its message is safe to show to
// API clients; the optional cause is for logs only.
type Error struct {
	kind    error
	message string
	cause   error
}

func (e *Error) Error() string { return e.message }

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Cause returns the underlying error, if any.
func (e *Error) Cause() error { return e.cause }

func newError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

func wrapError(kind error, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}
