package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers discriminate with errors.Is; the concrete *Error carries
// the message shown to the user.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrConfiguration      = errors.New("configuration error")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
)

// Error is a classified domain failure.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func AlreadyExists(format string, args ...any) error {
	return newError(ErrAlreadyExists, format, args...)
}

// Configuration reports missing seed data or similar deployment faults. It is
// never the caller's fault and must not be retried.
func Configuration(format string, args ...any) error {
	return newError(ErrConfiguration, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

// Message returns the user-facing message of err when it is a domain error,
// or fallback otherwise.
func Message(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return fallback
}
