// Package apperror defines the typed failure taxonomy shared by all
// services. Handlers match against the sentinels with errors.Is and
// translate them into HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a referenced entity is absent.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized signals the wrong actor for the action (wrong office,
	// wrong dormitory assignment, wrong program chair).
	ErrUnauthorized = errors.New("not authorized for this action")
	// ErrInvalidState signals an action attempted from a state that forbids
	// it (reviewing a resolved request, unlocking an uncleared record).
	ErrInvalidState = errors.New("action not allowed in current state")
	// ErrValidation signals missing or malformed input.
	ErrValidation = errors.New("validation failed")
)

// Error wraps one of the sentinel errors with a caller-facing message.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds an ErrNotFound with a formatted message.
func NotFound(format string, args ...interface{}) error {
	return &Error{Err: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized builds an ErrUnauthorized with a formatted message.
func Unauthorized(format string, args ...interface{}) error {
	return &Error{Err: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// InvalidState builds an ErrInvalidState with a formatted message.
func InvalidState(format string, args ...interface{}) error {
	return &Error{Err: ErrInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Validation builds an ErrValidation with a formatted message.
func Validation(format string, args ...interface{}) error {
	return &Error{Err: ErrValidation, Message: fmt.Sprintf(format, args...)}
}
