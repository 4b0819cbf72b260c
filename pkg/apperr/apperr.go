// Package apperr defines the application error taxonomy. Services return
// these; the HTTP boundary maps each kind to a status code exactly once.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	// Internal is a store or other in-process failure.
	Internal Kind = iota
	// Validation is malformed or missing input.
	Validation
	// Conflict is a duplicate unique field.
	Conflict
	// NotFound is a missing record.
	NotFound
	// Auth is missing/invalid credentials or a missing token.
	Auth
	// Forbidden is an authenticated caller without permission.
	Forbidden
	// Upstream is a notifier or gateway call failure.
	Upstream
)

// Error carries a kind, a caller-safe message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error that preserves cause for errors.Is / errors.As.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the kind from err, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// MessageOf returns the caller-safe message, or a generic one for
// unclassified errors so internals never leak to clients.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
