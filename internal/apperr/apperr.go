// Package apperr defines the error taxonomy shared by services and handlers.
// Services return these errors; the HTTP layer translates them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindUnknown is the zero value; treated as a storage failure.
	KindUnknown Kind = iota
	// KindValidation covers malformed or missing input (HTTP 400).
	KindValidation
	// KindAuthorization covers authenticated actors lacking a capability (HTTP 403).
	KindAuthorization
	// KindNotFound covers absent buckets, items, assets, tasks, and links (HTTP 404).
	KindNotFound
	// KindConflict covers uniqueness violations (HTTP 409).
	KindConflict
	// KindStorage covers unexpected database failures (HTTP 500).
	KindStorage
)

// Error carries a classification and a user-facing message. For storage
// errors the wrapped cause is logged server-side and never sent to clients.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a 400-class error with a field-specific message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Forbidden returns a 403-class error.
func Forbidden(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFound returns a 404-class error.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict returns a 409-class error.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Storage wraps an unexpected database failure. The cause is kept for
// server-side logging only.
func Storage(message string, cause error) error {
	return &Error{Kind: KindStorage, Message: message, Err: cause}
}

// KindOf extracts the classification of err. Unclassified errors are
// reported as storage failures so they never leak details to clients.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// Message returns the user-facing message for err. Storage and unclassified
// errors get a generic message.
func Message(err error) string {
	kind := KindOf(err)
	if kind == KindStorage || kind == KindUnknown {
		return "unexpected server error"
	}
	var appErr *Error
	errors.As(err, &appErr)
	return appErr.Message
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
