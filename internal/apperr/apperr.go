// Package apperr defines the error taxonomy shared by the services and the
// HTTP handlers. Services return these errors; handlers map them to status
// codes without leaking internal detail.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence error")
	ErrArtifact     = errors.New("artifact error")
	ErrDispatch     = errors.New("dispatch error")
)

// Validation reports a missing or malformed input field.
func Validation(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// Unauthorized wraps a token failure.
func Unauthorized(err error) error {
	return fmt.Errorf("%w: %v", ErrUnauthorized, err)
}

// NotFound reports a missing record without echoing lookup keys.
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// Persistence wraps a store write failure.
func Persistence(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// Artifact reports a ticket that cannot be generated from its booking.
func Artifact(reason string) error {
	return fmt.Errorf("%w: %s", ErrArtifact, reason)
}

// Dispatch wraps a mail transport failure.
func Dispatch(err error) error {
	return fmt.Errorf("%w: %v", ErrDispatch, err)
}

// Status maps an error to its HTTP status code. Unknown errors are a generic
// 500; the caller is expected to log the full detail server side.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the message safe to show a client. Taxonomy errors carry
// their own wording; anything else collapses to a generic message.
func Public(err error) string {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict):
		return err.Error()
	default:
		return "internal server error"
	}
}
