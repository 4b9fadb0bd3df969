// Package apperr defines the recoverable error kinds surfaced at the
// request boundary. Every failed action maps onto exactly one kind and
// aborts with no partial mutation.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDenied is returned when the actor's role, ownership or
	// assignment does not permit the action.
	ErrDenied = errors.New("authorization denied")

	// ErrValidation is returned for missing or malformed required fields.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a consume request exceeds
	// the on-hand quantity of a part.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateKey is returned on a VIN or part-number collision.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrActiveReferences is returned when a delete is blocked by
	// dependent active records.
	ErrActiveReferences = errors.New("active references")
)

// Denied wraps ErrDenied with a human-readable reason
func Denied(reason string) error {
	return fmt.Errorf("%w: %s", ErrDenied, reason)
}

// Validation wraps ErrValidation with a human-readable reason
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// NotFound wraps ErrNotFound naming the missing resource
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// Duplicate wraps ErrDuplicateKey naming the colliding field
func Duplicate(field string) error {
	return fmt.Errorf("%w: %s already exists", ErrDuplicateKey, field)
}

// ActiveReferences wraps ErrActiveReferences with a human-readable reason
func ActiveReferences(reason string) error {
	return fmt.Errorf("%w: %s", ErrActiveReferences, reason)
}

// HTTPStatus maps an error kind onto the HTTP status the handler
// responds with. Unrecognized errors are treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrDuplicateKey),
		errors.Is(err, ErrActiveReferences):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
