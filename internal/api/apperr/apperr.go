// Package apperr defines the error taxonomy shared by the service and
// controller layers. Services return (wrapped) sentinels; the request
// boundary maps them onto HTTP status codes in exactly one place.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput covers missing or empty required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized means no valid session accompanied the request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is authenticated but does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint would be violated (duplicate username).
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredential means the password check failed for an existing user.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrDepthExceeded means an insertion would grow an item tree past three levels.
	ErrDepthExceeded = errors.New("maximum hierarchy depth exceeded")
	// ErrInvalidState means the operation is not valid for the entity's current
	// shape, e.g. moving a non-top-level item between lists.
	ErrInvalidState = errors.New("invalid state")
)

// Status maps an error to its HTTP status code. Unrecognized errors are
// internal faults.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDepthExceeded),
		errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short machine-readable code used in the error envelope.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrInvalidCredential):
		return "INVALID_PASSWORD"
	case errors.Is(err, ErrDepthExceeded):
		return "DEPTH_EXCEEDED"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	default:
		return "INTERNAL_ERROR"
	}
}
