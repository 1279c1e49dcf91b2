// Package apperr holds the error kinds every engine operation reports.
// Domain packages wrap one of these with a specific message, so callers can
// match either the specific error or its kind with errors.Is.
package apperr

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrStateConflict     = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrThreshold         = errors.New("below approval threshold")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConcurrentUpdate  = errors.New("concurrent update")
)

// Kind returns a short stable code for err, used in API error bodies.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrStateConflict):
		return "state_conflict"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrThreshold):
		return "threshold"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConcurrentUpdate):
		return "concurrent_update"
	default:
		return "internal"
	}
}
