package services

import (
	"database/sql"
	"errors"
	"fmt"
)

// Typed failures surfaced by the lifecycle engine. Handlers map these to
// HTTP status codes; nothing below this layer is swallowed except the
// category router's cache refresh, which degrades instead of failing.
var (
	// ErrNotFound means the complaint or staff ID is unknown
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor's role or ownership check failed
	ErrForbidden = errors.New("forbidden")

	// ErrIneligibleStaff means the staff member lacks the complaint's
	// category or is inactive
	ErrIneligibleStaff = errors.New("staff not eligible for category")

	// ErrInvalidTransition means the requested status requires an
	// assignment that does not exist
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation means the input was malformed, e.g. an empty note
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable means the underlying persistence failed
	ErrStoreUnavailable = errors.New("store unavailable")
)

// storeErr classifies a repository error: missing rows become ErrNotFound,
// anything else is a store failure.
func storeErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
