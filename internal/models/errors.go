package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced game or entry is absent.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates the
// (user, game, platform) uniqueness constraint. Callers performing
// reconciliation treat it as "already exists", not as a failure.
var ErrDuplicate = errors.New("duplicate entry")

// ValidationError signals malformed caller input, such as a status value
// outside the closed set or a bad filter parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// UpstreamError wraps a failure from an external provider (catalog
// lookup, storefront API). One upstream failure degrades a single
// candidate, never a whole batch.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
