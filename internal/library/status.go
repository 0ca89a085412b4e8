// Package library holds the pure domain operations on a user's
// library entries: the status lifecycle and backlog aggregation.
package library

import (
	"time"

	"github.com/NeiruBugz/play-later/internal/models"
)

// ApplyStatusTransition validates and applies a status change on an
// entry. Any status may transition to any other; this is a user-driven
// field, not a workflow. The manager's job is membership validation
// plus side effects:
//
//   - entering PLAYING from a non-playing state stamps StartedAt once
//   - entering COMPLETED or FULL_COMPLETION stamps CompletedAt once
//
// Re-applying the current status is a no-op and never overwrites an
// already-set timestamp. Unknown status values are rejected with a
// ValidationError, never coerced.
func ApplyStatusTransition(entry *models.LibraryEntry, next models.Status, now time.Time) error {
	if !next.Valid() {
		return &models.ValidationError{Field: "status", Message: "unknown status " + string(next)}
	}

	previous := entry.Status

	if next == models.StatusPlaying && previous != models.StatusPlaying && entry.StartedAt == nil {
		startedAt := now
		entry.StartedAt = &startedAt
	}

	if (next == models.StatusCompleted || next == models.StatusFullCompletion) && entry.CompletedAt == nil {
		completedAt := now
		entry.CompletedAt = &completedAt
	}

	entry.Status = next
	return nil
}
