package library

import (
	"errors"
	"testing"
	"time"

	"github.com/NeiruBugz/play-later/internal/models"
)

func TestApplyStatusTransitionStampsStartedAt(t *testing.T) {
	now := time.Unix(1700000000, 0)
	entry := &models.LibraryEntry{Status: models.StatusWantToPlay}

	if err := ApplyStatusTransition(entry, models.StatusPlaying, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != models.StatusPlaying {
		t.Errorf("Status = %q, want PLAYING", entry.Status)
	}
	if entry.StartedAt == nil || !entry.StartedAt.Equal(now) {
		t.Fatalf("StartedAt = %v, want %v", entry.StartedAt, now)
	}

	// Re-applying the same status later must not move the timestamp.
	later := now.Add(time.Hour)
	if err := ApplyStatusTransition(entry, models.StatusPlaying, later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !entry.StartedAt.Equal(now) {
		t.Errorf("StartedAt moved to %v on re-apply", entry.StartedAt)
	}
}

func TestApplyStatusTransitionKeepsStartedAtAcrossPause(t *testing.T) {
	now := time.Unix(1700000000, 0)
	entry := &models.LibraryEntry{Status: models.StatusOwned}

	steps := []models.Status{models.StatusPlaying, models.StatusPaused, models.StatusPlaying}
	for i, next := range steps {
		if err := ApplyStatusTransition(entry, next, now.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
	}

	if entry.StartedAt == nil || !entry.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want first PLAYING time %v", entry.StartedAt, now)
	}
}

func TestApplyStatusTransitionStampsCompletedAtOnce(t *testing.T) {
	now := time.Unix(1700000000, 0)
	entry := &models.LibraryEntry{Status: models.StatusPlaying}

	if err := ApplyStatusTransition(entry, models.StatusCompleted, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.CompletedAt == nil || !entry.CompletedAt.Equal(now) {
		t.Fatalf("CompletedAt = %v, want %v", entry.CompletedAt, now)
	}

	later := now.Add(48 * time.Hour)
	if err := ApplyStatusTransition(entry, models.StatusFullCompletion, later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != models.StatusFullCompletion {
		t.Errorf("Status = %q, want FULL_COMPLETION", entry.Status)
	}
	if !entry.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt moved to %v, want original %v", entry.CompletedAt, now)
	}
}

func TestApplyStatusTransitionAnyToAny(t *testing.T) {
	entry := &models.LibraryEntry{Status: models.StatusCompleted}

	if err := ApplyStatusTransition(entry, models.StatusWishlist, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != models.StatusWishlist {
		t.Errorf("Status = %q, want WISHLIST", entry.Status)
	}
}

func TestApplyStatusTransitionRejectsUnknown(t *testing.T) {
	entry := &models.LibraryEntry{Status: models.StatusOwned}

	err := ApplyStatusTransition(entry, models.Status("FINISHED"), time.Now())
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if entry.Status != models.StatusOwned {
		t.Errorf("Status changed to %q on rejected transition", entry.Status)
	}
	if entry.StartedAt != nil || entry.CompletedAt != nil {
		t.Error("timestamps stamped on rejected transition")
	}
}
