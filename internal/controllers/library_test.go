package controllers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/models"
)

func newTestLibraryController(t *testing.T) (*LibraryController, *models.Database) {
	t.Helper()

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewLibraryController(db, zerolog.Nop()), db
}

func TestAddEntryCreatesGameFromTitle(t *testing.T) {
	ctrl, db := newTestLibraryController(t)
	ctx := context.Background()

	entry, err := ctrl.AddEntry(ctx, "u1", AddEntryParams{
		Title:    "Outer Wilds",
		Status:   "WANT_TO_PLAY",
		Platform: "Nintendo Switch",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if entry.Platform != models.PlatformNintendo {
		t.Errorf("Platform = %q, want nintendo", entry.Platform)
	}
	if entry.AcquisitionType != models.AcquisitionDigital {
		t.Errorf("AcquisitionType = %q, want default DIGITAL", entry.AcquisitionType)
	}

	game, err := db.GetGameByID(entry.GameID)
	if err != nil {
		t.Fatalf("game not created: %v", err)
	}
	if game.Title != "Outer Wilds" {
		t.Errorf("Title = %q", game.Title)
	}
}

func TestAddEntryStampsStartedAtForPlaying(t *testing.T) {
	ctrl, _ := newTestLibraryController(t)

	entry, err := ctrl.AddEntry(context.Background(), "u1", AddEntryParams{
		Title:           "Hades",
		Status:          "PLAYING",
		Platform:        "pc",
		AcquisitionType: "PHYSICAL",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if entry.StartedAt == nil {
		t.Error("StartedAt not stamped for PLAYING add")
	}
	if entry.AcquisitionType != models.AcquisitionPhysical {
		t.Errorf("AcquisitionType = %q, want PHYSICAL", entry.AcquisitionType)
	}
}

func TestAddEntryValidation(t *testing.T) {
	ctrl, _ := newTestLibraryController(t)
	ctx := context.Background()

	var validation *models.ValidationError

	_, err := ctrl.AddEntry(ctx, "u1", AddEntryParams{Title: "Hades", Status: "FINISHED"})
	if !errors.As(err, &validation) {
		t.Errorf("unknown status = %v, want ValidationError", err)
	}

	_, err = ctrl.AddEntry(ctx, "u1", AddEntryParams{Status: "OWNED"})
	if !errors.As(err, &validation) {
		t.Errorf("missing game = %v, want ValidationError", err)
	}

	_, err = ctrl.AddEntry(ctx, "u1", AddEntryParams{GameID: "missing", Status: "OWNED"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown game id = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatusPersistsTimestamps(t *testing.T) {
	ctrl, db := newTestLibraryController(t)
	ctx := context.Background()

	entry, err := ctrl.AddEntry(ctx, "u1", AddEntryParams{Title: "Hades", Status: "WANT_TO_PLAY", Platform: "pc"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := ctrl.UpdateStatus(ctx, "u1", entry.ID, "PLAYING")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.StatusPlaying || updated.StartedAt == nil {
		t.Errorf("updated = %+v, want PLAYING with StartedAt", updated)
	}

	stored, err := db.GetLibraryEntry("u1", entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.StartedAt == nil {
		t.Error("StartedAt not persisted")
	}

	if _, err := ctrl.UpdateStatus(ctx, "u2", entry.ID, "PLAYING"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("cross-user update = %v, want ErrNotFound", err)
	}
}

func TestGetLibraryGroupsAndBacklogTime(t *testing.T) {
	ctrl, db := newTestLibraryController(t)
	ctx := context.Background()

	hours := 21.5
	game := &models.Game{Title: "Celeste", MainStoryHours: &hours}
	if err := db.CreateGame(game); err != nil {
		t.Fatal(err)
	}

	for _, platform := range []string{"pc", "nintendo"} {
		if _, err := ctrl.AddEntry(ctx, "u1", AddEntryParams{GameID: game.ID, Status: "OWNED", Platform: platform}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := ctrl.AddEntry(ctx, "u1", AddEntryParams{Title: "Hades", Status: "WISHLIST", Platform: "pc"}); err != nil {
		t.Fatal(err)
	}

	grouped, err := ctrl.GetLibrary(ctx, "u1", models.LibraryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(grouped) != 1 {
		t.Fatalf("got %d groups, want 1 (wishlist excluded, platforms merged)", len(grouped))
	}
	if len(grouped[0].Entries) != 2 {
		t.Errorf("got %d entries in group, want 2", len(grouped[0].Entries))
	}

	summary, err := ctrl.BacklogTime(ctx, "u1", models.LibraryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalHours != 21.5 || summary.GameCount != 1 {
		t.Errorf("summary = %+v, want 21.5 hours over 1 game", summary)
	}
}

func TestDeleteEntry(t *testing.T) {
	ctrl, _ := newTestLibraryController(t)
	ctx := context.Background()

	entry, err := ctrl.AddEntry(ctx, "u1", AddEntryParams{Title: "Hades", Status: "OWNED", Platform: "pc"})
	if err != nil {
		t.Fatal(err)
	}

	if err := ctrl.DeleteEntry(ctx, "u1", entry.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ctrl.DeleteEntry(ctx, "u1", entry.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteThenReAdd(t *testing.T) {
	ctrl, _ := newTestLibraryController(t)
	ctx := context.Background()

	entry, err := ctrl.AddEntry(ctx, "u1", AddEntryParams{Title: "Hades", Status: "OWNED", Platform: "pc"})
	if err != nil {
		t.Fatal(err)
	}
	if err := ctrl.DeleteEntry(ctx, "u1", entry.ID); err != nil {
		t.Fatal(err)
	}

	readded, err := ctrl.AddEntry(ctx, "u1", AddEntryParams{GameID: entry.GameID, Status: "PLAYING", Platform: "pc"})
	if err != nil {
		t.Fatalf("re-add after delete: %v", err)
	}
	if readded.ID != entry.ID {
		t.Errorf("re-add created row %d, want restored row %d", readded.ID, entry.ID)
	}
	if readded.Status != models.StatusPlaying {
		t.Errorf("Status = %q, want PLAYING", readded.Status)
	}

	grouped, err := ctrl.GetLibrary(ctx, "u1", models.LibraryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(grouped) != 1 {
		t.Errorf("got %d groups after re-add, want 1", len(grouped))
	}
}
