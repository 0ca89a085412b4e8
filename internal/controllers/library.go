package controllers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/library"
	"github.com/NeiruBugz/play-later/internal/models"
	"github.com/NeiruBugz/play-later/internal/reconcile"
)

// AddEntryParams is the input for a manual library add.
type AddEntryParams struct {
	GameID          string
	Title           string
	Status          string
	Platform        string
	AcquisitionType string
}

// BacklogSummary reports aggregated time and entry count for a
// filtered library view. The two numbers are independent: games
// without an estimate still count.
type BacklogSummary struct {
	TotalHours float64 `json:"total_hours"`
	GameCount  int     `json:"game_count"`
}

// LibraryController handles library reads, manual edits and the
// status lifecycle.
type LibraryController struct {
	db     *models.Database
	logger zerolog.Logger
}

// NewLibraryController creates a new library controller.
func NewLibraryController(db *models.Database, logger zerolog.Logger) *LibraryController {
	return &LibraryController{db: db, logger: logger}
}

// GetLibrary returns the user's grouped library. Wishlist entries are
// excluded unless the filter requests them.
func (c *LibraryController) GetLibrary(ctx context.Context, userID string, filter models.LibraryFilter) ([]models.GameWithEntries, error) {
	pairs, err := c.db.GetUserEntriesWithGames(userID, filter)
	if err != nil {
		return nil, err
	}
	return reconcile.GroupEntries(pairs), nil
}

// BacklogTime aggregates estimated completion hours over a filtered
// library view.
func (c *LibraryController) BacklogTime(ctx context.Context, userID string, filter models.LibraryFilter) (*BacklogSummary, error) {
	grouped, err := c.GetLibrary(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return &BacklogSummary{
		TotalHours: library.TotalMainStoryHours(grouped),
		GameCount:  len(grouped),
	}, nil
}

// AddEntry creates a library entry by hand. The game must already
// exist when GameID is set; otherwise a catalog-less game is created
// from the title.
func (c *LibraryController) AddEntry(ctx context.Context, userID string, params AddEntryParams) (*models.LibraryEntry, error) {
	status, err := models.ParseStatus(params.Status)
	if err != nil {
		return nil, err
	}

	platform := reconcile.ClassifyPlatform(params.Platform)
	if params.Platform != "" {
		if parsed, err := models.ParsePlatform(params.Platform); err == nil {
			platform = parsed
		}
	}

	acquisition := models.AcquisitionDigital
	if params.AcquisitionType != "" {
		acquisition, err = models.ParseAcquisitionType(params.AcquisitionType)
		if err != nil {
			return nil, err
		}
	}

	var game *models.Game
	switch {
	case params.GameID != "":
		game, err = c.db.GetGameByID(params.GameID)
		if err != nil {
			return nil, err
		}
	case params.Title != "":
		game = &models.Game{Title: params.Title}
		if err := c.db.CreateGame(game); err != nil {
			return nil, err
		}
	default:
		return nil, &models.ValidationError{Field: "game", Message: "game_id or title is required"}
	}

	entry := &models.LibraryEntry{
		UserID:          userID,
		GameID:          game.ID,
		Status:          status,
		Platform:        platform,
		AcquisitionType: acquisition,
	}
	if err := library.ApplyStatusTransition(entry, status, time.Now()); err != nil {
		return nil, err
	}
	if err := c.db.CreateLibraryEntry(entry); err != nil {
		return nil, err
	}

	c.logger.Info().Str("user_id", userID).Str("game_id", game.ID).Str("status", string(status)).Msg("Library entry added")
	return entry, nil
}

// UpdateStatus applies a status transition to an entry.
func (c *LibraryController) UpdateStatus(ctx context.Context, userID string, entryID uint, rawStatus string) (*models.LibraryEntry, error) {
	entry, err := c.db.GetLibraryEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	if err := library.ApplyStatusTransition(entry, status, time.Now()); err != nil {
		return nil, err
	}
	if err := c.db.UpdateLibraryEntry(entry); err != nil {
		return nil, err
	}

	c.logger.Info().Str("user_id", userID).Uint("entry_id", entryID).Str("status", string(status)).Msg("Entry status updated")
	return entry, nil
}

// DeleteEntry soft-deletes a library entry.
func (c *LibraryController) DeleteEntry(ctx context.Context, userID string, entryID uint) error {
	return c.db.SoftDeleteLibraryEntry(userID, entryID)
}
