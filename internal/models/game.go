package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Game is the canonical catalog record for a title. It is created
// lazily the first time an import or manual add resolves to a catalog
// entry not yet known locally, and shared across users.
type Game struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	IgdbID         *int64     `gorm:"uniqueIndex" json:"igdb_id,omitempty"`
	Title          string     `gorm:"index;not null" json:"title"`
	CoverImage     string     `json:"cover_image,omitempty"`
	ReleaseDate    *time.Time `json:"release_date,omitempty"`
	SteamAppID     *int64     `gorm:"index" json:"steam_app_id,omitempty"`
	MainStoryHours *float64   `json:"main_story_hours,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh id when none was provided.
func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// LibraryEntry is one user's relationship to one game on one platform.
// The composite unique index is the authoritative guard against
// duplicate imports; a concurrent pass racing past the in-memory dedup
// check fails here and is treated as "already exists".
type LibraryEntry struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          string          `gorm:"uniqueIndex:idx_user_game_platform;index;not null" json:"user_id"`
	GameID          string          `gorm:"uniqueIndex:idx_user_game_platform;not null" json:"game_id"`
	Game            Game            `gorm:"foreignKey:GameID" json:"-"`
	Status          Status          `gorm:"not null" json:"status"`
	Platform        Platform        `gorm:"uniqueIndex:idx_user_game_platform;not null" json:"platform"`
	AcquisitionType AcquisitionType `gorm:"not null;default:DIGITAL" json:"acquisition_type"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IgnoredImport is a persisted user decision to permanently skip an
// external title during reconciliation. Titles are stored normalized.
type IgnoredImport struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"uniqueIndex:idx_user_ignored_title;index;not null" json:"user_id"`
	NormalizedTitle string    `gorm:"uniqueIndex:idx_user_ignored_title;not null" json:"normalized_title"`
	CreatedAt       time.Time `json:"created_at"`
}

// SteamConnection links a user to their Steam account for background
// library sync.
type SteamConnection struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       string     `gorm:"uniqueIndex;not null" json:"user_id"`
	SteamID64    string     `gorm:"not null" json:"steam_id64"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ImportCandidate is one row fetched from an external source before
// reconciliation. It lives only for the duration of a single pass and
// is never persisted.
type ImportCandidate struct {
	SourceID        string     `json:"source_id"`
	Title           string     `json:"title"`
	PlaytimeMinutes int        `json:"playtime_minutes"`
	LastPlayedAt    *time.Time `json:"last_played_at,omitempty"`
	PlatformHint    string     `json:"platform_hint"`
}

// EntryWithGame is a flat (game, entry) pair as read from storage.
type EntryWithGame struct {
	Game  Game
	Entry LibraryEntry
}

// GameWithEntries is the read-time aggregate of one game and the
// user's entries for it. Produced by reconcile.GroupEntries on every
// read, never persisted.
type GameWithEntries struct {
	Game    Game           `json:"game"`
	Entries []LibraryEntry `json:"entries"`
}
