package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the gorm store.
type Database struct {
	db *gorm.DB
}

// LibraryFilter narrows library reads. Zero values mean "no filter".
// Wishlist rows are excluded unless explicitly requested by status.
type LibraryFilter struct {
	Platform Platform
	Status   Status
	Search   string
}

// Validate rejects malformed filter input.
func (f LibraryFilter) Validate() error {
	if f.Platform != "" && !f.Platform.Valid() {
		return &ValidationError{Field: "platform", Message: "unknown platform " + string(f.Platform)}
	}
	if f.Status != "" && !f.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(f.Status)}
	}
	return nil
}

// NewDatabase opens the sqlite database and runs migrations.
func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Game{}, &LibraryEntry{}, &IgnoredImport{}, &SteamConnection{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the underlying connection.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Game operations

// CreateGame inserts a new canonical game.
func (d *Database) CreateGame(game *Game) error {
	return d.db.Create(game).Error
}

// GetGameByID retrieves a game by internal id.
func (d *Database) GetGameByID(id string) (*Game, error) {
	var game Game
	if err := d.db.First(&game, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &game, nil
}

// GetGameByIgdbID retrieves a game by its external catalog id.
func (d *Database) GetGameByIgdbID(igdbID int64) (*Game, error) {
	var game Game
	if err := d.db.First(&game, "igdb_id = ?", igdbID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &game, nil
}

// GetGameBySteamAppID retrieves a game by its storefront app id.
func (d *Database) GetGameBySteamAppID(appID int64) (*Game, error) {
	var game Game
	if err := d.db.First(&game, "steam_app_id = ?", appID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &game, nil
}

// GetAllGames retrieves every canonical game. Used as the local
// matching pool during reconciliation.
func (d *Database) GetAllGames() ([]Game, error) {
	var games []Game
	if err := d.db.Order("created_at asc").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// FirstOrCreateGameByIgdbID finds the game for an external catalog id
// or creates it lazily. The unique index on igdb_id keeps one canonical
// game per catalog id even under concurrent imports.
func (d *Database) FirstOrCreateGameByIgdbID(game *Game) (*Game, error) {
	if game.IgdbID == nil {
		return nil, &ValidationError{Field: "igdb_id", Message: "missing external catalog id"}
	}

	var existing Game
	err := d.db.First(&existing, "igdb_id = ?", *game.IgdbID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := d.db.Create(game).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to another pass; read the winner.
			if err := d.db.First(&existing, "igdb_id = ?", *game.IgdbID).Error; err != nil {
				return nil, translateErr(err)
			}
			return &existing, nil
		}
		return nil, err
	}
	return game, nil
}

// Library entry operations

// CreateLibraryEntry inserts a new entry. A soft-deleted row still
// occupies the (user, game, platform) unique index, so a collision with
// one restores it under the new status instead of failing; a collision
// with a live row is surfaced as ErrDuplicate.
func (d *Database) CreateLibraryEntry(entry *LibraryEntry) error {
	err := d.db.Create(entry).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	var existing LibraryEntry
	lookup := d.db.Unscoped().
		Where("user_id = ? AND game_id = ? AND platform = ?", entry.UserID, entry.GameID, entry.Platform).
		First(&existing)
	if lookup.Error != nil {
		return translateErr(lookup.Error)
	}
	if !existing.DeletedAt.Valid {
		return ErrDuplicate
	}

	// Re-adding a deleted entry revives the old row. Timestamps from
	// the previous life survive unless the new entry carries its own.
	if entry.StartedAt == nil {
		entry.StartedAt = existing.StartedAt
	}
	if entry.CompletedAt == nil {
		entry.CompletedAt = existing.CompletedAt
	}

	updates := map[string]interface{}{
		"deleted_at":       nil,
		"status":           entry.Status,
		"acquisition_type": entry.AcquisitionType,
		"started_at":       entry.StartedAt,
		"completed_at":     entry.CompletedAt,
	}
	err = d.db.Unscoped().
		Model(&LibraryEntry{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error
	if err != nil {
		return err
	}

	entry.ID = existing.ID
	entry.CreatedAt = existing.CreatedAt
	entry.DeletedAt = gorm.DeletedAt{}
	return nil
}

// GetLibraryEntry retrieves one entry scoped to a user.
func (d *Database) GetLibraryEntry(userID string, id uint) (*LibraryEntry, error) {
	var entry LibraryEntry
	err := d.db.Preload("Game").First(&entry, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &entry, nil
}

// UpdateLibraryEntry persists changes to an existing entry.
func (d *Database) UpdateLibraryEntry(entry *LibraryEntry) error {
	return translateErr(d.db.Save(entry).Error)
}

// SoftDeleteLibraryEntry marks an entry deleted without removing the row.
func (d *Database) SoftDeleteLibraryEntry(userID string, id uint) error {
	res := d.db.Where("id = ? AND user_id = ?", id, userID).Delete(&LibraryEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserEntriesWithGames retrieves a user's entries joined with their
// games, ordered by creation time so grouping stays stable across
// reads. Wishlist rows are excluded unless the filter asks for them.
func (d *Database) GetUserEntriesWithGames(userID string, filter LibraryFilter) ([]EntryWithGame, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	q := d.db.Preload("Game").Where("user_id = ?", userID).Order("created_at asc")

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	} else {
		q = q.Where("status <> ?", StatusWishlist)
	}
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}

	var entries []LibraryEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}

	pairs := make([]EntryWithGame, 0, len(entries))
	for _, entry := range entries {
		if filter.Search != "" && !containsFold(entry.Game.Title, filter.Search) {
			continue
		}
		pairs = append(pairs, EntryWithGame{Game: entry.Game, Entry: entry})
	}
	return pairs, nil
}

// GetAllUserEntriesWithGames retrieves every live entry for a user,
// wishlist included. Reconciliation dedups against this snapshot.
func (d *Database) GetAllUserEntriesWithGames(userID string) ([]EntryWithGame, error) {
	var entries []LibraryEntry
	err := d.db.Preload("Game").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	pairs := make([]EntryWithGame, 0, len(entries))
	for _, entry := range entries {
		pairs = append(pairs, EntryWithGame{Game: entry.Game, Entry: entry})
	}
	return pairs, nil
}

// Ignored import operations

// AddIgnored records a normalized title as permanently skipped for a
// user. Repeated ignores of the same title are no-ops.
func (d *Database) AddIgnored(userID, normalizedTitle string) error {
	if normalizedTitle == "" {
		return &ValidationError{Field: "title", Message: "title normalizes to empty string"}
	}
	ignored := IgnoredImport{UserID: userID, NormalizedTitle: normalizedTitle}
	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ignored).Error
}

// ListIgnored retrieves a user's ignored titles.
func (d *Database) ListIgnored(userID string) ([]IgnoredImport, error) {
	var ignored []IgnoredImport
	err := d.db.Where("user_id = ?", userID).Order("created_at asc").Find(&ignored).Error
	return ignored, err
}

// Steam connection operations

// UpsertSteamConnection stores or replaces a user's Steam link.
func (d *Database) UpsertSteamConnection(conn *SteamConnection) error {
	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"steam_id64", "updated_at"}),
	}).Create(conn).Error
}

// GetSteamConnection retrieves a user's Steam link.
func (d *Database) GetSteamConnection(userID string) (*SteamConnection, error) {
	var conn SteamConnection
	if err := d.db.First(&conn, "user_id = ?", userID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &conn, nil
}

// ListSteamConnections retrieves every Steam link for background sync.
func (d *Database) ListSteamConnections() ([]SteamConnection, error) {
	var conns []SteamConnection
	err := d.db.Order("created_at asc").Find(&conns).Error
	return conns, err
}

// TouchSteamConnection records a completed sync.
func (d *Database) TouchSteamConnection(userID string, at time.Time) error {
	return d.db.Model(&SteamConnection{}).
		Where("user_id = ?", userID).
		Update("last_synced_at", at).Error
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
