package models

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustCreateGame(t *testing.T, db *Database, title string, igdbID int64) *Game {
	t.Helper()
	game := &Game{Title: title}
	if igdbID != 0 {
		game.IgdbID = &igdbID
	}
	if err := db.CreateGame(game); err != nil {
		t.Fatalf("failed to create game %q: %v", title, err)
	}
	return game
}

func TestGameLookups(t *testing.T) {
	db := newTestDatabase(t)

	game := mustCreateGame(t, db, "Celeste", 100)
	if game.ID == "" {
		t.Fatal("game id not assigned on create")
	}

	byID, err := db.GetGameByID(game.ID)
	if err != nil {
		t.Fatalf("GetGameByID: %v", err)
	}
	if byID.Title != "Celeste" {
		t.Errorf("Title = %q, want Celeste", byID.Title)
	}

	byIgdb, err := db.GetGameByIgdbID(100)
	if err != nil {
		t.Fatalf("GetGameByIgdbID: %v", err)
	}
	if byIgdb.ID != game.ID {
		t.Errorf("ID = %q, want %q", byIgdb.ID, game.ID)
	}

	if _, err := db.GetGameByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetGameByID(missing) = %v, want ErrNotFound", err)
	}
}

func TestFirstOrCreateGameByIgdbID(t *testing.T) {
	db := newTestDatabase(t)

	igdbID := int64(200)
	first, err := db.FirstOrCreateGameByIgdbID(&Game{IgdbID: &igdbID, Title: "Hades"})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	second, err := db.FirstOrCreateGameByIgdbID(&Game{IgdbID: &igdbID, Title: "Hades"})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call created a new game: %q != %q", second.ID, first.ID)
	}

	var validation *ValidationError
	if _, err := db.FirstOrCreateGameByIgdbID(&Game{Title: "no id"}); !errors.As(err, &validation) {
		t.Errorf("missing igdb id: got %v, want ValidationError", err)
	}
}

func TestCreateLibraryEntryDuplicate(t *testing.T) {
	db := newTestDatabase(t)
	game := mustCreateGame(t, db, "Celeste", 100)

	entry := &LibraryEntry{
		UserID:          "u1",
		GameID:          game.ID,
		Status:          StatusOwned,
		Platform:        PlatformPC,
		AcquisitionType: AcquisitionDigital,
	}
	if err := db.CreateLibraryEntry(entry); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	dup := &LibraryEntry{
		UserID:          "u1",
		GameID:          game.ID,
		Status:          StatusOwned,
		Platform:        PlatformPC,
		AcquisitionType: AcquisitionDigital,
	}
	if err := db.CreateLibraryEntry(dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate insert = %v, want ErrDuplicate", err)
	}

	// Same game on another platform is a separate entry.
	other := &LibraryEntry{
		UserID:          "u1",
		GameID:          game.ID,
		Status:          StatusOwned,
		Platform:        PlatformNintendo,
		AcquisitionType: AcquisitionDigital,
	}
	if err := db.CreateLibraryEntry(other); err != nil {
		t.Errorf("different platform insert: %v", err)
	}
}

func TestSoftDeleteLibraryEntry(t *testing.T) {
	db := newTestDatabase(t)
	game := mustCreateGame(t, db, "Celeste", 100)

	entry := &LibraryEntry{
		UserID:          "u1",
		GameID:          game.ID,
		Status:          StatusOwned,
		Platform:        PlatformPC,
		AcquisitionType: AcquisitionDigital,
	}
	if err := db.CreateLibraryEntry(entry); err != nil {
		t.Fatal(err)
	}

	if err := db.SoftDeleteLibraryEntry("u1", entry.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetLibraryEntry("u1", entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
	if err := db.SoftDeleteLibraryEntry("u1", entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}

	// Another user's id never deletes this user's entry.
	if err := db.SoftDeleteLibraryEntry("u2", entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user delete = %v, want ErrNotFound", err)
	}
}

func TestCreateLibraryEntryRestoresSoftDeleted(t *testing.T) {
	db := newTestDatabase(t)
	game := mustCreateGame(t, db, "Celeste", 100)

	started := time.Unix(1700000000, 0).UTC()
	original := &LibraryEntry{
		UserID:          "u1",
		GameID:          game.ID,
		Status:          StatusPlaying,
		Platform:        PlatformPC,
		AcquisitionType: AcquisitionDigital,
		StartedAt:       &started,
	}
	if err := db.CreateLibraryEntry(original); err != nil {
		t.Fatal(err)
	}
	if err := db.SoftDeleteLibraryEntry("u1", original.ID); err != nil {
		t.Fatal(err)
	}

	// Re-adding the same (user, game, platform) revives the deleted row
	// instead of dead-ending on the unique index.
	readded := &LibraryEntry{
		UserID:          "u1",
		GameID:          game.ID,
		Status:          StatusOwned,
		Platform:        PlatformPC,
		AcquisitionType: AcquisitionPhysical,
	}
	if err := db.CreateLibraryEntry(readded); err != nil {
		t.Fatalf("re-add after soft delete: %v", err)
	}
	if readded.ID != original.ID {
		t.Errorf("re-add created a new row: id %d, want %d", readded.ID, original.ID)
	}

	restored, err := db.GetLibraryEntry("u1", original.ID)
	if err != nil {
		t.Fatalf("restored entry not readable: %v", err)
	}
	if restored.Status != StatusOwned || restored.AcquisitionType != AcquisitionPhysical {
		t.Errorf("restored entry = %+v, want new status and acquisition", restored)
	}
	if restored.StartedAt == nil || !restored.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v carried over from the first life", restored.StartedAt, started)
	}

	// A live row still conflicts.
	dup := &LibraryEntry{
		UserID:          "u1",
		GameID:          game.ID,
		Status:          StatusOwned,
		Platform:        PlatformPC,
		AcquisitionType: AcquisitionDigital,
	}
	if err := db.CreateLibraryEntry(dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("insert over live row = %v, want ErrDuplicate", err)
	}
}

func TestGetUserEntriesWithGamesExcludesWishlist(t *testing.T) {
	db := newTestDatabase(t)
	celeste := mustCreateGame(t, db, "Celeste", 100)
	hades := mustCreateGame(t, db, "Hades", 200)

	entries := []*LibraryEntry{
		{UserID: "u1", GameID: celeste.ID, Status: StatusPlaying, Platform: PlatformPC, AcquisitionType: AcquisitionDigital},
		{UserID: "u1", GameID: hades.ID, Status: StatusWishlist, Platform: PlatformPC, AcquisitionType: AcquisitionDigital},
	}
	for _, e := range entries {
		if err := db.CreateLibraryEntry(e); err != nil {
			t.Fatal(err)
		}
	}

	pairs, err := db.GetUserEntriesWithGames("u1", LibraryFilter{})
	if err != nil {
		t.Fatalf("default read: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Game.Title != "Celeste" {
		t.Errorf("default read returned %d pairs, want only Celeste", len(pairs))
	}

	wishlist, err := db.GetUserEntriesWithGames("u1", LibraryFilter{Status: StatusWishlist})
	if err != nil {
		t.Fatalf("wishlist read: %v", err)
	}
	if len(wishlist) != 1 || wishlist[0].Game.Title != "Hades" {
		t.Errorf("wishlist read returned %d pairs, want only Hades", len(wishlist))
	}

	all, err := db.GetAllUserEntriesWithGames("u1")
	if err != nil {
		t.Fatalf("snapshot read: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("snapshot returned %d pairs, want 2", len(all))
	}
}

func TestGetUserEntriesWithGamesFilters(t *testing.T) {
	db := newTestDatabase(t)
	celeste := mustCreateGame(t, db, "Celeste", 100)
	hades := mustCreateGame(t, db, "Hades", 200)

	entries := []*LibraryEntry{
		{UserID: "u1", GameID: celeste.ID, Status: StatusPlaying, Platform: PlatformPC, AcquisitionType: AcquisitionDigital},
		{UserID: "u1", GameID: hades.ID, Status: StatusOwned, Platform: PlatformNintendo, AcquisitionType: AcquisitionDigital},
	}
	for _, e := range entries {
		if err := db.CreateLibraryEntry(e); err != nil {
			t.Fatal(err)
		}
	}

	byPlatform, err := db.GetUserEntriesWithGames("u1", LibraryFilter{Platform: PlatformNintendo})
	if err != nil {
		t.Fatal(err)
	}
	if len(byPlatform) != 1 || byPlatform[0].Game.Title != "Hades" {
		t.Errorf("platform filter returned %d pairs, want only Hades", len(byPlatform))
	}

	bySearch, err := db.GetUserEntriesWithGames("u1", LibraryFilter{Search: "cele"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySearch) != 1 || bySearch[0].Game.Title != "Celeste" {
		t.Errorf("search filter returned %d pairs, want only Celeste", len(bySearch))
	}

	var validation *ValidationError
	if _, err := db.GetUserEntriesWithGames("u1", LibraryFilter{Platform: "dreamcast"}); !errors.As(err, &validation) {
		t.Errorf("invalid filter = %v, want ValidationError", err)
	}
}

func TestAddIgnoredIdempotent(t *testing.T) {
	db := newTestDatabase(t)

	if err := db.AddIgnored("u1", "hades ii demo"); err != nil {
		t.Fatalf("first ignore: %v", err)
	}
	if err := db.AddIgnored("u1", "hades ii demo"); err != nil {
		t.Fatalf("repeat ignore: %v", err)
	}

	ignored, err := db.ListIgnored("u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ignored) != 1 {
		t.Errorf("got %d ignored rows, want 1", len(ignored))
	}

	var validation *ValidationError
	if err := db.AddIgnored("u1", ""); !errors.As(err, &validation) {
		t.Errorf("empty title = %v, want ValidationError", err)
	}
}

func TestSteamConnectionLifecycle(t *testing.T) {
	db := newTestDatabase(t)

	if err := db.UpsertSteamConnection(&SteamConnection{UserID: "u1", SteamID64: "76561197960287930"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := db.UpsertSteamConnection(&SteamConnection{UserID: "u1", SteamID64: "76561197960287931"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	conn, err := db.GetSteamConnection("u1")
	if err != nil {
		t.Fatal(err)
	}
	if conn.SteamID64 != "76561197960287931" {
		t.Errorf("SteamID64 = %q, want replacement value", conn.SteamID64)
	}

	conns, err := db.ListSteamConnections()
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 1 {
		t.Errorf("got %d connections, want 1", len(conns))
	}

	at := time.Unix(1700000000, 0).UTC()
	if err := db.TouchSteamConnection("u1", at); err != nil {
		t.Fatal(err)
	}
	conn, err = db.GetSteamConnection("u1")
	if err != nil {
		t.Fatal(err)
	}
	if conn.LastSyncedAt == nil || !conn.LastSyncedAt.Equal(at) {
		t.Errorf("LastSyncedAt = %v, want %v", conn.LastSyncedAt, at)
	}

	if _, err := db.GetSteamConnection("u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user = %v, want ErrNotFound", err)
	}
}
