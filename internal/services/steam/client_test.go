package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/config"
	"github.com/NeiruBugz/play-later/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	client, err := NewClient(&config.Config{SteamAPIKey: "test-key"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		client.SetBaseURL(server.URL)
	}
	return client
}

func TestResolveSteamIDPassthrough(t *testing.T) {
	client := newTestClient(t, nil)

	id, err := client.ResolveSteamID(context.Background(), "76561197960287930")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "76561197960287930" {
		t.Errorf("id = %q, want input unchanged", id)
	}
}

func TestResolveSteamIDVanity(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ISteamUser/ResolveVanityURL/v1/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("vanityurl") != "gaben" {
			t.Errorf("vanityurl = %q, want gaben", r.URL.Query().Get("vanityurl"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"success":1,"steamid":"76561197960287930"}}`))
	}))

	id, err := client.ResolveSteamID(context.Background(), "gaben")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "76561197960287930" {
		t.Errorf("id = %q, want 76561197960287930", id)
	}
}

func TestResolveSteamIDVanityNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"success":42,"message":"No match"}}`))
	}))

	if _, err := client.ResolveSteamID(context.Background(), "nobody"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("got %v, want ErrProfileNotFound", err)
	}
}

func TestGetOwnedGames(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"game_count":1,"games":[{"appid":620,"name":"Portal 2","playtime_forever":600,"rtime_last_played":1700000000}]}}`))
	}))

	candidates, err := client.GetOwnedGames(context.Background(), "76561197960287930")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].SourceID != "620" || candidates[0].Title != "Portal 2" {
		t.Errorf("candidate = %+v", candidates[0])
	}
	if candidates[0].LastPlayedAt == nil {
		t.Error("LastPlayedAt not set")
	}
}

func TestGetOwnedGamesPrivateProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{}}`))
	}))

	if _, err := client.GetOwnedGames(context.Background(), "76561197960287930"); !errors.Is(err, ErrPrivateProfile) {
		t.Errorf("got %v, want ErrPrivateProfile", err)
	}
}

func TestGetOwnedGamesRejectsMalformedID(t *testing.T) {
	client := newTestClient(t, nil)

	var validation *models.ValidationError
	if _, err := client.GetOwnedGames(context.Background(), "gaben"); !errors.As(err, &validation) {
		t.Errorf("got %v, want ValidationError", err)
	}
}

func TestConvertOwnedGames(t *testing.T) {
	games := []OwnedGame{
		{AppID: 620, Name: "Portal 2", PlaytimeForever: 600, RTimeLastPlayed: 1700000000},
		{AppID: 504230, Name: "Celeste", PlaytimeForever: 0, RTimeLastPlayed: 0},
	}

	candidates := ConvertOwnedGames(games)
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	first := candidates[0]
	if first.SourceID != "620" || first.Title != "Portal 2" || first.PlaytimeMinutes != 600 {
		t.Errorf("first = %+v", first)
	}
	if first.PlatformHint != "PC" {
		t.Errorf("PlatformHint = %q, want PC", first.PlatformHint)
	}
	want := time.Unix(1700000000, 0).UTC()
	if first.LastPlayedAt == nil || !first.LastPlayedAt.Equal(want) {
		t.Errorf("LastPlayedAt = %v, want %v", first.LastPlayedAt, want)
	}

	if candidates[1].LastPlayedAt != nil {
		t.Errorf("never-played row got LastPlayedAt %v", candidates[1].LastPlayedAt)
	}
}
