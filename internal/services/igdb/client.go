// Package igdb is the catalog lookup provider: it resolves external
// titles to canonical catalog records, either directly by Steam app id
// or by title search.
package igdb

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/config"
	"github.com/NeiruBugz/play-later/internal/models"
)

const (
	defaultAPIURL   = "https://api.igdb.com/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"

	// Refresh slightly before Twitch expires the token.
	tokenExpirySafetyMargin = 5 * time.Minute

	searchCacheTTL = 5 * time.Minute
)

// Game is a catalog record as returned by IGDB.
type Game struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	FirstReleaseDate int64  `json:"first_release_date"`
	Cover            struct {
		ImageID string `json:"image_id"`
	} `json:"cover"`
	Platforms []struct {
		Name string `json:"name"`
	} `json:"platforms"`
}

// CoverURL returns the image URL for the game's cover, or "".
func (g *Game) CoverURL() string {
	if g.Cover.ImageID == "" {
		return ""
	}
	return "https://images.igdb.com/igdb/image/upload/t_cover_big/" + g.Cover.ImageID + ".jpg"
}

// ReleaseDate converts the epoch release date, or nil when absent.
func (g *Game) ReleaseDate() *time.Time {
	if g.FirstReleaseDate == 0 {
		return nil
	}
	t := time.Unix(g.FirstReleaseDate, 0).UTC()
	return &t
}

// session holds the Twitch OAuth token for IGDB access. It is owned by
// the client instance rather than package-global state; one client per
// process, injected everywhere.
type session struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Client is an IGDB API client.
type Client struct {
	http         *resty.Client
	tokenURL     string
	clientID     string
	clientSecret string
	session      *session
	cache        *cache.Cache
	logger       zerolog.Logger
}

// NewClient creates a new IGDB client.
func NewClient(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	if cfg.IGDBClientID == "" || cfg.IGDBClientSecret == "" {
		return nil, fmt.Errorf("igdb credentials are required")
	}

	httpClient := resty.New().
		SetBaseURL(defaultAPIURL).
		SetTimeout(30 * time.Second)

	return &Client{
		http:         httpClient,
		tokenURL:     defaultTokenURL,
		clientID:     cfg.IGDBClientID,
		clientSecret: cfg.IGDBClientSecret,
		session:      &session{},
		cache:        cache.New(searchCacheTTL, 10*time.Minute),
		logger:       logger,
	}, nil
}

// token returns a valid access token, refreshing through Twitch when
// the cached one is near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	if c.session.token != "" && time.Now().Before(c.session.expiresAt) {
		return c.session.token, nil
	}

	var result tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"grant_type":    "client_credentials",
		}).
		SetResult(&result).
		Post(c.tokenURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch twitch token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("twitch token request returned %s", resp.Status())
	}

	c.session.token = result.AccessToken
	c.session.expiresAt = time.Now().
		Add(time.Duration(result.ExpiresIn) * time.Second).
		Add(-tokenExpirySafetyMargin)

	c.logger.Debug().Int64("expires_in", result.ExpiresIn).Msg("Twitch access token refreshed")
	return c.session.token, nil
}

// Search queries the catalog by title. Results are cached briefly so a
// plan followed by an apply does not hit the API twice per title.
func (c *Client) Search(ctx context.Context, title string) ([]Game, error) {
	cacheKey := "search:" + title
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]Game), nil
	}

	query := fmt.Sprintf(
		`search %q; fields id, name, cover.image_id, first_release_date, platforms.name; limit 10;`,
		title,
	)

	var games []Game
	if err := c.query(ctx, "/games", query, &games); err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, games, cache.DefaultExpiration)
	return games, nil
}

// MatchSteamApp resolves a Steam app id through IGDB's external-game
// mappings. Returns ErrNotFound when the catalog has no row for the
// app, a normal outcome for delisted or niche titles.
func (c *Client) MatchSteamApp(ctx context.Context, appID int64) (*Game, error) {
	cacheKey := "steam:" + strconv.FormatInt(appID, 10)
	if cached, ok := c.cache.Get(cacheKey); ok {
		game := cached.(Game)
		return &game, nil
	}

	steamURL := fmt.Sprintf("https://store.steampowered.com/app/%d", appID)
	query := fmt.Sprintf(
		`fields id, name, cover.image_id, first_release_date, platforms.name; where external_games.url = %q; limit 1;`,
		steamURL,
	)

	var games []Game
	if err := c.query(ctx, "/games", query, &games); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, models.ErrNotFound
	}

	c.cache.Set(cacheKey, games[0], cache.DefaultExpiration)
	return &games[0], nil
}

// query posts an APIcalypse query with retries on transient failures.
func (c *Client) query(ctx context.Context, resource, body string, out interface{}) error {
	operation := func() error {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Client-ID", c.clientID).
			SetHeader("Authorization", "Bearer "+token).
			SetHeader("Accept", "application/json").
			SetBody(body).
			SetResult(out).
			Post(resource)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode() == 429:
			return fmt.Errorf("igdb rate limited")
		case resp.StatusCode() == 401:
			// Token may have been revoked; force a refresh and retry.
			c.session.mu.Lock()
			c.session.token = ""
			c.session.mu.Unlock()
			return fmt.Errorf("igdb rejected token")
		case resp.IsError():
			return backoff.Permanent(fmt.Errorf("igdb returned %s", resp.Status()))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return &models.UpstreamError{Service: "igdb", Err: err}
	}
	return nil
}
