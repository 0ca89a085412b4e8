// Package steam is the external source adapter: it turns a user's
// Steam library into import candidates for reconciliation.
package steam

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/config"
	"github.com/NeiruBugz/play-later/internal/models"
)

const defaultBaseURL = "https://api.steampowered.com"

// SteamID64 values are 17-digit numbers; anything else is treated as
// a vanity name and resolved first.
var steamIDPattern = regexp.MustCompile(`^\d{17}$`)

// ErrPrivateProfile is returned when the profile's game details are
// not public.
var ErrPrivateProfile = errors.New("steam profile game details are private")

// ErrProfileNotFound is returned when neither a SteamID64 nor a vanity
// name resolves to a profile.
var ErrProfileNotFound = errors.New("steam profile not found")

// Client is a Steam Web API client.
type Client struct {
	http   *resty.Client
	apiKey string
	logger zerolog.Logger
}

// NewClient creates a new Steam client.
func NewClient(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	if cfg.SteamAPIKey == "" {
		return nil, fmt.Errorf("steam api key is required")
	}

	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "play-later/1.0")

	return &Client{
		http:   httpClient,
		apiKey: cfg.SteamAPIKey,
		logger: logger,
	}, nil
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(url string) {
	c.http.SetBaseURL(url)
}

type resolveVanityResponse struct {
	Response struct {
		Success int    `json:"success"`
		SteamID string `json:"steamid"`
		Message string `json:"message"`
	} `json:"response"`
}

// ResolveSteamID turns user-provided input into a SteamID64. A
// 17-digit id passes through untouched; anything else is resolved as a
// vanity URL name.
func (c *Client) ResolveSteamID(ctx context.Context, input string) (string, error) {
	if steamIDPattern.MatchString(input) {
		return input, nil
	}

	var result resolveVanityResponse
	err := c.get(ctx, "/ISteamUser/ResolveVanityURL/v1/", map[string]string{
		"key":       c.apiKey,
		"vanityurl": input,
	}, &result)
	if err != nil {
		return "", err
	}

	// success == 1 means resolved; 42 means no match.
	if result.Response.Success != 1 || result.Response.SteamID == "" {
		c.logger.Debug().Str("vanity", input).Str("message", result.Response.Message).Msg("Vanity URL did not resolve")
		return "", ErrProfileNotFound
	}

	return result.Response.SteamID, nil
}

type ownedGamesResponse struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []OwnedGame `json:"games"`
	} `json:"response"`
}

// OwnedGame is one row of the GetOwnedGames payload.
type OwnedGame struct {
	AppID           int64  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	RTimeLastPlayed int64  `json:"rtime_last_played"`
	ImgIconURL      string `json:"img_icon_url"`
}

// GetOwnedGames fetches the user's full Steam library as import
// candidates. An empty payload for a valid id means the profile's game
// details are private.
func (c *Client) GetOwnedGames(ctx context.Context, steamID64 string) ([]models.ImportCandidate, error) {
	if !steamIDPattern.MatchString(steamID64) {
		return nil, &models.ValidationError{Field: "steam_id", Message: "steam id must be a 17-digit number"}
	}

	var result ownedGamesResponse
	err := c.get(ctx, "/IPlayerService/GetOwnedGames/v1/", map[string]string{
		"key":             c.apiKey,
		"steamid":         steamID64,
		"include_appinfo": "1",
		"format":          "json",
	}, &result)
	if err != nil {
		return nil, err
	}

	// The API returns an empty response body both for private profiles
	// and for accounts that own nothing; the two are indistinguishable,
	// so the empty case is reported as private.
	if result.Response.GameCount == 0 && len(result.Response.Games) == 0 {
		return nil, ErrPrivateProfile
	}

	c.logger.Debug().Str("steam_id", steamID64).Int("count", result.Response.GameCount).Msg("Fetched owned games")
	return ConvertOwnedGames(result.Response.Games), nil
}

// ConvertOwnedGames maps API rows to import candidates.
func ConvertOwnedGames(games []OwnedGame) []models.ImportCandidate {
	candidates := make([]models.ImportCandidate, 0, len(games))
	for _, game := range games {
		candidate := models.ImportCandidate{
			SourceID:        strconv.FormatInt(game.AppID, 10),
			Title:           game.Name,
			PlaytimeMinutes: game.PlaytimeForever,
			PlatformHint:    "PC",
		}
		if game.RTimeLastPlayed > 0 {
			lastPlayed := time.Unix(game.RTimeLastPlayed, 0).UTC()
			candidate.LastPlayedAt = &lastPlayed
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

// get performs a GET with retries on transient failures. Client errors
// other than 429 are not retried.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	operation := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(out).
			Get(path)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode() == 401 || resp.StatusCode() == 403:
			return backoff.Permanent(fmt.Errorf("steam rejected request: %s", resp.Status()))
		case resp.StatusCode() == 429:
			return fmt.Errorf("steam rate limited")
		case resp.IsError():
			return fmt.Errorf("steam returned %s", resp.Status())
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return &models.UpstreamError{Service: "steam", Err: err}
	}
	return nil
}
