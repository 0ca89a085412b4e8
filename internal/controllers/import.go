package controllers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/NeiruBugz/play-later/internal/metrics"
	"github.com/NeiruBugz/play-later/internal/models"
	"github.com/NeiruBugz/play-later/internal/reconcile"
	"github.com/NeiruBugz/play-later/internal/services/igdb"
	"github.com/NeiruBugz/play-later/internal/services/steam"
)

// CatalogProvider resolves external titles to canonical catalog
// records.
type CatalogProvider interface {
	MatchSteamApp(ctx context.Context, appID int64) (*igdb.Game, error)
	Search(ctx context.Context, title string) ([]igdb.Game, error)
}

// SourceAdapter yields import candidates from a storefront account.
type SourceAdapter interface {
	ResolveSteamID(ctx context.Context, input string) (string, error)
	GetOwnedGames(ctx context.Context, steamID64 string) ([]models.ImportCandidate, error)
}

// ApplyResult summarizes one applied reconciliation pass.
type ApplyResult struct {
	Created    int                      `json:"created"`
	Skipped    int                      `json:"skipped"`
	Unresolved []reconcile.PlannedEntry `json:"unresolved"`
}

// ImportController orchestrates library reconciliation: candidate
// resolution against the catalog, plan computation, and idempotent
// apply.
type ImportController struct {
	db      *models.Database
	catalog CatalogProvider
	source  SourceAdapter
	planner *reconcile.Planner
	matcher *reconcile.Matcher
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewImportController creates a new import controller.
func NewImportController(db *models.Database, catalog CatalogProvider, source SourceAdapter, planner *reconcile.Planner, matcher *reconcile.Matcher, logger zerolog.Logger) *ImportController {
	return &ImportController{
		db:      db,
		catalog: catalog,
		source:  source,
		planner: planner,
		matcher: matcher,
		tracer:  otel.Tracer("controllers/import"),
		logger:  logger,
	}
}

// ConnectSteam links a user to a Steam account. Input may be a
// SteamID64 or a vanity name.
func (c *ImportController) ConnectSteam(ctx context.Context, userID, input string) (*models.SteamConnection, error) {
	if input == "" {
		return nil, &models.ValidationError{Field: "steam_id", Message: "steam id or vanity name is required"}
	}

	steamID, err := c.source.ResolveSteamID(ctx, input)
	if err != nil {
		return nil, err
	}

	conn := &models.SteamConnection{UserID: userID, SteamID64: steamID}
	if err := c.db.UpsertSteamConnection(conn); err != nil {
		return nil, err
	}

	c.logger.Info().Str("user_id", userID).Str("steam_id", steamID).Msg("Steam account connected")
	return conn, nil
}

// FetchCandidates pulls the user's Steam library and merges duplicate
// acquisition rows.
func (c *ImportController) FetchCandidates(ctx context.Context, userID string) ([]models.ImportCandidate, error) {
	conn, err := c.db.GetSteamConnection(userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &models.ValidationError{Field: "steam_id", Message: "no steam account connected"}
		}
		return nil, err
	}
	return c.fetchForConnection(ctx, conn)
}

func (c *ImportController) fetchForConnection(ctx context.Context, conn *models.SteamConnection) ([]models.ImportCandidate, error) {
	candidates, err := c.source.GetOwnedGames(ctx, conn.SteamID64)
	if err != nil {
		return nil, err
	}
	return steam.MergeCandidates(candidates), nil
}

// PlanImport computes a reconciliation plan for a batch of candidates
// against the user's current library snapshot. Nothing is persisted.
func (c *ImportController) PlanImport(ctx context.Context, userID string, candidates []models.ImportCandidate) (reconcile.Plan, error) {
	ctx, span := c.tracer.Start(ctx, "import.plan")
	defer span.End()
	start := time.Now()

	pairs, err := c.db.GetAllUserEntriesWithGames(userID)
	if err != nil {
		return reconcile.Plan{}, fmt.Errorf("failed to load existing entries: %w", err)
	}
	existing := reconcile.GroupEntries(pairs)

	ignored, err := c.db.ListIgnored(userID)
	if err != nil {
		return reconcile.Plan{}, fmt.Errorf("failed to load ignored imports: %w", err)
	}

	localGames, err := c.db.GetAllGames()
	if err != nil {
		return reconcile.Plan{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	resolved := make([]reconcile.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		match, err := c.resolve(ctx, localGames, candidate)
		if err != nil {
			// One bad upstream record degrades to unresolved, the
			// rest of the batch proceeds.
			c.logger.Warn().Err(err).Str("title", candidate.Title).Msg("Catalog lookup failed, marking unresolved")
			metrics.CatalogLookupErrors.Inc()
			match = nil
		}
		resolved = append(resolved, reconcile.Candidate{Import: candidate, Match: match})
	}

	plan := c.planner.Build(existing, resolved, ignored, time.Now())

	metrics.PlanDuration.Observe(time.Since(start).Seconds())
	metrics.ReconcileCandidates.WithLabelValues("to_create").Add(float64(len(plan.ToCreate)))
	metrics.ReconcileCandidates.WithLabelValues("to_skip").Add(float64(len(plan.ToSkip)))
	metrics.ReconcileCandidates.WithLabelValues("unresolved").Add(float64(len(plan.Unresolved)))
	span.SetAttributes(
		attribute.Int("candidates", len(candidates)),
		attribute.Int("to_create", len(plan.ToCreate)),
		attribute.Int("to_skip", len(plan.ToSkip)),
		attribute.Int("unresolved", len(plan.Unresolved)),
	)

	c.logger.Info().
		Str("user_id", userID).
		Int("candidates", len(candidates)).
		Int("to_create", len(plan.ToCreate)).
		Int("to_skip", len(plan.ToSkip)).
		Int("unresolved", len(plan.Unresolved)).
		Msg("Reconciliation plan computed")

	return plan, nil
}

// ApplyImport computes a plan and persists its toCreate set. A
// duplicate insert means another pass got there first and counts as a
// skip, so re-applying the same batch is idempotent.
func (c *ImportController) ApplyImport(ctx context.Context, userID string, candidates []models.ImportCandidate) (*ApplyResult, error) {
	ctx, span := c.tracer.Start(ctx, "import.apply")
	defer span.End()

	plan, err := c.PlanImport(ctx, userID, candidates)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{
		Skipped:    len(plan.ToSkip),
		Unresolved: plan.Unresolved,
	}

	for _, planned := range plan.ToCreate {
		game, err := c.ensureGame(planned.Match)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure canonical game %q: %w", planned.Match.Title, err)
		}

		entry := &models.LibraryEntry{
			UserID:          userID,
			GameID:          game.ID,
			Status:          planned.Status,
			Platform:        planned.Platform,
			AcquisitionType: models.AcquisitionDigital,
		}
		if err := c.db.CreateLibraryEntry(entry); err != nil {
			if errors.Is(err, models.ErrDuplicate) {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to create library entry: %w", err)
		}
		result.Created++
	}

	metrics.EntriesCreated.Add(float64(result.Created))
	span.SetAttributes(attribute.Int("created", result.Created))

	c.logger.Info().
		Str("user_id", userID).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("unresolved", len(result.Unresolved)).
		Msg("Reconciliation plan applied")

	return result, nil
}

// IgnoreTitle records a title as permanently skipped for a user.
func (c *ImportController) IgnoreTitle(ctx context.Context, userID, title string) error {
	normalized := reconcile.NormalizeTitle(title)
	if normalized == "" {
		return &models.ValidationError{Field: "title", Message: "title normalizes to empty string"}
	}
	return c.db.AddIgnored(userID, normalized)
}

// SyncConnected re-imports every connected Steam account. Failures are
// per-user; one broken account does not stop the sweep.
func (c *ImportController) SyncConnected(ctx context.Context) error {
	conns, err := c.db.ListSteamConnections()
	if err != nil {
		return fmt.Errorf("failed to list steam connections: %w", err)
	}

	for i := range conns {
		conn := &conns[i]
		candidates, err := c.fetchForConnection(ctx, conn)
		if err != nil {
			c.logger.Warn().Err(err).Str("user_id", conn.UserID).Msg("Background sync fetch failed")
			continue
		}
		if _, err := c.ApplyImport(ctx, conn.UserID, candidates); err != nil {
			c.logger.Warn().Err(err).Str("user_id", conn.UserID).Msg("Background sync apply failed")
			continue
		}
		if err := c.db.TouchSteamConnection(conn.UserID, time.Now()); err != nil {
			c.logger.Warn().Err(err).Str("user_id", conn.UserID).Msg("Failed to record sync time")
		}
	}

	return nil
}

// resolve maps one candidate to a canonical catalog identity. Local
// games win over external lookups: first by stored Steam app id, then
// by fuzzy title match, then IGDB by app id, then IGDB title search
// run through the matcher.
func (c *ImportController) resolve(ctx context.Context, localGames []models.Game, candidate models.ImportCandidate) (*reconcile.CatalogMatch, error) {
	normalized := reconcile.NormalizeTitle(candidate.Title)
	if normalized == "" {
		return nil, nil
	}

	appID, _ := strconv.ParseInt(candidate.SourceID, 10, 64)

	if appID > 0 {
		for i := range localGames {
			if localGames[i].SteamAppID != nil && *localGames[i].SteamAppID == appID {
				return localMatch(&localGames[i]), nil
			}
		}
	}

	titles := make([]string, len(localGames))
	for i := range localGames {
		titles[i] = reconcile.NormalizeTitle(localGames[i].Title)
	}
	if best, ok := c.matcher.BestMatch(normalized, titles); ok {
		return localMatch(&localGames[best.Index]), nil
	}

	if appID > 0 {
		game, err := c.catalog.MatchSteamApp(ctx, appID)
		if err == nil {
			return catalogMatch(game, appID), nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	results, err := c.catalog.Search(ctx, normalized)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(results))
	for i := range results {
		names[i] = reconcile.NormalizeTitle(results[i].Name)
	}
	if best, ok := c.matcher.BestMatch(normalized, names); ok {
		return catalogMatch(&results[best.Index], appID), nil
	}

	return nil, nil
}

// ensureGame lazily creates the canonical game for a catalog match.
func (c *ImportController) ensureGame(match *reconcile.CatalogMatch) (*models.Game, error) {
	if match.GameID != "" {
		return c.db.GetGameByID(match.GameID)
	}

	igdbID := match.IgdbID
	game := &models.Game{
		IgdbID:         &igdbID,
		Title:          match.Title,
		CoverImage:     match.CoverImage,
		ReleaseDate:    match.ReleaseDate,
		SteamAppID:     match.SteamAppID,
		MainStoryHours: match.MainStoryHours,
	}
	return c.db.FirstOrCreateGameByIgdbID(game)
}

func localMatch(game *models.Game) *reconcile.CatalogMatch {
	match := &reconcile.CatalogMatch{
		GameID:         game.ID,
		Title:          game.Title,
		CoverImage:     game.CoverImage,
		ReleaseDate:    game.ReleaseDate,
		SteamAppID:     game.SteamAppID,
		MainStoryHours: game.MainStoryHours,
	}
	if game.IgdbID != nil {
		match.IgdbID = *game.IgdbID
	}
	return match
}

func catalogMatch(game *igdb.Game, steamAppID int64) *reconcile.CatalogMatch {
	match := &reconcile.CatalogMatch{
		IgdbID:      game.ID,
		Title:       game.Name,
		CoverImage:  game.CoverURL(),
		ReleaseDate: game.ReleaseDate(),
	}
	if steamAppID > 0 {
		match.SteamAppID = &steamAppID
	}
	return match
}
