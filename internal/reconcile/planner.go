package reconcile

import (
	"time"

	"github.com/NeiruBugz/play-later/internal/models"
	"github.com/NeiruBugz/play-later/internal/utils"
)

// recentPlayWindow separates "playing" from "took a break" when
// deriving an initial status from storefront playtime.
const recentPlayWindow = 7 * 24 * time.Hour

// CatalogMatch is the canonical catalog identity a candidate resolved
// to. GameID is set when the canonical game already exists locally;
// IgdbID links games discovered through the external catalog.
type CatalogMatch struct {
	GameID         string
	IgdbID         int64
	Title          string
	CoverImage     string
	ReleaseDate    *time.Time
	SteamAppID     *int64
	MainStoryHours *float64
}

// Candidate pairs an import row with its catalog resolution. Match is
// nil when the external lookup found nothing usable.
type Candidate struct {
	Import models.ImportCandidate
	Match  *CatalogMatch
}

// SkipReason explains why a candidate was routed to the skip set.
type SkipReason string

const (
	SkipAlreadyInLibrary SkipReason = "already_in_library"
	SkipIgnored          SkipReason = "ignored"
	SkipDenylisted       SkipReason = "denylisted"
)

// PlannedEntry is one candidate with its planned disposition.
type PlannedEntry struct {
	Import   models.ImportCandidate `json:"import"`
	Match    *CatalogMatch          `json:"match,omitempty"`
	Platform models.Platform        `json:"platform"`
	Status   models.Status          `json:"status,omitempty"`
	Reason   SkipReason             `json:"reason,omitempty"`
}

// Plan is the output of one reconciliation pass: three disjoint sets
// whose union covers every input candidate. Computing a plan mutates
// nothing; applying ToCreate is the caller's job.
type Plan struct {
	ToCreate   []PlannedEntry `json:"to_create"`
	ToSkip     []PlannedEntry `json:"to_skip"`
	Unresolved []PlannedEntry `json:"unresolved"`
}

// Planner diffs freshly imported candidates against a user's grouped
// existing entries.
type Planner struct {
	matcher  *Matcher
	denylist *utils.Denylist
}

// NewPlanner creates a planner.
func NewPlanner(matcher *Matcher, denylist *utils.Denylist) *Planner {
	return &Planner{matcher: matcher, denylist: denylist}
}

// Build computes the plan for one batch. Inputs are a snapshot: the
// same snapshot and batch always produce the same plan, and the
// storage layer's uniqueness constraint backstops any concurrent pass
// that races this computation.
func (p *Planner) Build(existing []models.GameWithEntries, candidates []Candidate, ignored []models.IgnoredImport, now time.Time) Plan {
	ignoredTitles := make(map[string]struct{}, len(ignored))
	for _, ig := range ignored {
		ignoredTitles[ig.NormalizedTitle] = struct{}{}
	}

	existingTitles := make([]string, len(existing))
	for i, g := range existing {
		existingTitles[i] = NormalizeTitle(g.Game.Title)
	}

	var plan Plan
	for _, candidate := range candidates {
		normalized := NormalizeTitle(candidate.Import.Title)
		platform := ClassifyPlatform(candidate.Import.PlatformHint)

		entry := PlannedEntry{
			Import:   candidate.Import,
			Match:    candidate.Match,
			Platform: platform,
		}

		if _, ok := ignoredTitles[normalized]; ok {
			entry.Reason = SkipIgnored
			plan.ToSkip = append(plan.ToSkip, entry)
			continue
		}

		if denied, _ := p.denylist.Match(candidate.Import.Title); denied {
			entry.Reason = SkipDenylisted
			plan.ToSkip = append(plan.ToSkip, entry)
			continue
		}

		owned := p.findOwned(existing, existingTitles, candidate.Match, normalized)
		if owned != nil && hasPlatform(owned, platform) {
			entry.Reason = SkipAlreadyInLibrary
			plan.ToSkip = append(plan.ToSkip, entry)
			continue
		}

		if candidate.Match == nil || normalized == "" {
			plan.Unresolved = append(plan.Unresolved, entry)
			continue
		}

		entry.Status = initialStatus(candidate.Import, now)
		plan.ToCreate = append(plan.ToCreate, entry)
	}

	return plan
}

// findOwned locates the user's existing aggregate for the same
// canonical game. Resolved candidates compare by catalog identity;
// unresolved ones fall back to fuzzy title matching so an already
// imported game is not re-flagged every pass.
func (p *Planner) findOwned(existing []models.GameWithEntries, existingTitles []string, match *CatalogMatch, normalized string) *models.GameWithEntries {
	if match != nil {
		for i := range existing {
			game := &existing[i].Game
			if match.GameID != "" && game.ID == match.GameID {
				return &existing[i]
			}
			if match.IgdbID != 0 && game.IgdbID != nil && *game.IgdbID == match.IgdbID {
				return &existing[i]
			}
		}
	}

	if normalized == "" {
		return nil
	}
	if best, ok := p.matcher.BestMatch(normalized, existingTitles); ok {
		return &existing[best.Index]
	}
	return nil
}

func hasPlatform(owned *models.GameWithEntries, platform models.Platform) bool {
	for _, entry := range owned.Entries {
		if entry.Platform == platform {
			return true
		}
	}
	return false
}

// initialStatus derives a starting status from storefront playtime:
// never launched means owned, recent play means playing, stale play
// means paused.
func initialStatus(candidate models.ImportCandidate, now time.Time) models.Status {
	if candidate.PlaytimeMinutes <= 0 {
		return models.StatusOwned
	}
	if candidate.LastPlayedAt != nil && now.Sub(*candidate.LastPlayedAt) <= recentPlayWindow {
		return models.StatusPlaying
	}
	return models.StatusPaused
}
