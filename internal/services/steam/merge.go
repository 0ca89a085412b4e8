package steam

import (
	"github.com/NeiruBugz/play-later/internal/models"
	"github.com/NeiruBugz/play-later/internal/reconcile"
)

// MergeCandidates collapses duplicate acquisition rows into a single
// candidate per normalized title; Steam reports some titles once per
// beta branch or regional SKU. Playtime is
// summed and the most recent last-played timestamp wins. Input order
// of first occurrences is preserved.
func MergeCandidates(candidates []models.ImportCandidate) []models.ImportCandidate {
	merged := make([]models.ImportCandidate, 0, len(candidates))
	index := make(map[string]int, len(candidates))

	for _, candidate := range candidates {
		key := reconcile.NormalizeTitle(candidate.Title)
		if key == "" {
			// Unmatchable titles pass through untouched; the planner
			// routes them to unresolved.
			merged = append(merged, candidate)
			continue
		}

		i, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, candidate)
			continue
		}

		merged[i].PlaytimeMinutes += candidate.PlaytimeMinutes
		if candidate.LastPlayedAt != nil {
			if merged[i].LastPlayedAt == nil || candidate.LastPlayedAt.After(*merged[i].LastPlayedAt) {
				merged[i].LastPlayedAt = candidate.LastPlayedAt
			}
		}
	}

	return merged
}
