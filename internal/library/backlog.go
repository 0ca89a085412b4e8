package library

import "github.com/NeiruBugz/play-later/internal/models"

// TotalMainStoryHours sums the known completion-time estimates across
// a grouped entry set. Games without an estimate contribute zero; they
// are not excluded from the set, since entry counts and aggregated
// hours are reported independently by callers. Pure, order-independent.
func TotalMainStoryHours(games []models.GameWithEntries) float64 {
	var total float64
	for _, g := range games {
		if g.Game.MainStoryHours != nil {
			total += *g.Game.MainStoryHours
		}
	}
	return total
}
