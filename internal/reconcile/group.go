package reconcile

import "github.com/NeiruBugz/play-later/internal/models"

// GroupEntries reduces a flat (game, entry) stream into per-game
// aggregates. Group order follows the first occurrence of each game id
// in the input and entries keep their relative order within a group;
// no entry is dropped or duplicated. Map iteration order is never
// relied on.
func GroupEntries(pairs []models.EntryWithGame) []models.GameWithEntries {
	grouped := make([]models.GameWithEntries, 0)
	index := make(map[string]int, len(pairs))

	for _, pair := range pairs {
		i, ok := index[pair.Game.ID]
		if !ok {
			i = len(grouped)
			index[pair.Game.ID] = i
			grouped = append(grouped, models.GameWithEntries{Game: pair.Game})
		}
		grouped[i].Entries = append(grouped[i].Entries, pair.Entry)
	}

	return grouped
}
