package curate

import (
	"cmp"
	"slices"

	"github.com/meur/cardforge/internal/models"
)

// SelectCharacters keeps, for every curated title, its topN characters by
// comprehensive popularity, merges the per-title picks by character id and
// classifies the merged set with p. Characters not linked to any curated
// title are dropped. topN <= 0 keeps every linked character.
//
// Comprehensive popularity is computed once per character, from the best
// bonus among all its curated titles, and is used both for the per-title
// cut and for the merge.
func SelectCharacters(titles []models.Title, chars []models.Character, bonus map[models.Rarity]int, topN int, p Percentiles) []models.Character {
	titleBonus := make(map[int]int, len(titles))
	for _, t := range titles {
		titleBonus[t.ID] = bonus[t.Rarity]
	}

	// Pool index of every curated-linked character, per title, in pool order.
	byTitle := make(map[int][]int, len(titles))
	scored := make([]models.Character, len(chars))
	for i, c := range chars {
		scored[i] = c
		best, linked := 0, false
		seen := make(map[int]bool, len(c.AnimeIDs))
		for _, id := range c.AnimeIDs {
			b, ok := titleBonus[id]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			if !linked || b > best {
				best = b
			}
			linked = true
			byTitle[id] = append(byTitle[id], i)
		}
		if linked {
			scored[i].ComprehensivePopularity = c.Popularity + best
		}
	}

	var merged []models.Character
	pos := make(map[int]int)
	for _, t := range titles {
		members := byTitle[t.ID]
		if len(members) == 0 {
			continue
		}
		members = slices.Clone(members)
		slices.SortStableFunc(members, func(a, b int) int {
			return cmp.Compare(scored[b].ComprehensivePopularity, scored[a].ComprehensivePopularity)
		})
		if topN > 0 && len(members) > topN {
			members = members[:topN]
		}
		for _, idx := range members {
			c := scored[idx]
			if at, ok := pos[c.ID]; ok {
				if c.ComprehensivePopularity > merged[at].ComprehensivePopularity {
					merged[at] = c
				}
				continue
			}
			pos[c.ID] = len(merged)
			merged = append(merged, c)
		}
	}

	slices.SortStableFunc(merged, func(a, b models.Character) int {
		return cmp.Compare(b.ComprehensivePopularity, a.ComprehensivePopularity)
	})
	ClassifyCharacters(merged, p)
	return merged
}
