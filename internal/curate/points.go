package curate

import (
	"cmp"
	"math"
	"slices"

	"github.com/meur/cardforge/internal/models"
)

// PopularityBonus is +1 once log10(total+1)*0.3 reaches 1, i.e. from 2154
// raters upward, and 0 below that.
func PopularityBonus(ratingTotal int) int {
	if ratingTotal <= 0 {
		return 0
	}
	return min(1, int(math.Floor(math.Log10(float64(ratingTotal)+1)*0.3)))
}

// PointsWindow is the inclusive band points must stay within for cost.
func PointsWindow(cost int) (lo, hi int) {
	return 2*cost - 1, 2*cost + 2
}

type groupKey struct {
	cost   int
	rarity models.Rarity
}

// ScorePoints sets Points on every title from its cost, rarity, popularity
// and where its rating_score ranks within its (cost, rarity) group.
func ScorePoints(titles []models.Title, bonus map[models.Rarity]int) {
	groups := make(map[groupKey][]int)
	for i, t := range titles {
		k := groupKey{t.Cost, t.Rarity}
		groups[k] = append(groups[k], i)
	}

	offsets := make([]int, len(titles))
	for _, members := range groups {
		slices.SortStableFunc(members, func(a, b int) int {
			return cmp.Compare(titles[b].RatingScore, titles[a].RatingScore)
		})
		for rank, i := range members {
			offsets[i] = tercileOffset(rank, len(members))
		}
	}

	for i := range titles {
		t := &titles[i]
		raw := 2*t.Cost + 1 + bonus[t.Rarity] + PopularityBonus(t.RatingTotal) + offsets[i]
		lo, hi := PointsWindow(t.Cost)
		t.Points = max(lo, min(hi, raw))
	}
}

// tercileOffset maps a best-first rank within a group of n to +1 for the
// top 30%, -1 for the bottom 30% and 0 otherwise. In ascending order the
// boundaries are floor(0.3n) and floor(0.7n). Equal scores keep pool order,
// so the earlier title ranks higher.
func tercileOffset(rank, n int) int {
	if n <= 1 {
		return 0
	}
	asc := n - 1 - rank
	switch {
	case asc >= n*7/10:
		return 1
	case asc < n*3/10:
		return -1
	default:
		return 0
	}
}
