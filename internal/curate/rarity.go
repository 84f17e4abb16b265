package curate

import (
	"fmt"
	"math"

	"github.com/meur/cardforge/internal/models"
)

// Percentiles holds the cumulative rank fraction at which each classified
// tier ends, indexed by rarity (UR through R). The R entry is always 1.
type Percentiles [5]float64

// floorEps keeps products like 100*0.29 (28.999999999999996 in float64)
// from flooring one rank short. Plain truncation would give 28 there; the
// cutoff is meant to be the exact floor of n*p, so 29 is returned.
const floorEps = 1e-9

// Validate checks that breakpoints strictly increase within (0, 1] and that
// the last one is exactly 1.
func (p Percentiles) Validate() error {
	prev := 0.0
	for i, v := range p {
		if math.IsNaN(v) || v <= prev || v > 1 {
			return fmt.Errorf("%w: %s breakpoint %v must be in (%v, 1]",
				ErrInvalidConfig, models.Rarity(i), v, prev)
		}
		prev = v
	}
	if p[len(p)-1] != 1 {
		return fmt.Errorf("%w: R breakpoint must be 1, got %v", ErrInvalidConfig, p[len(p)-1])
	}
	return nil
}

// Cutoffs returns, per tier, the first rank index that no longer belongs
// to it for a pool of n items: floor(n*p) with floorEps slack, so float
// noise never drops a rank from a tier.
func (p Percentiles) Cutoffs(n int) [5]int {
	var out [5]int
	for i, v := range p {
		c := int(math.Floor(float64(n)*v + floorEps))
		if c > n {
			c = n
		}
		out[i] = c
	}
	out[len(out)-1] = n
	return out
}

// Tiers assigns a rarity to each rank 0..n-1 of a pool sorted best first.
func (p Percentiles) Tiers(n int) []models.Rarity {
	cut := p.Cutoffs(n)
	out := make([]models.Rarity, n)
	tier := 0
	for i := range out {
		for tier < len(cut)-1 && i >= cut[tier] {
			tier++
		}
		out[i] = models.Rarity(tier)
	}
	return out
}

// Counts returns how many of n items land in each tier.
func (p Percentiles) Counts(n int) map[models.Rarity]int {
	cut := p.Cutoffs(n)
	out := make(map[models.Rarity]int, len(cut))
	prev := 0
	for i, c := range cut {
		if c < prev {
			c = prev
		}
		out[models.Rarity(i)] = c - prev
		prev = c
	}
	return out
}

// ClassifyTitles sets the rarity of titles, which must already be sorted by
// the ranking criterion.
func ClassifyTitles(titles []models.Title, p Percentiles) {
	for i, r := range p.Tiers(len(titles)) {
		titles[i].Rarity = r
	}
}

// ClassifyCharacters is ClassifyTitles for characters.
func ClassifyCharacters(chars []models.Character, p Percentiles) {
	for i, r := range p.Tiers(len(chars)) {
		chars[i].Rarity = r
	}
}
