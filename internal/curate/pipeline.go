package curate

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/meur/cardforge/internal/logger"
	"github.com/meur/cardforge/internal/models"
)

// Result is the curated collection produced by one run.
type Result struct {
	Titles     []models.Title
	Characters []models.Character
	Plan       *CostPlan
}

// Curator runs the full curation pipeline with a fixed config.
type Curator struct {
	cfg Config
	log *logger.Logger
}

// New validates cfg and returns a Curator. A nil log discards output.
func New(cfg Config, log *logger.Logger) (*Curator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Curator{cfg: cfg, log: log}, nil
}

// Config returns the config the curator was built with.
func (c *Curator) Config() Config {
	return c.cfg
}

// Run curates titles and chars. Neither input slice is modified.
func (c *Curator) Run(titles []models.Title, chars []models.Character) (*Result, error) {
	pool := PrepareTitles(titles, c.cfg.TopTitles)
	c.log.Info("title pool prepared", "input", len(titles), "kept", len(pool))

	ClassifyTitles(pool, c.cfg.Percentiles)

	plan, err := AssignCosts(pool, c.cfg.CostShares)
	if err != nil {
		return nil, fmt.Errorf("assign costs: %w", err)
	}
	for _, cost := range sortedKeys(plan.PerCost) {
		c.log.Debug("cost quota", "cost", cost, "total", plan.PerCost[cost], "by_rarity", plan.PerCostRarity[cost])
	}

	ScorePoints(pool, c.cfg.PointsBonus)

	selected := SelectCharacters(pool, chars, c.cfg.PopularityBonus, c.cfg.CharactersPerTitle, c.cfg.Percentiles)
	c.log.Info("characters selected", "input", len(chars), "kept", len(selected))

	logDistribution(c.log, "title", Distribution(rarities(pool, func(t models.Title) models.Rarity { return t.Rarity })))
	logDistribution(c.log, "character", Distribution(rarities(selected, func(ch models.Character) models.Rarity { return ch.Rarity })))

	return &Result{Titles: pool, Characters: selected, Plan: plan}, nil
}

// PrepareTitles drops unrated titles, keeps the top most-rated ones and
// orders the survivors by rating_score, best first. Ties keep input order.
// top <= 0 keeps every rated title. The input slice is not modified.
func PrepareTitles(titles []models.Title, top int) []models.Title {
	pool := make([]models.Title, 0, len(titles))
	for _, t := range titles {
		if t.RatingTotal > 0 {
			pool = append(pool, t)
		}
	}

	slices.SortStableFunc(pool, func(a, b models.Title) int {
		return cmp.Compare(b.RatingTotal, a.RatingTotal)
	})
	if top > 0 && len(pool) > top {
		pool = pool[:top]
	}

	slices.SortStableFunc(pool, func(a, b models.Title) int {
		return cmp.Compare(b.RatingScore, a.RatingScore)
	})
	return pool
}

// Distribution counts rarities in canonical order, omitting empty tiers.
func Distribution(rs []models.Rarity) []models.TierCount {
	counts := make(map[models.Rarity]int)
	for _, r := range rs {
		counts[r]++
	}
	out := make([]models.TierCount, 0, len(counts))
	for _, r := range sortedKeys(counts) {
		out = append(out, models.TierCount{Rarity: r, Count: counts[r]})
	}
	return out
}

// CostDistribution counts titles per cost level in ascending order.
func CostDistribution(titles []models.Title) []models.CostCount {
	counts := make(map[int]int)
	for _, t := range titles {
		counts[t.Cost]++
	}
	out := make([]models.CostCount, 0, len(counts))
	for _, cost := range sortedKeys(counts) {
		out = append(out, models.CostCount{Cost: cost, Count: counts[cost]})
	}
	return out
}

func rarities[T any](items []T, get func(T) models.Rarity) []models.Rarity {
	out := make([]models.Rarity, len(items))
	for i, it := range items {
		out[i] = get(it)
	}
	return out
}

func logDistribution(log *logger.Logger, kind string, dist []models.TierCount) {
	kv := make([]interface{}, 0, 2*len(dist)+2)
	kv = append(kv, "kind", kind)
	for _, tc := range dist {
		kv = append(kv, tc.Rarity.String(), tc.Count)
	}
	log.Info("rarity distribution", kv...)
}
