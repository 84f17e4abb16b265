package curate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/meur/cardforge/internal/models"
)

// ErrInvalidCostLevel is returned for cost levels below 1. Cost 0 marks a
// title that has not been assigned yet.
var ErrInvalidCostLevel = errors.New("cost level must be positive")

// CostShares maps a cost level to its target share of the pool.
type CostShares map[int]float64

// CostPlan is the quota that AssignCosts fills.
type CostPlan struct {
	// PerCost is the global cost quota.
	PerCost map[int]int
	// PerCostRarity splits each cost quota by the pool's rarity mix.
	PerCostRarity map[int]map[models.Rarity]int
}

// PlanCosts computes the global and nested quotas for a classified pool.
func PlanCosts(titles []models.Title, shares CostShares) (*CostPlan, error) {
	for cost := range shares {
		if cost < 1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidCostLevel, cost)
		}
	}
	n := len(titles)
	perCost, err := Allocate(n, shares)
	if err != nil {
		return nil, fmt.Errorf("cost quota: %w", err)
	}

	plan := &CostPlan{
		PerCost:       perCost,
		PerCostRarity: make(map[int]map[models.Rarity]int, len(perCost)),
	}
	if n == 0 {
		return plan, nil
	}

	observed := make(map[models.Rarity]float64)
	for _, t := range titles {
		observed[t.Rarity]++
	}
	for r := range observed {
		observed[r] /= float64(n)
	}

	for cost, q := range perCost {
		nested, err := Allocate(q, observed)
		if err != nil {
			return nil, fmt.Errorf("cost %d rarity quota: %w", cost, err)
		}
		plan.PerCostRarity[cost] = nested
	}
	return plan, nil
}

// AssignCosts gives every title a cost so that per-cost counts match the
// global quota exactly. Within each rarity, titles with higher rating_score
// (then rating_total) are drained first, and cost levels are visited in
// ascending order. Titles left over once the nested quotas are spent fill
// the remaining open slots in pool order, lowest cost first.
func AssignCosts(titles []models.Title, shares CostShares) (*CostPlan, error) {
	plan, err := PlanCosts(titles, shares)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return plan, nil
	}

	queues := make(map[models.Rarity][]int)
	for i := range titles {
		titles[i].Cost = 0
		queues[titles[i].Rarity] = append(queues[titles[i].Rarity], i)
	}
	for _, q := range queues {
		slices.SortStableFunc(q, func(a, b int) int {
			if c := cmp.Compare(titles[b].RatingScore, titles[a].RatingScore); c != 0 {
				return c
			}
			return cmp.Compare(titles[b].RatingTotal, titles[a].RatingTotal)
		})
	}

	costs := sortedKeys(plan.PerCost)
	open := make(map[int]int, len(costs))
	for _, cost := range costs {
		open[cost] = plan.PerCost[cost]
		nested := plan.PerCostRarity[cost]
		for _, r := range sortedKeys(nested) {
			take := min(nested[r], len(queues[r]))
			for _, idx := range queues[r][:take] {
				titles[idx].Cost = cost
			}
			queues[r] = queues[r][take:]
			open[cost] -= take
		}
	}

	// Rounding can leave a rarity with more titles than its nested slots
	// add up to; those spill into whatever cost levels are still short.
	next := 0
	for i := range titles {
		if titles[i].Cost != 0 {
			continue
		}
		for next < len(costs) && open[costs[next]] == 0 {
			next++
		}
		if next == len(costs) {
			break
		}
		titles[i].Cost = costs[next]
		open[costs[next]]--
	}

	return plan, nil
}
