package curate

import (
	"math/rand"
	"testing"

	"github.com/meur/cardforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rankedTitles returns n titles sorted by descending score and classified.
func rankedTitles(n int, seed int64) []models.Title {
	rng := rand.New(rand.NewSource(seed))
	titles := make([]models.Title, n)
	for i := range titles {
		titles[i] = models.Title{
			ID:          i + 1,
			RatingScore: 9.5 - float64(i)*0.01,
			RatingTotal: 100 + rng.Intn(20000),
		}
	}
	ClassifyTitles(titles, testPercentiles)
	return titles
}

func costCounts(titles []models.Title) map[int]int {
	out := make(map[int]int)
	for _, t := range titles {
		out[t.Cost]++
	}
	return out
}

func TestAssignCosts_MatchesGlobalQuota(t *testing.T) {
	shares := DefaultConfig().CostShares
	for _, n := range []int{1, 2, 7, 13, 100, 250, 300, 1001} {
		titles := rankedTitles(n, int64(n))
		plan, err := AssignCosts(titles, shares)
		require.NoError(t, err)

		want, err := Allocate(n, shares)
		require.NoError(t, err)
		assert.Equal(t, want, plan.PerCost, "n=%d", n)

		got := costCounts(titles)
		for cost, q := range want {
			assert.Equal(t, q, got[cost], "n=%d cost=%d", n, cost)
		}
		assert.Zero(t, got[0], "n=%d: unassigned titles", n)
	}
}

func TestAssignCosts_NestedQuotaSumsToCostQuota(t *testing.T) {
	titles := rankedTitles(300, 1)
	plan, err := PlanCosts(titles, DefaultConfig().CostShares)
	require.NoError(t, err)

	for cost, q := range plan.PerCost {
		sum := 0
		for _, c := range plan.PerCostRarity[cost] {
			sum += c
		}
		assert.Equal(t, q, sum, "cost %d", cost)
	}
}

func TestAssignCosts_RarityMixPerCost(t *testing.T) {
	titles := rankedTitles(100, 3)
	_, err := AssignCosts(titles, DefaultConfig().CostShares)
	require.NoError(t, err)

	// 10% of the pool is UR; every cost level with at least 10 slots should
	// carry at least one UR.
	urByCost := make(map[int]int)
	for _, ti := range titles {
		if ti.Rarity == models.RarityUR {
			urByCost[ti.Cost]++
		}
	}
	for _, cost := range []int{2, 3, 4, 5, 6} {
		assert.GreaterOrEqual(t, urByCost[cost], 1, "cost %d", cost)
	}
}

func TestAssignCosts_BestScoresFillLowCostsFirst(t *testing.T) {
	titles := []models.Title{
		{ID: 1, RatingScore: 7.0, Rarity: models.RarityR},
		{ID: 2, RatingScore: 9.0, Rarity: models.RarityR},
		{ID: 3, RatingScore: 8.0, Rarity: models.RarityR},
	}
	_, err := AssignCosts(titles, CostShares{1: 1.0 / 3, 2: 1.0 / 3, 3: 1.0 / 3})
	require.NoError(t, err)

	assert.Equal(t, 1, titles[1].Cost)
	assert.Equal(t, 2, titles[2].Cost)
	assert.Equal(t, 3, titles[0].Cost)
}

func TestAssignCosts_LeftoversFollowPoolOrder(t *testing.T) {
	// Four tiers of one title each over two cost levels of two slots: each
	// nested quota rounds the four 25% shares to {UR:1, HR:1}, so SSR and SR
	// are left over and fill the open slots in pool order.
	titles := []models.Title{
		{ID: 1, RatingScore: 9, Rarity: models.RarityUR},
		{ID: 2, RatingScore: 8, Rarity: models.RarityHR},
		{ID: 3, RatingScore: 7, Rarity: models.RaritySSR},
		{ID: 4, RatingScore: 6, Rarity: models.RaritySR},
	}
	plan, err := AssignCosts(titles, CostShares{1: 0.5, 2: 0.5})
	require.NoError(t, err)
	require.Equal(t, map[models.Rarity]int{
		models.RarityUR: 1, models.RarityHR: 1, models.RaritySSR: 0, models.RaritySR: 0,
	}, plan.PerCostRarity[1])

	assert.Equal(t, 1, titles[0].Cost)
	assert.Equal(t, 1, titles[1].Cost)
	assert.Equal(t, 2, titles[2].Cost)
	assert.Equal(t, 2, titles[3].Cost)
}

func TestAssignCosts_Empty(t *testing.T) {
	plan, err := AssignCosts(nil, DefaultConfig().CostShares)
	require.NoError(t, err)
	for _, q := range plan.PerCost {
		assert.Zero(t, q)
	}
}

func TestAssignCosts_InvalidShares(t *testing.T) {
	_, err := AssignCosts(rankedTitles(5, 1), CostShares{1: -1})
	assert.ErrorIs(t, err, ErrInvalidShare)
}

func TestAssignCosts_RejectsNonPositiveCostLevels(t *testing.T) {
	for _, cost := range []int{0, -2} {
		titles := rankedTitles(5, 1)
		_, err := AssignCosts(titles, CostShares{cost: 0.5, 1: 0.5})
		assert.ErrorIs(t, err, ErrInvalidCostLevel, "cost %d", cost)
		for _, ti := range titles {
			assert.Zero(t, ti.Cost)
		}
	}

	_, err := PlanCosts(nil, CostShares{0: 1})
	assert.ErrorIs(t, err, ErrInvalidCostLevel)
}
