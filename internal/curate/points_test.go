package curate

import (
	"testing"

	"github.com/meur/cardforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopularityBonus(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 0},
		{-5, 0},
		{10, 0},
		{2000, 0},
		{2153, 0},
		{2154, 1},
		{100000, 1},
		{10000000, 1},
	}
	for _, tt := range tests {
		if got := PopularityBonus(tt.total); got != tt.want {
			t.Errorf("PopularityBonus(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestTercileOffset(t *testing.T) {
	tests := []struct {
		n    int
		want []int // by best-first rank
	}{
		{1, []int{0}},
		{2, []int{1, 0}},
		{3, []int{1, 0, 0}},
		{4, []int{1, 1, 0, -1}},
		{10, []int{1, 1, 1, 0, 0, 0, 0, -1, -1, -1}},
	}
	for _, tt := range tests {
		got := make([]int, tt.n)
		for rank := range got {
			got[rank] = tercileOffset(rank, tt.n)
		}
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestScorePoints_Group(t *testing.T) {
	bonus := DefaultConfig().PointsBonus

	// Ten R cost-3 titles with scores 1..10: the bottom three lose a point
	// and the top three gain one.
	titles := make([]models.Title, 10)
	for i := range titles {
		titles[i] = models.Title{ID: i + 1, Cost: 3, Rarity: models.RarityR, RatingScore: float64(i + 1), RatingTotal: 100}
	}
	ScorePoints(titles, bonus)

	// baseline 7, no rarity or popularity bonus
	want := []int{6, 6, 6, 7, 7, 7, 7, 8, 8, 8}
	for i, ti := range titles {
		assert.Equal(t, want[i], ti.Points, "score %v", ti.RatingScore)
	}
}

func TestScorePoints_PairGroup(t *testing.T) {
	// floor(2*0.3) = 0, so nobody in a pair is penalized.
	titles := []models.Title{
		{ID: 1, Cost: 2, Rarity: models.RarityR, RatingScore: 6},
		{ID: 2, Cost: 2, Rarity: models.RarityR, RatingScore: 8},
	}
	ScorePoints(titles, DefaultConfig().PointsBonus)
	assert.Equal(t, 5, titles[0].Points)
	assert.Equal(t, 6, titles[1].Points)
}

func TestScorePoints_SkewedGroup(t *testing.T) {
	scores := []float64{1, 1, 1, 1, 5, 1, 1, 1, 9, 1}
	titles := make([]models.Title, len(scores))
	for i, s := range scores {
		titles[i] = models.Title{ID: i + 1, Cost: 3, Rarity: models.RarityR, RatingScore: s}
	}
	ScorePoints(titles, DefaultConfig().PointsBonus)

	assert.Equal(t, 8, titles[8].Points, "score 9")
	assert.Equal(t, 8, titles[4].Points, "score 5")
	// Ties keep pool order: the first score-1 title fills the last top slot,
	// the last three fall into the bottom 30%.
	want := []int{8, 7, 7, 7, 8, 7, 6, 6, 8, 6}
	got := make([]int, len(titles))
	for i, ti := range titles {
		got[i] = ti.Points
	}
	assert.Equal(t, want, got)
}

func TestScorePoints_ClampedToWindow(t *testing.T) {
	bonus := DefaultConfig().PointsBonus
	titles := []models.Title{
		{ID: 1, Cost: 1, Rarity: models.RarityUR, RatingScore: 9.9, RatingTotal: 50000},
		{ID: 2, Cost: 1, Rarity: models.RarityUR, RatingScore: 7.0, RatingTotal: 50000},
		{ID: 3, Cost: 7, Rarity: models.RarityR, RatingScore: 6.0, RatingTotal: 0},
		{ID: 4, Cost: 7, Rarity: models.RarityR, RatingScore: 7.0, RatingTotal: 0},
	}
	ScorePoints(titles, bonus)

	// 3 + 2 + 1 + 1 = 7 clamps to 4; 3 + 2 + 1 + 0 = 6 clamps to 4.
	assert.Equal(t, 4, titles[0].Points)
	assert.Equal(t, 4, titles[1].Points)
	// 15 + 0 + 0 + 0 = 15 and 15 + 1 = 16, both inside [13, 16].
	assert.Equal(t, 15, titles[2].Points)
	assert.Equal(t, 16, titles[3].Points)
}

func TestScorePoints_SingleMemberGroup(t *testing.T) {
	titles := []models.Title{{ID: 1, Cost: 4, Rarity: models.RaritySSR, RatingScore: 8, RatingTotal: 10}}
	ScorePoints(titles, DefaultConfig().PointsBonus)
	assert.Equal(t, 10, titles[0].Points)
}

func TestScorePoints_BandInvariant(t *testing.T) {
	titles := rankedTitles(300, 11)
	_, err := AssignCosts(titles, DefaultConfig().CostShares)
	require.NoError(t, err)
	ScorePoints(titles, DefaultConfig().PointsBonus)

	for _, ti := range titles {
		lo, hi := PointsWindow(ti.Cost)
		require.GreaterOrEqual(t, ti.Points, lo, "title %d", ti.ID)
		require.LessOrEqual(t, ti.Points, hi, "title %d", ti.ID)
	}
}
