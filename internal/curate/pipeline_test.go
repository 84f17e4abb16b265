package curate

import (
	"fmt"
	"testing"

	"github.com/meur/cardforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareTitles(t *testing.T) {
	titles := []models.Title{
		{ID: 1, RatingScore: 7.0, RatingTotal: 500},
		{ID: 2, RatingScore: 9.0, RatingTotal: 0},
		{ID: 3, RatingScore: 8.0, RatingTotal: 100},
		{ID: 4, RatingScore: 6.0, RatingTotal: 900},
		{ID: 5, RatingScore: 8.0, RatingTotal: 800},
	}

	got := PrepareTitles(titles, 3)
	ids := make([]int, len(got))
	for i, ti := range got {
		ids[i] = ti.ID
	}
	// Unrated 2 is dropped, 3 falls outside the three most-rated, the rest
	// are ordered by score.
	assert.Equal(t, []int{5, 1, 4}, ids)
	assert.Equal(t, 1, titles[0].ID, "input must not be reordered")

	assert.Len(t, PrepareTitles(titles, 0), 4)
	assert.Empty(t, PrepareTitles(nil, 10))
}

func TestDistribution(t *testing.T) {
	got := Distribution([]models.Rarity{models.RarityR, models.RarityUR, models.RarityR, models.RaritySR})
	assert.Equal(t, []models.TierCount{
		{Rarity: models.RarityUR, Count: 1},
		{Rarity: models.RaritySR, Count: 1},
		{Rarity: models.RarityR, Count: 2},
	}, got)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Percentiles[4] = 0.9
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func samplePools(nTitles, nChars int) ([]models.Title, []models.Character) {
	titles := make([]models.Title, nTitles)
	for i := range titles {
		titles[i] = models.Title{
			ID:          1000 + i,
			Name:        fmt.Sprintf("title-%d", i),
			RatingScore: float64((i*37)%90)/10 + 1,
			RatingTotal: (i * 131) % 40000,
		}
	}
	chars := make([]models.Character, nChars)
	for i := range chars {
		chars[i] = models.Character{
			ID:         i + 1,
			AnimeIDs:   []int{1000 + i%nTitles, 1000 + (i*7)%nTitles},
			Popularity: (i * 53) % 3000,
		}
	}
	return titles, chars
}

func TestCurator_Run(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopTitles = 250
	c, err := New(cfg, nil)
	require.NoError(t, err)

	titles, chars := samplePools(400, 3000)
	res, err := c.Run(titles, chars)
	require.NoError(t, err)

	// 400 titles, one in 400 has (i*131)%40000 == 0, so 399 are rated and the
	// top 250 by raters are kept.
	require.Len(t, res.Titles, 250)

	wantRarity := cfg.Percentiles.Counts(250)
	gotRarity := make(map[models.Rarity]int)
	for _, d := range Distribution(rarities(res.Titles, func(t models.Title) models.Rarity { return t.Rarity })) {
		gotRarity[d.Rarity] = d.Count
	}
	assert.Equal(t, wantRarity, gotRarity)

	wantCost, err := Allocate(250, cfg.CostShares)
	require.NoError(t, err)
	for _, cc := range CostDistribution(res.Titles) {
		assert.Equal(t, wantCost[cc.Cost], cc.Count, "cost %d", cc.Cost)
	}

	for i, ti := range res.Titles {
		lo, hi := PointsWindow(ti.Cost)
		assert.True(t, ti.Points >= lo && ti.Points <= hi, "title %d points %d cost %d", ti.ID, ti.Points, ti.Cost)
		if i > 0 {
			assert.False(t, ti.Rarity.Better(res.Titles[i-1].Rarity), "rarity order broken at %d", i)
		}
	}

	curated := make(map[int]bool, len(res.Titles))
	for _, ti := range res.Titles {
		curated[ti.ID] = true
	}
	seen := make(map[int]bool, len(res.Characters))
	for _, ch := range res.Characters {
		require.False(t, seen[ch.ID], "duplicate character %d", ch.ID)
		seen[ch.ID] = true

		linked := false
		for _, id := range ch.AnimeIDs {
			linked = linked || curated[id]
		}
		assert.True(t, linked, "character %d has no curated title", ch.ID)
	}
	assert.LessOrEqual(t, len(res.Characters), 250*cfg.CharactersPerTitle)
	assert.Equal(t, cfg.Percentiles.Counts(len(res.Characters)), characterCounts(res.Characters))
}

func characterCounts(chars []models.Character) map[models.Rarity]int {
	out := make(map[models.Rarity]int)
	for _, r := range models.AllRarities() {
		out[r] = 0
	}
	for _, c := range chars {
		out[c.Rarity]++
	}
	return out
}

func TestCurator_RunEmpty(t *testing.T) {
	c, err := New(DefaultConfig(), nil)
	require.NoError(t, err)

	res, err := c.Run(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Titles)
	assert.Empty(t, res.Characters)
}
