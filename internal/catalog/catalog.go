// Package catalog reads raw title and character exports and writes curated
// collections back in the same record shape.
//
// Records are kept as raw JSON. Only the fields curation needs are pulled
// out; everything else travels through untouched.
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/meur/cardforge/internal/models"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// Stats counts what a load kept and skipped
type Stats struct {
	Records int
	Skipped int
}

// Pools is the loaded input of a curation run
type Pools struct {
	Titles         []models.Title
	Characters     []models.Character
	TitleStats     Stats
	CharacterStats Stats
}

// LoadPools reads both input files concurrently.
func LoadPools(ctx context.Context, titlesPath, charactersPath string) (*Pools, error) {
	var p Pools
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := readFile(ctx, titlesPath)
		if err != nil {
			return err
		}
		p.Titles, p.TitleStats, err = ParseTitles(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", titlesPath, err)
		}
		return nil
	})
	g.Go(func() error {
		data, err := readFile(ctx, charactersPath)
		if err != nil {
			return err
		}
		p.Characters, p.CharacterStats, err = ParseCharacters(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", charactersPath, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &p, nil
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ParseTitles decodes a JSON array of title records. Both the flattened card
// export (rating_score, rating_total) and the catalog API shape
// (rating.score, rating.total) are understood. Records without an id are
// skipped.
func ParseTitles(data []byte) ([]models.Title, Stats, error) {
	root, err := parseArray(data)
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		titles []models.Title
		stats  Stats
	)
	root.ForEach(func(_, v gjson.Result) bool {
		stats.Records++
		id := v.Get("id")
		if !id.Exists() || id.Int() == 0 {
			stats.Skipped++
			return true
		}
		titles = append(titles, models.Title{
			ID:          int(id.Int()),
			Name:        firstString(v, "name_cn", "name"),
			RatingScore: first(v, "rating_score", "rating.score").Float(),
			RatingTotal: int(first(v, "rating_total", "rating.total").Int()),
			RatingRank:  int(first(v, "rating_rank", "rating.rank").Int()),
			Rarity:      models.RarityN,
			Source:      []byte(v.Raw),
		})
		return true
	})
	return titles, stats, nil
}

// ParseCharacters decodes a JSON array of character records. Statistics are
// read from "stat" (catalog API) or "stats" (card export).
func ParseCharacters(data []byte) ([]models.Character, Stats, error) {
	root, err := parseArray(data)
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		chars []models.Character
		stats Stats
	)
	root.ForEach(func(_, v gjson.Result) bool {
		stats.Records++
		id := v.Get("id")
		if !id.Exists() || id.Int() == 0 {
			stats.Skipped++
			return true
		}
		var animeIDs []int
		v.Get("anime_ids").ForEach(func(_, a gjson.Result) bool {
			animeIDs = append(animeIDs, int(a.Int()))
			return true
		})
		collects := int(first(v, "stat.collects", "stats.collects").Int())
		comments := int(first(v, "stat.comments", "stats.comments").Int())
		chars = append(chars, models.Character{
			ID:         int(id.Int()),
			Name:       firstString(v, "name"),
			AnimeIDs:   animeIDs,
			Collects:   collects,
			Comments:   comments,
			Popularity: models.BasePopularity(collects, comments),
			Rarity:     models.RarityN,
			Source:     []byte(v.Raw),
		})
		return true
	})
	return chars, stats, nil
}

func parseArray(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return gjson.Result{}, fmt.Errorf("expected a JSON array, got %s", root.Type)
	}
	return root, nil
}

// first returns the first of paths present in v.
func first(v gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := v.Get(p).String(); s != "" {
			return s
		}
	}
	return ""
}
