package curate

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/meur/cardforge/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalidConfig = errors.New("invalid curation config")

// Config holds every tunable constant of a curation run.
type Config struct {
	TopTitles          int                   `json:"top_titles"`
	CharactersPerTitle int                   `json:"characters_per_title"`
	Percentiles        Percentiles           `json:"percentiles"`
	CostShares         CostShares            `json:"cost_shares"`
	PointsBonus        map[models.Rarity]int `json:"points_bonus"`
	PopularityBonus    map[models.Rarity]int `json:"popularity_bonus"`
}

// configFile is the YAML shape. Rarity keys are tier names so the file stays
// readable; pointers and nil maps mark keys the file leaves unset.
type configFile struct {
	TopTitles          *int               `yaml:"top_titles"`
	CharactersPerTitle *int               `yaml:"characters_per_title"`
	Percentiles        map[string]float64 `yaml:"percentiles"`
	CostShares         map[int]float64    `yaml:"cost_shares"`
	PointsBonus        map[string]int     `yaml:"points_bonus"`
	PopularityBonus    map[string]int     `yaml:"popularity_bonus"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() Config {
	var cfg Config
	if err := cfg.merge(defaultsYAML); err != nil {
		panic(fmt.Sprintf("embedded defaults.yaml: %v", err))
	}
	return cfg
}

// LoadConfig reads path and applies it on top of the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.merge(data); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(data []byte) error {
	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}

	if f.TopTitles != nil {
		c.TopTitles = *f.TopTitles
	}
	if f.CharactersPerTitle != nil {
		c.CharactersPerTitle = *f.CharactersPerTitle
	}
	for name, v := range f.Percentiles {
		r, err := models.ParseRarity(name)
		if err != nil || r == models.RarityN {
			return fmt.Errorf("%w: percentiles: unknown tier %q", ErrInvalidConfig, name)
		}
		c.Percentiles[r] = v
	}
	if f.CostShares != nil {
		c.CostShares = CostShares(f.CostShares)
	}

	var err error
	if c.PointsBonus, err = mergeBonus(c.PointsBonus, f.PointsBonus); err != nil {
		return fmt.Errorf("points_bonus: %w", err)
	}
	if c.PopularityBonus, err = mergeBonus(c.PopularityBonus, f.PopularityBonus); err != nil {
		return fmt.Errorf("popularity_bonus: %w", err)
	}
	return nil
}

func mergeBonus(dst map[models.Rarity]int, src map[string]int) (map[models.Rarity]int, error) {
	if len(src) == 0 {
		return dst, nil
	}
	out := make(map[models.Rarity]int, len(dst)+len(src))
	for r, v := range dst {
		out[r] = v
	}
	for name, v := range src {
		r, err := models.ParseRarity(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		out[r] = v
	}
	return out, nil
}

// Validate rejects configs the pipeline cannot honour.
func (c Config) Validate() error {
	if err := c.Percentiles.Validate(); err != nil {
		return err
	}
	if len(c.CostShares) == 0 {
		return fmt.Errorf("%w: cost_shares is empty", ErrInvalidConfig)
	}
	var sum float64
	for cost, share := range c.CostShares {
		if cost <= 0 {
			return fmt.Errorf("%w: cost level %d must be positive", ErrInvalidConfig, cost)
		}
		if share < 0 || math.IsNaN(share) || math.IsInf(share, 0) {
			return fmt.Errorf("%w: cost %d share %v", ErrInvalidConfig, cost, share)
		}
		sum += share
	}
	if math.Abs(sum-1) > shareTolerance {
		return fmt.Errorf("%w: cost shares sum to %.4f, want 1", ErrInvalidConfig, sum)
	}
	for r, v := range c.PointsBonus {
		if v < 0 {
			return fmt.Errorf("%w: points_bonus %s is negative", ErrInvalidConfig, r)
		}
	}
	for r, v := range c.PopularityBonus {
		if v < 0 {
			return fmt.Errorf("%w: popularity_bonus %s is negative", ErrInvalidConfig, r)
		}
	}
	return nil
}
