package models

import "fmt"

// Rarity is a card's desirability tier. Lower values are more desirable,
// so the numeric order is the canonical display order.
type Rarity int

const (
	RarityUR Rarity = iota
	RarityHR
	RaritySSR
	RaritySR
	RarityR
	// RarityN marks items that never made it into the curated pool.
	RarityN
)

var rarityNames = [...]string{"UR", "HR", "SSR", "SR", "R", "N"}

// AllRarities returns the classified tiers from most to least desirable.
// RarityN is not included.
func AllRarities() []Rarity {
	return []Rarity{RarityUR, RarityHR, RaritySSR, RaritySR, RarityR}
}

func (r Rarity) String() string {
	if r < RarityUR || r > RarityN {
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
	return rarityNames[r]
}

// Better reports whether r is strictly more desirable than o.
func (r Rarity) Better(o Rarity) bool {
	return r < o
}

// ParseRarity converts a tier name such as "SSR" into a Rarity.
func ParseRarity(s string) (Rarity, error) {
	for i, name := range rarityNames {
		if name == s {
			return Rarity(i), nil
		}
	}
	return RarityN, fmt.Errorf("unknown rarity %q", s)
}

func (r Rarity) MarshalText() ([]byte, error) {
	if r < RarityUR || r > RarityN {
		return nil, fmt.Errorf("invalid rarity %d", int(r))
	}
	return []byte(rarityNames[r]), nil
}

func (r *Rarity) UnmarshalText(b []byte) error {
	v, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// RarityTier describes how a tier is presented to clients
type RarityTier struct {
	Rarity Rarity `json:"rarity"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Order  int    `json:"order"`
}

// DefaultRarityTiers returns the standard UR-R display configuration
func DefaultRarityTiers() []RarityTier {
	return []RarityTier{
		{Rarity: RarityUR, Name: "Ultra Rare", Color: "#ff7f7f", Order: 0},
		{Rarity: RarityHR, Name: "Hyper Rare", Color: "#ffbf7f", Order: 1},
		{Rarity: RaritySSR, Name: "Super Super Rare", Color: "#ffff7f", Order: 2},
		{Rarity: RaritySR, Name: "Super Rare", Color: "#7fff7f", Order: 3},
		{Rarity: RarityR, Name: "Rare", Color: "#7fbfff", Order: 4},
	}
}
