package models

import (
	"encoding/json"
	"time"
)

// Run is a stored curation result
type Run struct {
	ID             string          `json:"id"`
	TitleCount     int             `json:"title_count"`
	CharacterCount int             `json:"character_count"`
	Config         json.RawMessage `json:"config,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TierCount is one row of a distribution report
type TierCount struct {
	Rarity Rarity `json:"rarity"`
	Count  int    `json:"count"`
}

// CostCount is one row of a cost curve report
type CostCount struct {
	Cost  int `json:"cost"`
	Count int `json:"count"`
}
