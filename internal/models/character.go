package models

import "encoding/json"

// Character is a character card linked to one or more titles.
type Character struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	AnimeIDs []int  `json:"anime_ids"`
	Collects int    `json:"collects"`
	Comments int    `json:"comments"`
	// Popularity is the raw statistic: collects + 2*comments.
	Popularity              int             `json:"popularity"`
	ComprehensivePopularity int             `json:"comprehensive_popularity"`
	Rarity                  Rarity          `json:"rarity"`
	Source                  json.RawMessage `json:"source,omitempty"`
}

// BasePopularity weighs comments twice as heavily as collects.
func BasePopularity(collects, comments int) int {
	return collects + 2*comments
}

// CharacterList is a page of characters
type CharacterList struct {
	Characters []Character `json:"characters"`
	Total      int         `json:"total"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}
