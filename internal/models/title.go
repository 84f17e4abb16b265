package models

import "encoding/json"

// Title is an anime title card. Source carries the raw catalog record and is
// never inspected by the curation pipeline.
type Title struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	RatingScore float64         `json:"rating_score"`
	RatingTotal int             `json:"rating_total"`
	RatingRank  int             `json:"rating_rank,omitempty"`
	Rarity      Rarity          `json:"rarity"`
	Cost        int             `json:"cost"`
	Points      int             `json:"points"`
	Source      json.RawMessage `json:"source,omitempty"`
}

// TitleList is a page of titles
type TitleList struct {
	Titles     []Title `json:"titles"`
	TotalCount int     `json:"total_count"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}
