package model

import "time"

// Business is a scraped place record with its aggregate review stats.
// Rating is nil when the source listing carries no rating.
type Business struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`
	PriceLevel  *int     `json:"price_level,omitempty"`
	Active      bool     `json:"active"`
}

// Review is a single scraped review for a business.
type Review struct {
	ID          int64     `json:"id"`
	BusinessID  int64     `json:"business_id"`
	Text        string    `json:"text"`
	Rating      *float64  `json:"rating,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
