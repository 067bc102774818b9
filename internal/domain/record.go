package domain

import "time"

// RawRecord is one upstream record as decoded from a source's JSON response.
// The key set varies per resource and is never persisted directly.
type RawRecord map[string]any

// MarketRecord is the canonical, schema-stable representation of one market
// price observation. Every persisted record has Price > 0 and a valid Date;
// string fields are defaulted, never empty-by-absence.
type MarketRecord struct {
	State     string    `json:"state"`
	District  string    `json:"district"`
	Market    string    `json:"market"`
	Commodity string    `json:"commodity"`
	Variety   string    `json:"variety"`
	Price     float64   `json:"price"`
	MinPrice  float64   `json:"min_price"`
	MaxPrice  float64   `json:"max_price"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Date      time.Time `json:"date"`
}
