package models

import "time"

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether both degrees fall inside the usual ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// SourceRecord holds unprocessed data exactly as a source adapter found it.
// Everything except Coords is raw text; the normalizer does all parsing.
type SourceRecord struct {
	ModelKey  string
	Title     string
	RawPrice  string
	Location  string
	Coords    *Coordinate // set when the adapter already resolved the town
	URL       string
	Year      string
	Mileage   string
	ScrapedAt time.Time
}

// RawListing is the validated, canonical listing the evaluation core works on.
// It is never mutated after the normalizer produces it.
type RawListing struct {
	ModelKey  string
	Source    string
	Title     string
	Price     float64
	Location  string
	Coords    Coordinate
	URL       string
	Year      int // 0 when the source did not report one
	Mileage   int // 0 when the source did not report one
	ScrapedAt time.Time
}

// ModelRule is the economics and matching configuration for one target model.
type ModelRule struct {
	Key         string   `yaml:"-" json:"key"`
	SearchTerms []string `yaml:"search_terms" json:"search_terms"`
	MaxPrice    float64  `yaml:"max_price" json:"max_price"`
	Markup      float64  `yaml:"markup" json:"markup"`
	MinProfit   float64  `yaml:"min_profit" json:"min_profit"`
}
