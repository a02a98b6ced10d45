package models

import "time"

// RejectReason classifies why the evaluator turned a listing down.
type RejectReason string

const (
	RejectOutOfRange         RejectReason = "out_of_range"
	RejectPriceTooHigh       RejectReason = "price_too_high"
	RejectInsufficientProfit RejectReason = "insufficient_profit"
	RejectInvalidPrice       RejectReason = "invalid_price"
)

// Rejection is the normal outcome for a non-qualifying listing. It is a
// value, not an error; a rejected listing never aborts the batch.
type Rejection struct {
	Reason RejectReason
	Detail string
}

// Deal is a listing that passed every qualification rule, together with its
// computed profitability figures. It references exactly one listing and one
// rule and is never mutated after creation.
type Deal struct {
	Listing       *RawListing
	ModelKey      string
	DistanceMiles float64
	SalePrice     float64 // listing price + rule markup
	NetProfit     float64 // rule markup − transfer cost
	MarginPct     float64 // net profit / listing price × 100
}

// Summary holds the aggregate statistics over the retained deals.
type Summary struct {
	Count         int     `json:"count"`
	TotalProfit   float64 `json:"total_profit"`
	AverageProfit float64 `json:"average_profit"`
	BestMargin    float64 `json:"best_margin"`
}

// AggregateReport is the terminal artifact of one run: deduplicated deals
// ranked by net profit, plus summary statistics.
type AggregateReport struct {
	Deals       []*Deal
	Summary     Summary
	Duplicates  int // deals discarded because a better deal shared their URL
	GeneratedAt time.Time
}

// TabularDocument is row-and-column deal data ready for a CSV writer.
type TabularDocument struct {
	Header []string
	Rows   [][]string
}

// DealRecord is one deal shaped for the structured export.
type DealRecord struct {
	Model         string  `json:"model"`
	Title         string  `json:"title"`
	BuyPrice      float64 `json:"buy_price"`
	SalePrice     float64 `json:"sale_price"`
	NetProfit     float64 `json:"net_profit"`
	MarginPct     float64 `json:"margin_pct"`
	Location      string  `json:"location"`
	DistanceMiles float64 `json:"distance_miles"`
	Year          int     `json:"year,omitempty"`
	Mileage       int     `json:"mileage,omitempty"`
	Source        string  `json:"source"`
	URL           string  `json:"url"`
}

// StructuredDocument embeds the full deal collection and summary for a
// presentation layer to render. It carries data only, no markup.
type StructuredDocument struct {
	Deals       []DealRecord `json:"deals"`
	Summary     Summary      `json:"summary"`
	GeneratedAt time.Time    `json:"generated_at"`
}
