package services

import (
	"errors"
	"testing"
	"time"

	"car-arbitrage/models"
	"car-arbitrage/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func validRecord() models.SourceRecord {
	return models.SourceRecord{
		ModelKey:  "bmw_e46_330",
		Title:     "  BMW E46   330Ci Sport ",
		RawPrice:  "£9,500",
		Location:  "Manchester",
		URL:       "https://www.autotrader.co.uk/car-details/1",
		Year:      "2004",
		Mileage:   "89,000",
		ScrapedAt: time.Now(),
	}
}

func TestNormalizeValidRecord(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	listing, err := n.Normalize(validRecord(), "autotrader")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if listing.Title != "BMW E46 330Ci Sport" {
		t.Errorf("title = %q; want collapsed whitespace", listing.Title)
	}
	if listing.Price != 9500 {
		t.Errorf("price = %.2f; want 9500", listing.Price)
	}
	if listing.Source != "autotrader" {
		t.Errorf("source = %q; want autotrader", listing.Source)
	}
	if listing.Year != 2004 {
		t.Errorf("year = %d; want 2004", listing.Year)
	}
	if listing.Mileage != 89000 {
		t.Errorf("mileage = %d; want 89000", listing.Mileage)
	}
	// Manchester resolves through the geocoder.
	if listing.Coords.Lat == 0 && listing.Coords.Lon == 0 {
		t.Error("coords not resolved from location text")
	}
}

func TestNormalizePrefersExplicitCoords(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	rec := validRecord()
	rec.Coords = &models.Coordinate{Lat: 53.7632, Lon: -2.7031}
	listing, err := n.Normalize(rec, "sample")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if listing.Coords.Lat != 53.7632 {
		t.Errorf("coords = %v; want the explicit pair", listing.Coords)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	tests := []struct {
		name   string
		mutate func(*models.SourceRecord)
	}{
		{"missing title", func(r *models.SourceRecord) { r.Title = "   " }},
		{"missing URL", func(r *models.SourceRecord) { r.URL = "" }},
		{"non-numeric price", func(r *models.SourceRecord) { r.RawPrice = "POA" }},
		{"empty price", func(r *models.SourceRecord) { r.RawPrice = "" }},
		{"unresolvable location", func(r *models.SourceRecord) { r.Location = "Somewhere Else" }},
		{"coords out of range", func(r *models.SourceRecord) {
			r.Coords = &models.Coordinate{Lat: 123.4, Lon: -2.0}
		}},
	}

	for _, tt := range tests {
		rec := validRecord()
		tt.mutate(&rec)
		_, err := n.Normalize(rec, "autotrader")
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, ErrMalformedListing) {
			t.Errorf("%s: error %v does not wrap ErrMalformedListing", tt.name, err)
		}
	}
}

func TestNormalizeOptionalFieldsStayUnset(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	rec := validRecord()
	rec.Year = ""
	rec.Mileage = "Unknown"
	listing, err := n.Normalize(rec, "gumtree")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if listing.Year != 0 || listing.Mileage != 0 {
		t.Errorf("year/mileage = %d/%d; want 0/0 when unreported", listing.Year, listing.Mileage)
	}
}

func TestNormalizeZeroPriceIsNotMalformed(t *testing.T) {
	// A zero price is numeric; rejecting it is the evaluator's job.
	n := NewNormalizer(newTestLogger())

	rec := validRecord()
	rec.RawPrice = "£0"
	listing, err := n.Normalize(rec, "autotrader")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if listing.Price != 0 {
		t.Errorf("price = %.2f; want 0", listing.Price)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"£9,500", 9500},
		{"£1,200.50", 1200.50},
		{"9500 ono", 9500},
		{"GBP 12000", 12000},
	}
	for _, tt := range tests {
		got, err := parsePrice(tt.raw)
		if err != nil {
			t.Errorf("parsePrice(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}

	for _, raw := range []string{"", "free", "contact seller"} {
		if _, err := parsePrice(raw); err == nil {
			t.Errorf("parsePrice(%q): expected error", raw)
		}
	}
}

func TestParseMileage(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"89,000", 89000},
		{"2004 | 89,000 miles | Manual", 89000},
		{"52000 mi", 52000},
		{"Unknown", 0},
		{"", 0},
		// Price digits without a unit must not be mistaken for mileage.
		{"£9,500 ono, full MOT", 0},
	}
	for _, tt := range tests {
		if got := parseMileage(tt.raw); got != tt.want {
			t.Errorf("parseMileage(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"2004", 2004},
		{"1999 Nissan 200SX S14a", 1999},
		{"Unknown", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseYear(tt.raw); got != tt.want {
			t.Errorf("parseYear(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeAllDropsBadRecords(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	bad := validRecord()
	bad.URL = ""
	listings := n.NormalizeAll([]models.SourceRecord{validRecord(), bad}, "autotrader")
	if len(listings) != 1 {
		t.Errorf("kept %d listings; want 1", len(listings))
	}
}
