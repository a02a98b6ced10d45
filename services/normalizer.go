package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"car-arbitrage/geo"
	"car-arbitrage/models"
	"car-arbitrage/utils"
)

// ErrMalformedListing marks a source record missing or mangling a required
// field. The record is dropped and logged; the batch continues.
var ErrMalformedListing = errors.New("malformed listing")

var (
	// priceRegexp captures the first numeric value after currency noise is stripped
	priceRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// yearRegexp captures a plausible model year
	yearRegexp = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	// mileageUnitRegexp captures mileage with an explicit unit, e.g. "89,000 miles"
	mileageUnitRegexp = regexp.MustCompile(`(?i)([\d,]+)\s*(?:miles|mi)\b`)
	// bareNumberRegexp matches a value that is nothing but a number
	bareNumberRegexp = regexp.MustCompile(`^[\d,]+$`)
)

// Normalizer converts raw source records into canonical RawListings.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize validates and parses one source record. Title, price, URL and a
// resolvable location are required; year and mileage stay zero when the
// source did not report them.
func (n *Normalizer) Normalize(rec models.SourceRecord, sourceID string) (*models.RawListing, error) {
	title := normaliseText(rec.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedListing)
	}

	url := strings.TrimSpace(rec.URL)
	if url == "" {
		return nil, fmt.Errorf("%w: missing URL for %q", ErrMalformedListing, title)
	}

	price, err := parsePrice(rec.RawPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v for %q", ErrMalformedListing, err, title)
	}

	coords, err := n.resolveCoords(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v for %q", ErrMalformedListing, err, title)
	}

	listing := &models.RawListing{
		ModelKey:  rec.ModelKey,
		Source:    sourceID,
		Title:     title,
		Price:     price,
		Location:  normaliseText(rec.Location),
		Coords:    coords,
		URL:       url,
		Year:      parseYear(rec.Year),
		Mileage:   parseMileage(rec.Mileage),
		ScrapedAt: rec.ScrapedAt,
	}

	n.logger.Debug("[normalizer] %s: %q £%.0f at %s", sourceID, title, price, listing.Location)
	return listing, nil
}

// NormalizeAll processes a batch, dropping malformed records with a warning.
func (n *Normalizer) NormalizeAll(records []models.SourceRecord, sourceID string) []*models.RawListing {
	listings := make([]*models.RawListing, 0, len(records))
	for _, rec := range records {
		listing, err := n.Normalize(rec, sourceID)
		if err != nil {
			n.logger.Warn("[normalizer] Dropping record: %v", err)
			continue
		}
		listings = append(listings, listing)
	}

	if dropped := len(records) - len(listings); dropped > 0 {
		n.logger.Info("[normalizer] %s: %d → %d listings (dropped %d)",
			sourceID, len(records), len(listings), dropped)
	}
	return listings
}

// resolveCoords prefers coordinates the adapter supplied, falling back to
// geocoding the location text. Out-of-range degrees are caught here so the
// distance stage never sees them.
func (n *Normalizer) resolveCoords(rec models.SourceRecord) (models.Coordinate, error) {
	if rec.Coords != nil {
		if !rec.Coords.Valid() {
			return models.Coordinate{}, fmt.Errorf("coordinates out of range (%.4f, %.4f)",
				rec.Coords.Lat, rec.Coords.Lon)
		}
		return *rec.Coords, nil
	}

	coords, ok := geo.Geocode(rec.Location)
	if !ok {
		return models.Coordinate{}, fmt.Errorf("unresolvable location %q", rec.Location)
	}
	return coords, nil
}

// parsePrice extracts a non-negative price from strings like "£9,500" or
// "9500 ono". An empty or non-numeric price is malformed.
func parsePrice(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0, fmt.Errorf("non-numeric price %q", raw)
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric price %q", raw)
	}
	return price, nil
}

func parseYear(raw string) int {
	match := yearRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return year
}

// parseMileage accepts either a bare number ("89,000") or a value with a
// unit somewhere in surrounding text ("… 89,000 miles …").
func parseMileage(raw string) int {
	raw = strings.TrimSpace(raw)

	var digits string
	if m := mileageUnitRegexp.FindStringSubmatch(raw); len(m) >= 2 {
		digits = m[1]
	} else if bareNumberRegexp.MatchString(raw) {
		digits = raw
	} else {
		return 0
	}

	miles, err := strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
	if err != nil || miles < 0 {
		return 0
	}
	return miles
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), unicode.IsSpace)
	return strings.Join(fields, " ")
}
