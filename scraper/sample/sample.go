// Package sample is an offline Source with a fixed set of listings. It backs
// demo mode and end-to-end tests without touching any marketplace.
package sample

import (
	"time"

	"car-arbitrage/models"
)

const sourceID = "sample"

// Source serves canned listings keyed by model.
type Source struct{}

// New creates the sample source.
func New() *Source {
	return &Source{}
}

// ID implements scraper.Source.
func (s *Source) ID() string { return sourceID }

// Search implements scraper.Source. Only the first search term of a model
// returns records, so multi-term searches do not multiply the fixed data.
func (s *Source) Search(modelKey string, rule models.ModelRule, term string) ([]models.SourceRecord, error) {
	if len(rule.SearchTerms) > 0 && term != rule.SearchTerms[0] {
		return nil, nil
	}

	var records []models.SourceRecord
	for _, rec := range listings {
		if rec.ModelKey == modelKey {
			r := rec
			r.ScrapedAt = time.Now()
			records = append(records, r)
		}
	}
	return records, nil
}

func coord(lat, lon float64) *models.Coordinate {
	return &models.Coordinate{Lat: lat, Lon: lon}
}

var listings = []models.SourceRecord{
	{
		ModelKey: "bmw_e46_330",
		Title:    "BMW E46 330Ci Sport Manual - Full History",
		RawPrice: "£9,500",
		Location: "Manchester",
		Coords:   coord(53.4808, -2.2426),
		URL:      "https://www.autotrader.co.uk/car-details/202602120001",
		Year:     "2004",
		Mileage:  "89,000",
	},
	{
		ModelKey: "lexus_is200",
		Title:    "Lexus IS200 Sport Manual - Immaculate",
		RawPrice: "£4,800",
		Location: "Chester",
		Coords:   coord(53.1908, -2.8908),
		URL:      "https://www.autotrader.co.uk/car-details/202602120002",
		Year:     "2003",
		Mileage:  "112,000",
	},
	{
		ModelKey: "nissan_200sx",
		Title:    "Nissan 200SX S14a Kouki - Original SR20DET",
		RawPrice: "£18,500",
		Location: "Preston",
		Coords:   coord(53.7632, -2.7031),
		URL:      "https://www.pistonheads.com/classifieds/used-cars/nissan/200sx/nissan-200sx-s14-kouki-sr20det-1999/15234567",
		Year:     "1999",
		Mileage:  "95,000",
	},
	{
		ModelKey: "bmw_e36_328",
		Title:    "BMW E36 328i Sport Coupe - Manual",
		RawPrice: "£5,800",
		Location: "Warrington",
		Coords:   coord(53.3900, -2.5970),
		URL:      "https://www.gumtree.com/p/cars-vans-motorbikes/bmw-e36-328i-sport/1487654321",
		Year:     "1998",
		Mileage:  "145,000",
	},
	{
		ModelKey: "honda_civic_type_r",
		Title:    "Honda Civic Type R EP3 Championship White",
		RawPrice: "£8,800",
		Location: "Bolton",
		Coords:   coord(53.5768, -2.4282),
		URL:      "https://www.autotrader.co.uk/car-details/202602120003",
		Year:     "2005",
		Mileage:  "78,000",
	},
	{
		ModelKey: "nissan_skyline_r33",
		Title:    "Nissan Skyline R33 GTS-T Type M - Fresh Import",
		RawPrice: "£24,000",
		Location: "Blackpool",
		Coords:   coord(53.8175, -3.0357),
		URL:      "https://www.pistonheads.com/classifieds/used-cars/nissan/skyline/12345",
		Year:     "1996",
		Mileage:  "78,000",
	},
	{
		ModelKey: "mazda_rx7_fd",
		Title:    "Mazda RX-7 FD3S Twin Turbo - JDM Import",
		RawPrice: "£26,000",
		Location: "Manchester",
		Coords:   coord(53.4808, -2.2426),
		URL:      "https://www.pistonheads.com/classifieds/used-cars/mazda/rx-7/12346",
		Year:     "1993",
		Mileage:  "65,000",
	},
	{
		ModelKey: "bmw_e36_m3",
		Title:    "BMW E36 M3 3.2 Evolution - Manual",
		RawPrice: "£16,500",
		Location: "Lancaster",
		Coords:   coord(54.0466, -2.8007),
		URL:      "https://www.autotrader.co.uk/car-details/202602120005",
		Year:     "1997",
		Mileage:  "98,000",
	},
	{
		ModelKey: "nissan_350z",
		Title:    "Nissan 350Z GT Manual - Low Miles",
		RawPrice: "£10,500",
		Location: "Wigan",
		Coords:   coord(53.5450, -2.6318),
		URL:      "https://www.autotrader.co.uk/car-details/202602120006",
		Year:     "2007",
		Mileage:  "52,000",
	},
}
