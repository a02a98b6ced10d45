package geo

import (
	"math"
	"strings"

	"car-arbitrage/models"
)

// earthRadiusMiles is the mean Earth radius used by the haversine formula.
const earthRadiusMiles = 3959

// DistanceMiles returns the great-circle distance between two coordinates
// in miles. Identical coordinates yield exactly 0.
func DistanceMiles(a, b models.Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

type town struct {
	name   string
	coords models.Coordinate
}

// towns lists known UK towns inside the operating radius. Kept as an
// ordered slice so substring matches resolve the same way on every run
// (e.g. "York, North Yorkshire" always hits york, never a later entry).
var towns = []town{
	// Northwest
	{"manchester", models.Coordinate{Lat: 53.4808, Lon: -2.2426}},
	{"liverpool", models.Coordinate{Lat: 53.4084, Lon: -2.9916}},
	{"chester", models.Coordinate{Lat: 53.1908, Lon: -2.8908}},
	{"warrington", models.Coordinate{Lat: 53.3900, Lon: -2.5970}},
	{"preston", models.Coordinate{Lat: 53.7632, Lon: -2.7031}},
	{"blackpool", models.Coordinate{Lat: 53.8175, Lon: -3.0357}},
	{"bolton", models.Coordinate{Lat: 53.5768, Lon: -2.4282}},
	{"wigan", models.Coordinate{Lat: 53.5450, Lon: -2.6318}},
	{"southport", models.Coordinate{Lat: 53.6472, Lon: -3.0054}},
	{"blackburn", models.Coordinate{Lat: 53.7480, Lon: -2.4821}},
	{"burnley", models.Coordinate{Lat: 53.7895, Lon: -2.2482}},
	{"lancaster", models.Coordinate{Lat: 54.0466, Lon: -2.8007}},
	{"crewe", models.Coordinate{Lat: 53.0979, Lon: -2.4416}},
	{"stoke", models.Coordinate{Lat: 53.0027, Lon: -2.1794}},
	// Yorkshire
	{"leeds", models.Coordinate{Lat: 53.8008, Lon: -1.5491}},
	{"sheffield", models.Coordinate{Lat: 53.3811, Lon: -1.4701}},
	{"york", models.Coordinate{Lat: 53.9600, Lon: -1.0873}},
	{"bradford", models.Coordinate{Lat: 53.7960, Lon: -1.7594}},
	{"huddersfield", models.Coordinate{Lat: 53.6458, Lon: -1.7850}},
	// Midlands
	{"birmingham", models.Coordinate{Lat: 52.4862, Lon: -1.8904}},
	{"nottingham", models.Coordinate{Lat: 52.9548, Lon: -1.1581}},
	{"leicester", models.Coordinate{Lat: 52.6369, Lon: -1.1398}},
	{"derby", models.Coordinate{Lat: 52.9225, Lon: -1.4746}},
	{"coventry", models.Coordinate{Lat: 52.4068, Lon: -1.5197}},
	{"wolverhampton", models.Coordinate{Lat: 52.5867, Lon: -2.1290}},
	// Wales
	{"cardiff", models.Coordinate{Lat: 51.4816, Lon: -3.1791}},
	{"swansea", models.Coordinate{Lat: 51.6214, Lon: -3.9436}},
	{"wrexham", models.Coordinate{Lat: 53.0462, Lon: -2.9930}},
	// Other
	{"newcastle", models.Coordinate{Lat: 54.9783, Lon: -1.6178}},
	{"carlisle", models.Coordinate{Lat: 54.8951, Lon: -2.9382}},
}

// Geocode resolves a free-text listing location to coordinates by matching
// known town names. The second return value is false when no town matched.
func Geocode(location string) (models.Coordinate, bool) {
	loc := strings.ToLower(location)
	for _, t := range towns {
		if strings.Contains(loc, t.name) {
			return t.coords, true
		}
	}
	return models.Coordinate{}, false
}
