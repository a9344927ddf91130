package aggregate

import (
	"github.com/citypulse/citypulse/internal/citytime"
	"github.com/citypulse/citypulse/internal/weather"
)

// CityResult is the per-city outcome of an aggregation. City keeps the
// original request spelling even though the caches normalise it. A result
// is successful iff Errors is empty.
type CityResult struct {
	City    string           `json:"city"`
	Weather *weather.Sample  `json:"weather"`
	Time    *citytime.Sample `json:"time"`
	Errors  []string         `json:"errors"`
}

// Summary counts outcomes across one aggregation.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Result is the response of one aggregate request. Cities has the same
// length and order as the request's city list.
type Result struct {
	Cities  []CityResult `json:"cities"`
	Summary Summary      `json:"summary"`
}
