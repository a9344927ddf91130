// Package weather defines the weather domain model and the provider
// contract its clients implement.
package weather

import "context"

// Sample is a current-conditions snapshot for one city. Humidity and
// WindSpeed are optional because the upstream omits them for some
// stations.
type Sample struct {
	Temperature float64  `json:"temperature"`
	Condition   string   `json:"condition"`
	Humidity    *float64 `json:"humidity"`
	WindSpeed   *float64 `json:"wind_speed"`
}

// Provider fetches weather for a city.
type Provider interface {
	// GetWeather returns the current conditions for city. Implementations
	// are expected to be safe for concurrent use.
	GetWeather(ctx context.Context, city string) (Sample, error)
}
