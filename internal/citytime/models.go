// Package citytime defines the local-time domain model and the provider
// contract its clients implement.
package citytime

import "context"

// Sample is the local time for one city.
type Sample struct {
	Datetime string `json:"datetime"`
	Timezone string `json:"timezone"`
	UnixTime int64  `json:"unix_time"`
}

// Provider fetches the local time for a city.
type Provider interface {
	GetTime(ctx context.Context, city string) (Sample, error)
}
