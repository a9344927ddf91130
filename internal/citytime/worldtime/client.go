// Package worldtime is the World Time API provider client used by the
// time service. Unlike the weather provider it needs no rate limiter or
// debounce; the read-through cache never expires.
package worldtime

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/citypulse/citypulse/internal/cache"
	"github.com/citypulse/citypulse/internal/citytime"
	"github.com/citypulse/citypulse/internal/fetch"
	"github.com/citypulse/citypulse/internal/geo"
)

const (
	// ProviderName identifies this time provider.
	ProviderName = "worldtimeapi"

	// DefaultBaseURL is the World Time API timezone endpoint.
	DefaultBaseURL = "http://worldtimeapi.org/api/timezone"
)

// prefillCities are fetched in series at service start to warm the cache.
var prefillCities = []string{
	"London",
	"Tokyo",
	"New York",
	"Paris",
	"Berlin",
	"Sydney",
	"Los Angeles",
	"Chicago",
	"Toronto",
	"Singapore",
}

// ClientConfig holds configuration for the World Time API client.
type ClientConfig struct {
	// BaseURL is the timezone endpoint (optional).
	BaseURL string

	// Cache is the time sample cache (optional; a non-expiring store is
	// created when nil).
	Cache *cache.Store[citytime.Sample]

	// Fetcher is the retrying HTTP client (optional).
	Fetcher *fetch.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches local time from the World Time API.
type Client struct {
	baseURL string
	fetcher *fetch.Client
	cache   *cache.Store[citytime.Sample]
	logger  zerolog.Logger
}

// NewClient creates a new World Time API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	store := cfg.Cache
	if store == nil {
		store = cache.New[citytime.Sample]()
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewClient(fetch.Config{Name: ProviderName, Logger: cfg.Logger})
	}

	return &Client{
		baseURL: baseURL,
		fetcher: fetcher,
		cache:   store,
		logger:  cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// Upstream names the field "unixtime"; the internal model calls it
// "unix_time".
type worldTimeResponse struct {
	Datetime string `json:"datetime"`
	Timezone string `json:"timezone"`
	UnixTime int64  `json:"unixtime"`
}

// GetTime returns the local time for city, consulting the cache first.
func (c *Client) GetTime(ctx context.Context, city string) (citytime.Sample, error) {
	if cached, ok := c.cache.Get(city); ok {
		c.logger.Debug().Str("city", city).Msg("cache hit")
		return cached, nil
	}

	c.logger.Info().Str("city", city).Msg("fetching time from upstream")

	timezone := geo.Timezone(city)
	target := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(timezone))

	resp, err := fetch.JSON[worldTimeResponse](ctx, c.fetcher, target)
	if err != nil {
		return citytime.Sample{}, err
	}

	sample := citytime.Sample{
		Datetime: resp.Datetime,
		Timezone: resp.Timezone,
		UnixTime: resp.UnixTime,
	}

	c.cache.Set(city, sample)

	return sample, nil
}

// PrefillCache warms the cache with a fixed list of common cities,
// fetched in series. Individual failures are counted and logged; the
// routine never fails the process.
func (c *Client) PrefillCache(ctx context.Context) (cached, failed int) {
	c.logger.Info().Msg("starting cache prefill for common cities")

	for _, city := range prefillCities {
		if _, err := c.GetTime(ctx, city); err != nil {
			c.logger.Warn().Str("city", city).Err(err).Msg("failed to fetch time during prefill")
			failed++
			continue
		}
		cached++
	}

	c.logger.Info().Int("cached", cached).Int("failed", failed).Msg("cache prefill completed")

	return cached, failed
}
