// Package openmeteo is the Open-Meteo weather provider client.
//
// It layers three concerns in front of the retrying fetcher: a read-through
// TTL cache, a rate-limit permit set bounding in-flight upstream calls, and
// a debounce enforcing a minimum interval between successive calls.
package openmeteo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/citypulse/citypulse/internal/cache"
	"github.com/citypulse/citypulse/internal/fetch"
	"github.com/citypulse/citypulse/internal/geo"
	"github.com/citypulse/citypulse/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "open-meteo"

	// DefaultBaseURL is the Open-Meteo forecast API base URL.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	// DefaultRateLimitPerMinute caps outbound calls per minute.
	DefaultRateLimitPerMinute = 60
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the forecast API base URL (optional).
	BaseURL string

	// RateLimitPerMinute is the per-minute call cap C. The client keeps a
	// permit set of max(1, C) and a minimum inter-request interval of
	// 60s / max(1, C). Default: 60.
	RateLimitPerMinute int

	// Cache is the weather sample cache (optional; a 5 minute TTL cache
	// is created when nil).
	Cache *cache.Store[weather.Sample]

	// Fetcher is the retrying HTTP client (optional).
	Fetcher *fetch.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches current conditions from Open-Meteo.
type Client struct {
	baseURL string
	fetcher *fetch.Client
	cache   *cache.Store[weather.Sample]
	limiter *semaphore.Weighted
	logger  zerolog.Logger

	minInterval time.Duration

	// lastMu guards lastRequest only for the read/update; it is never
	// held across the debounce sleep.
	lastMu      sync.Mutex
	lastRequest time.Time
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rateLimit := cfg.RateLimitPerMinute
	if rateLimit == 0 {
		rateLimit = DefaultRateLimitPerMinute
	}
	permits := rateLimit
	if permits < 1 {
		permits = 1
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewExpiring[weather.Sample](5 * time.Minute)
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewClient(fetch.Config{Name: ProviderName, Logger: cfg.Logger})
	}

	return &Client{
		baseURL:     baseURL,
		fetcher:     fetcher,
		cache:       store,
		limiter:     semaphore.NewWeighted(int64(permits)),
		minInterval: time.Minute / time.Duration(permits),
		logger:      cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

type openMeteoResponse struct {
	Current currentConditions `json:"current"`
}

type currentConditions struct {
	Temperature2m      float64  `json:"temperature_2m"`
	RelativeHumidity2m *float64 `json:"relative_humidity_2m"`
	WindSpeed10m       *float64 `json:"wind_speed_10m"`
	WeatherCode        *int     `json:"weather_code"`
}

// GetWeather returns the current conditions for city, consulting the
// cache first. On a miss it acquires a rate-limit permit for the duration
// of the upstream call, debounces against the last request, fetches,
// translates and caches the result.
func (c *Client) GetWeather(ctx context.Context, city string) (weather.Sample, error) {
	if cached, ok := c.cache.Get(city); ok {
		c.logger.Debug().Str("city", city).Msg("cache hit")
		return cached, nil
	}

	if err := c.limiter.Acquire(ctx, 1); err != nil {
		return weather.Sample{}, err
	}
	defer c.limiter.Release(1)

	if err := c.debounce(ctx); err != nil {
		return weather.Sample{}, err
	}

	c.logger.Info().Str("city", city).Msg("fetching weather from upstream")

	coords := geo.Coordinates(city)
	url := fmt.Sprintf(
		"%s?latitude=%v&longitude=%v&current=temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code",
		c.baseURL, coords.Lat, coords.Lon,
	)

	resp, err := fetch.JSON[openMeteoResponse](ctx, c.fetcher, url)
	if err != nil {
		return weather.Sample{}, err
	}

	code := 0
	if resp.Current.WeatherCode != nil {
		code = *resp.Current.WeatherCode
	}

	sample := weather.Sample{
		Temperature: resp.Current.Temperature2m,
		Condition:   ConditionFromCode(code),
		Humidity:    resp.Current.RelativeHumidity2m,
		WindSpeed:   resp.Current.WindSpeed10m,
	}

	c.cache.Set(city, sample)

	return sample, nil
}

// debounce blocks until at least minInterval has passed since the
// previous request. The next slot is claimed before sleeping, so
// concurrent callers space themselves out rather than all firing when
// the same interval elapses.
func (c *Client) debounce(ctx context.Context) error {
	c.lastMu.Lock()
	now := time.Now()
	var wait time.Duration
	if next := c.lastRequest.Add(c.minInterval); !c.lastRequest.IsZero() && now.Before(next) {
		wait = next.Sub(now)
		c.lastRequest = next
	} else {
		c.lastRequest = now
	}
	c.lastMu.Unlock()

	if wait <= 0 {
		return nil
	}

	c.logger.Debug().Dur("wait", wait).Msg("debouncing upstream request")

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
