package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/citypulse/internal/cache"
	"github.com/citypulse/citypulse/internal/fetch"
	"github.com/citypulse/citypulse/internal/weather"
	"github.com/citypulse/citypulse/internal/weather/openmeteo"
)

const sampleResponse = `{"current":{"temperature_2m":15.5,"relative_humidity_2m":72,"wind_speed_10m":12.3,"weather_code":61}}`

func newTestClient(t *testing.T, handler http.HandlerFunc, rateLimit int, ttl time.Duration) (*openmeteo.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:            srv.URL,
		RateLimitPerMinute: rateLimit,
		Cache:              cache.NewExpiring[weather.Sample](ttl),
		Fetcher: fetch.NewClient(fetch.Config{
			Name:            "open-meteo-test",
			InitialInterval: time.Millisecond,
			Logger:          zerolog.Nop(),
		}),
		Logger: zerolog.Nop(),
	})
	return client, srv
}

func TestGetWeatherTranslatesResponse(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(sampleResponse))
	}, 6000, time.Minute)

	sample, err := client.GetWeather(context.Background(), "London")
	require.NoError(t, err)

	assert.Equal(t, 15.5, sample.Temperature)
	assert.Equal(t, "Rain", sample.Condition)
	require.NotNil(t, sample.Humidity)
	assert.Equal(t, 72.0, *sample.Humidity)
	require.NotNil(t, sample.WindSpeed)
	assert.Equal(t, 12.3, *sample.WindSpeed)

	assert.Contains(t, gotQuery, "latitude=51.5074")
	assert.Contains(t, gotQuery, "longitude=-0.1278")
	assert.Contains(t, gotQuery, "current=temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
}

func TestGetWeatherUnknownCityFallsBackToOrigin(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":0,"weather_code":0}}`))
	}, 6000, time.Minute)

	sample, err := client.GetWeather(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, "Clear sky", sample.Condition)
	assert.Nil(t, sample.Humidity)
	assert.Nil(t, sample.WindSpeed)
	assert.Contains(t, gotQuery, "latitude=0")
	assert.Contains(t, gotQuery, "longitude=0")
}

func TestGetWeatherServesFromCache(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(sampleResponse))
	}, 6000, time.Minute)

	first, err := client.GetWeather(context.Background(), "London")
	require.NoError(t, err)
	second, err := client.GetWeather(context.Background(), "LONDON")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second lookup must be a cache hit")
}

func TestGetWeatherZeroTTLAlwaysFetches(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(sampleResponse))
	}, 6000, 0)

	_, err := client.GetWeather(context.Background(), "London")
	require.NoError(t, err)
	_, err = client.GetWeather(context.Background(), "London")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestGetWeatherPropagatesUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 6000, time.Minute)

	_, err := client.GetWeather(context.Background(), "London")
	require.Error(t, err)
	assert.Equal(t, "HTTP error: 500 Internal Server Error", err.Error())
}

func TestRateLimitOfOneSerializesRequests(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		_, _ = w.Write([]byte(sampleResponse))
	}, 1, 0)

	// Distinct cities with a zero TTL so every call goes upstream.
	cities := []string{"London", "Paris", "Berlin"}
	var wg sync.WaitGroup
	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			_, err := client.GetWeather(context.Background(), city)
			assert.NoError(t, err)
		}(city)
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load(), "permit count 1 must strictly serialize")
}

func TestDebounceEnforcesMinimumInterval(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	// 1200 requests/minute gives a 50ms minimum interval.
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(sampleResponse))
	}, 1200, 0)

	for _, city := range []string{"London", "Paris", "Berlin"} {
		_, err := client.GetWeather(context.Background(), city)
		require.NoError(t, err)
	}

	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		assert.GreaterOrEqual(t, gap, 45*time.Millisecond, "requests %d and %d fired %v apart", i-1, i, gap)
	}
}

func TestConditionTable(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "Clear sky"},
		{1, "Partly cloudy"},
		{2, "Partly cloudy"},
		{3, "Partly cloudy"},
		{45, "Foggy"},
		{48, "Foggy"},
		{51, "Drizzle"},
		{53, "Drizzle"},
		{55, "Drizzle"},
		{61, "Rain"},
		{63, "Rain"},
		{65, "Rain"},
		{71, "Snow"},
		{73, "Snow"},
		{75, "Snow"},
		{80, "Rain showers"},
		{81, "Rain showers"},
		{82, "Rain showers"},
		{85, "Snow showers"},
		{86, "Snow showers"},
		{95, "Thunderstorm"},
		{96, "Thunderstorm with hail"},
		{99, "Thunderstorm with hail"},
		{4, "Unknown"},
		{100, "Unknown"},
		{-1, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, openmeteo.ConditionFromCode(tt.code), "code %d", tt.code)
	}
}
