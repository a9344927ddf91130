// Package aggregate implements the fan-out aggregation core of the
// weather service: one bounded-parallel task per requested city, weather
// and time fetched in parallel within each task, failures captured per
// city so a single bad upstream never fails the whole request.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/citypulse/citypulse/internal/apperr"
	"github.com/citypulse/citypulse/internal/citytime"
	"github.com/citypulse/citypulse/internal/weather"
)

const (
	// MaxCities is the largest accepted batch.
	MaxCities = 20

	// DefaultFanOutLimit caps concurrently executing city tasks.
	DefaultFanOutLimit = 10

	// DefaultFetchTimeout bounds each weather or time fetch inside a
	// city task.
	DefaultFetchTimeout = 10 * time.Second
)

// cancelledMessage is the single failure string of a cancelled city task.
const cancelledMessage = "Request cancelled"

// Config holds configuration for an Aggregator.
type Config struct {
	// Weather is the weather provider (required).
	Weather weather.Provider

	// Time is the time provider, normally the time service's HTTP client
	// (required).
	Time citytime.Provider

	// FanOutLimit caps concurrent city tasks. Default: 10.
	FanOutLimit int

	// FetchTimeout bounds each individual fetch. Default: 10 seconds.
	FetchTimeout time.Duration

	// Shutdown is the broadcast cancellation signal derived from the
	// process's shutdown trigger. Defaults to context.Background().
	Shutdown context.Context

	// Logger for aggregation events.
	Logger zerolog.Logger
}

// Aggregator runs batch city lookups. The fan-out gate is owned by the
// Aggregator and therefore process-wide: concurrent aggregate requests
// share the same permit set.
type Aggregator struct {
	weather      weather.Provider
	timesvc      citytime.Provider
	gate         *semaphore.Weighted
	fetchTimeout time.Duration
	shutdown     context.Context
	logger       zerolog.Logger
}

// New creates an Aggregator.
func New(cfg Config) *Aggregator {
	limit := cfg.FanOutLimit
	if limit <= 0 {
		limit = DefaultFanOutLimit
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	shutdown := cfg.Shutdown
	if shutdown == nil {
		shutdown = context.Background()
	}

	return &Aggregator{
		weather:      cfg.Weather,
		timesvc:      cfg.Time,
		gate:         semaphore.NewWeighted(int64(limit)),
		fetchTimeout: timeout,
		shutdown:     shutdown,
		logger:       cfg.Logger,
	}
}

// Aggregate looks up weather and time for each requested city. The
// returned result preserves the input order and length; all upstream and
// timeout failures are captured in the per-city error lists. The only
// error Aggregate itself returns is a validation failure for a batch
// outside 1..20.
func (a *Aggregator) Aggregate(ctx context.Context, cities []string) (*Result, error) {
	if len(cities) == 0 || len(cities) > MaxCities {
		return nil, apperr.Validation("Must provide between 1 and 20 cities")
	}

	a.logger.Info().Int("count", len(cities)).Msg("starting aggregation")

	results := make([]CityResult, len(cities))

	var wg sync.WaitGroup
	for i, city := range cities {
		wg.Add(1)
		go func(i int, city string) {
			defer wg.Done()
			defer func() {
				// A panicking task still yields a failed CityResult so
				// the response keeps one entry per requested city.
				if r := recover(); r != nil {
					a.logger.Error().Str("city", city).Interface("panic", r).Msg("city task panicked")
					results[i] = CityResult{
						City:   city,
						Errors: []string{fmt.Sprintf("Internal error: city task failed: %v", r)},
					}
				}
			}()
			results[i] = a.runCity(ctx, city)
		}(i, city)
	}
	wg.Wait()

	summary := Summary{Total: len(results)}
	for i := range results {
		if len(results[i].Errors) == 0 {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	a.logger.Info().
		Int("total", summary.Total).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Msg("aggregation completed")

	return &Result{Cities: results, Summary: summary}, nil
}

// runCity drives one city task through its states: a cancellation check
// before queueing for a permit, the permit held for the full duration of
// the work, and the two-fetch step raced against cancellation.
func (a *Aggregator) runCity(ctx context.Context, city string) CityResult {
	// Link the request context to the process-wide shutdown broadcast so
	// the task observes whichever fires first.
	tctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(a.shutdown, cancel)
	defer stop()

	if tctx.Err() != nil {
		return cancelledResult(city)
	}

	if err := a.gate.Acquire(tctx, 1); err != nil {
		return cancelledResult(city)
	}
	defer a.gate.Release(1)

	done := make(chan CityResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- CityResult{
					City:   city,
					Errors: []string{fmt.Sprintf("Internal error: city task failed: %v", r)},
				}
			}
		}()
		done <- a.fetchCity(tctx, city)
	}()

	select {
	case res := <-done:
		return res
	case <-tctx.Done():
		// Cancellation is a uniform outcome: any partial data the fetch
		// step produced is dropped.
		return cancelledResult(city)
	}
}

// fetchCity runs the weather and time lookups in parallel, each under its
// own per-operation timeout, and records the two outcomes independently.
// When both fail, the weather failure is listed first.
func (a *Aggregator) fetchCity(ctx context.Context, city string) CityResult {
	var (
		wg      sync.WaitGroup
		wSample weather.Sample
		wErr    error
		tSample citytime.Sample
		tErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				wErr = apperr.Internalf("weather fetch panicked: %v", r)
			}
		}()
		wctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
		wSample, wErr = a.weather.GetWeather(wctx, city)
		if wErr != nil && deadlineHit(wctx, ctx) {
			wErr = apperr.Timeoutf("Weather fetch for %s timed out", city)
		}
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				tErr = apperr.Internalf("time fetch panicked: %v", r)
			}
		}()
		tctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
		tSample, tErr = a.timesvc.GetTime(tctx, city)
		if tErr != nil && deadlineHit(tctx, ctx) {
			tErr = apperr.Timeoutf("Time fetch for %s timed out", city)
		}
	}()
	wg.Wait()

	res := CityResult{City: city, Errors: []string{}}

	if wErr != nil {
		a.logger.Warn().Str("city", city).Err(wErr).Msg("weather fetch failed")
		res.Errors = append(res.Errors, "Weather: "+wErr.Error())
	} else {
		res.Weather = &wSample
	}

	if tErr != nil {
		a.logger.Warn().Str("city", city).Err(tErr).Msg("time fetch failed")
		res.Errors = append(res.Errors, "Time: "+tErr.Error())
	} else {
		res.Time = &tSample
	}

	return res
}

// deadlineHit reports whether the per-fetch deadline expired on its own,
// as opposed to the parent being cancelled.
func deadlineHit(fetchCtx, parent context.Context) bool {
	return errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil
}

func cancelledResult(city string) CityResult {
	return CityResult{City: city, Errors: []string{cancelledMessage}}
}
