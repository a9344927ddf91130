// Package main provides the entrypoint for the weather aggregation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/citypulse/citypulse/internal/aggregate"
	"github.com/citypulse/citypulse/internal/api"
	"github.com/citypulse/citypulse/internal/cache"
	"github.com/citypulse/citypulse/internal/citytime"
	"github.com/citypulse/citypulse/internal/config"
	"github.com/citypulse/citypulse/internal/fetch"
	"github.com/citypulse/citypulse/internal/telemetry"
	"github.com/citypulse/citypulse/internal/weather"
	"github.com/citypulse/citypulse/internal/weather/openmeteo"
)

const serviceName = "weather-service"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	cfg := config.LoadWeather()

	// Cancelled on SIGINT/SIGTERM; fans out to every in-flight request.
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(shutdownCtx, serviceName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	weatherProvider := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:            cfg.OpenMeteoURL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Cache:              cache.NewExpiring[weather.Sample](cfg.CacheTTL),
		Fetcher: fetch.NewClient(fetch.Config{
			Name:   openmeteo.ProviderName,
			Logger: log,
		}),
		Logger: log,
	})

	timeProvider := citytime.NewServiceClient(cfg.TimeServiceURL, fetch.NewClient(fetch.Config{
		Name:   "time-service",
		Logger: log,
	}))

	aggregator := aggregate.New(aggregate.Config{
		Weather:  weatherProvider,
		Time:     timeProvider,
		Shutdown: shutdownCtx,
		Logger:   log,
	})

	router := api.NewWeatherRouter(weatherProvider, aggregator, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
		BaseContext: func(net.Listener) context.Context {
			return shutdownCtx
		},
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Dur("cache_ttl", cfg.CacheTTL).
			Int("rate_limit_per_minute", cfg.RateLimitPerMinute).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCtx.Done()
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
