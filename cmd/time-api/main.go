// Package main provides the entrypoint for the time service.
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

	"github.com/citypulse/citypulse/internal/api"
	"github.com/citypulse/citypulse/internal/citytime/worldtime"
	"github.com/citypulse/citypulse/internal/config"
	"github.com/citypulse/citypulse/internal/fetch"
	"github.com/citypulse/citypulse/internal/telemetry"
)

const serviceName = "time-service"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	cfg := config.LoadTime()

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

	provider := worldtime.NewClient(worldtime.ClientConfig{
		BaseURL: cfg.WorldTimeAPIURL,
		Fetcher: fetch.NewClient(fetch.Config{
			Name:   worldtime.ProviderName,
			Logger: log,
		}),
		Logger: log,
	})

	// Warm the cache before taking traffic; failures only cost cold
	// lookups later.
	cached, failed := provider.PrefillCache(shutdownCtx)
	log.Info().Int("cached", cached).Int("failed", failed).Msg("cache prefill complete")

	router := api.NewTimeRouter(provider, log)

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
		log.Info().Str("addr", server.Addr).Msg("server listening")

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
