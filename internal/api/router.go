// Package api assembles the HTTP routers for the citypulse services.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/citypulse/citypulse/internal/aggregate"
	"github.com/citypulse/citypulse/internal/api/handler"
	"github.com/citypulse/citypulse/internal/api/middleware"
	"github.com/citypulse/citypulse/internal/auth"
	"github.com/citypulse/citypulse/internal/citytime"
	"github.com/citypulse/citypulse/internal/weather"
)

func baseRouter(logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Order matters: the request ID feeds the span, the span feeds the log.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.RealIP)

	return r
}

// NewWeatherRouter builds the weather service router.
func NewWeatherRouter(provider weather.Provider, aggregator *aggregate.Aggregator, logger zerolog.Logger) *chi.Mux {
	r := baseRouter(logger)

	opsHandler := handler.NewOpsHandler("weather-service")
	weatherHandler := handler.NewWeatherHandler(provider, aggregator)

	r.Get("/health", opsHandler.Health)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))
		r.Get("/api/weather/{city}", weatherHandler.GetCity)
		r.Get("/api/aggregate", weatherHandler.Aggregate)
	})

	return r
}

// NewTimeRouter builds the time service router.
func NewTimeRouter(provider citytime.Provider, logger zerolog.Logger) *chi.Mux {
	r := baseRouter(logger)

	opsHandler := handler.NewOpsHandler("time-service")
	timeHandler := handler.NewTimeHandler(provider)

	r.Get("/health", opsHandler.Health)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))
		r.Get("/api/time/{city}", timeHandler.GetCity)
	})

	return r
}

// NewAuthRouter builds the auth service router.
func NewAuthRouter(service *auth.Service, jwtService *auth.JWTService, logger zerolog.Logger) *chi.Mux {
	r := baseRouter(logger)

	opsHandler := handler.NewOpsHandler("auth-service")
	authHandler := handler.NewAuthHandler(service)

	r.Get("/health", opsHandler.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(middleware.AuthRateLimit))
		r.Post("/api/auth/register", authHandler.Register)
		r.Post("/api/auth/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))
		r.Use(middleware.Authenticate(jwtService))
		r.Use(middleware.RequireAdmin)
		r.Get("/api/admin/users", authHandler.ListUsers)
		r.Delete("/api/admin/users/{id}", authHandler.DeleteUser)
	})

	return r
}
