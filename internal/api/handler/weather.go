package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/citypulse/citypulse/internal/aggregate"
	"github.com/citypulse/citypulse/internal/api/response"
	"github.com/citypulse/citypulse/internal/weather"
)

// WeatherHandler serves weather lookups and the batch aggregation
// endpoint.
type WeatherHandler struct {
	provider   weather.Provider
	aggregator *aggregate.Aggregator
}

func NewWeatherHandler(provider weather.Provider, aggregator *aggregate.Aggregator) *WeatherHandler {
	return &WeatherHandler{provider: provider, aggregator: aggregator}
}

// GetCity handles GET /api/weather/{city}.
func (h *WeatherHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	sample, err := h.provider.GetWeather(r.Context(), city)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, sample)
}

// Aggregate handles GET /api/aggregate?city=a&city=b, combining weather
// and time for up to twenty cities. A city whose upstream fetches failed
// still answers inside a 200 with its errors listed.
func (h *WeatherHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	cities := r.URL.Query()["city"]

	res, err := h.aggregator.Aggregate(r.Context(), cities)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, res)
}
