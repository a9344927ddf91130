package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/citypulse/citypulse/internal/api/response"
	"github.com/citypulse/citypulse/internal/citytime"
)

// TimeHandler serves local time lookups.
type TimeHandler struct {
	provider citytime.Provider
}

func NewTimeHandler(provider citytime.Provider) *TimeHandler {
	return &TimeHandler{provider: provider}
}

// GetCity handles GET /api/time/{city}.
func (h *TimeHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	sample, err := h.provider.GetTime(r.Context(), city)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, sample)
}
