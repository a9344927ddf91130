// Package handler contains the HTTP handlers for the citypulse services.
package handler

import (
	"net/http"

	"github.com/citypulse/citypulse/internal/api/response"
)

// OpsHandler serves operational endpoints.
type OpsHandler struct {
	service string
}

func NewOpsHandler(service string) *OpsHandler {
	return &OpsHandler{service: service}
}

type healthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health reports liveness.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, healthStatus{Status: "ok", Service: h.service})
}
