// Package response provides JSON response helpers shared by the handlers.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/citypulse/citypulse/internal/api/middleware"
	"github.com/citypulse/citypulse/internal/apperr"
)

// JSON writes a JSON response with the given status code. The request ID is
// echoed in X-Request-Id for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// Error maps the error to its HTTP status and writes the standard error
// body.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	JSON(w, r, apperr.Status(err), errorBody{Error: err.Error()})
}
