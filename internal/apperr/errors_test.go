package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/citypulse/citypulse/internal/apperr"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout",
			err:  apperr.Timeoutf("Request to %s timed out", "http://example.com"),
			want: "Timeout error: Request to http://example.com timed out",
		},
		{
			name: "http 500",
			err:  apperr.HTTPStatus(http.StatusInternalServerError),
			want: "HTTP error: 500 Internal Server Error",
		},
		{
			name: "http 404",
			err:  apperr.HTTPStatus(http.StatusNotFound),
			want: "HTTP error: 404 Not Found",
		},
		{
			name: "network",
			err:  apperr.Network(errors.New("connection refused")),
			want: "Network error: connection refused",
		},
		{
			name: "parse",
			err:  apperr.Parse(errors.New("unexpected end of JSON input")),
			want: "JSON parse error: unexpected end of JSON input",
		},
		{
			name: "validation",
			err:  apperr.Validation("Must provide between 1 and 20 cities"),
			want: "Validation error: Must provide between 1 and 20 cities",
		},
		{
			name: "auth",
			err:  apperr.Auth("Invalid username or password"),
			want: "Authentication error: Invalid username or password",
		},
		{
			name: "authorization",
			err:  apperr.Authorization("Admin role required for this endpoint"),
			want: "Authorization error: Admin role required for this endpoint",
		},
		{
			name: "internal",
			err:  apperr.Internal("unexpected"),
			want: "Internal error: unexpected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Timeout("slow"), http.StatusGatewayTimeout},
		{apperr.HTTPStatus(http.StatusTeapot), http.StatusTeapot},
		{apperr.HTTPStatus(http.StatusServiceUnavailable), http.StatusServiceUnavailable},
		{&apperr.Error{Kind: apperr.KindHTTP, HTTPStatus: 0}, http.StatusBadGateway},
		{apperr.Network(errors.New("boom")), http.StatusBadGateway},
		{apperr.Parse(errors.New("bad json")), http.StatusBadRequest},
		{apperr.Validation("nope"), http.StatusBadRequest},
		{apperr.Database(errors.New("down")), http.StatusInternalServerError},
		{apperr.Auth("who are you"), http.StatusUnauthorized},
		{apperr.Authorization("not yours"), http.StatusForbidden},
		{apperr.Internal("boom"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, apperr.Status(tt.err), "error: %v", tt.err)
	}
}

func TestStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("fetching weather: %w", apperr.HTTPStatus(http.StatusBadGateway))
	assert.Equal(t, http.StatusBadGateway, apperr.Status(wrapped))
	assert.True(t, apperr.IsKind(wrapped, apperr.KindHTTP))
	assert.False(t, apperr.IsKind(wrapped, apperr.KindTimeout))
}
