package citytime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/citypulse/internal/apperr"
	"github.com/citypulse/citypulse/internal/citytime"
	"github.com/citypulse/citypulse/internal/fetch"
)

func newServiceClient(t *testing.T, handler http.HandlerFunc) *citytime.ServiceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fetcher := fetch.NewClient(fetch.Config{
		Name:            "time-service-test",
		InitialInterval: time.Millisecond,
		Logger:          zerolog.Nop(),
	})
	return citytime.NewServiceClient(srv.URL, fetcher)
}

func TestServiceClientGetTime(t *testing.T) {
	var gotPath string
	client := newServiceClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"datetime":"2024-03-01T10:00:00+01:00","timezone":"Europe/Paris","unix_time":1709283600}`))
	})

	sample, err := client.GetTime(context.Background(), "New York")
	require.NoError(t, err)

	assert.Equal(t, "/api/time/New%20York", gotPath)
	assert.Equal(t, "Europe/Paris", sample.Timezone)
	assert.Equal(t, int64(1709283600), sample.UnixTime)
}

func TestServiceClientPropagatesClassifiedError(t *testing.T) {
	client := newServiceClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetTime(context.Background(), "Paris")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindHTTP))
	assert.Equal(t, "HTTP error: 502 Bad Gateway", err.Error())
}
