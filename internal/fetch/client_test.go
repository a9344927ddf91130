package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/citypulse/internal/apperr"
	"github.com/citypulse/citypulse/internal/fetch"
)

type payload struct {
	City string `json:"city"`
	Temp float64 `json:"temp"`
}

func testClient(timeout time.Duration) *fetch.Client {
	return fetch.NewClient(fetch.Config{
		Name:            "test-upstream",
		Timeout:         timeout,
		InitialInterval: time.Millisecond,
		Logger:          zerolog.Nop(),
	})
}

func TestJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"London","temp":15.5}`))
	}))
	defer srv.Close()

	got, err := fetch.JSON[payload](context.Background(), testClient(time.Second), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, payload{City: "London", Temp: 15.5}, got)
}

func TestJSONRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"city":"Tokyo","temp":22}`))
	}))
	defer srv.Close()

	got, err := fetch.JSON[payload](context.Background(), testClient(time.Second), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", got.City)
	assert.Equal(t, int32(3), calls.Load(), "two retries after the first attempt")
}

func TestJSONReturnsLastFailureOnExhaustion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fetch.JSON[payload](context.Background(), testClient(time.Second), srv.URL)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindHTTP))
	assert.Equal(t, "HTTP error: 500 Internal Server Error", err.Error())
	assert.Equal(t, http.StatusInternalServerError, apperr.Status(err))
	assert.Equal(t, int32(3), calls.Load(), "default is three attempts")
}

func TestJSONClientErrorIsNotMaskedByRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := fetch.JSON[payload](context.Background(), testClient(time.Second), srv.URL)
	require.Error(t, err)
	assert.Equal(t, "HTTP error: 404 Not Found", err.Error())
}

func TestJSONRetriesParseFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"city":`))
	}))
	defer srv.Close()

	_, err := fetch.JSON[payload](context.Background(), testClient(time.Second), srv.URL)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindParse))
	assert.Equal(t, int32(3), calls.Load(), "parse failures are retried like the rest")
}

func TestJSONClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := fetch.JSON[payload](context.Background(), testClient(20*time.Millisecond), srv.URL)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTimeout))
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, http.StatusGatewayTimeout, apperr.Status(err))
}

func TestJSONClassifiesNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens here anymore

	_, err := fetch.JSON[payload](context.Background(), testClient(time.Second), url)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNetwork))
	assert.Equal(t, http.StatusBadGateway, apperr.Status(err))
}
