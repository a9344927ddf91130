// Package fetch provides the retrying JSON-over-HTTP client shared by the
// upstream integrations.
//
// Every attempt classifies its failure as timeout, network, HTTP (with the
// upstream status) or parse, and all classifications are retried with
// exponential backoff. Parse failures are retried along with the rest:
// upstream JSON is deterministic per URL, so a retry costs no more than a
// fresh fetch. On exhaustion the last classified failure is returned.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/citypulse/citypulse/internal/apperr"
)

const (
	// DefaultTimeout is the per-attempt request timeout.
	DefaultTimeout = 2 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2

	// DefaultInitialInterval is the first backoff sleep; it doubles on
	// each subsequent attempt.
	DefaultInitialInterval = 100 * time.Millisecond
)

// Config holds configuration for a Client.
type Config struct {
	// Name identifies the upstream for logging and circuit breaker naming.
	Name string

	// Timeout is the per-attempt request timeout. Default: 2 seconds.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Default: 2 (three attempts total).
	MaxRetries uint64

	// InitialInterval is the initial retry backoff. Default: 100ms.
	InitialInterval time.Duration

	// Logger for request-level events.
	Logger zerolog.Logger
}

// Client issues GET requests with retry, classification and a circuit
// breaker. One Client is created per upstream provider at service start;
// the embedded http.Client pools connections and is safe for concurrent
// use.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        Config
	logger     zerolog.Logger
}

// NewClient creates a Client with defaults applied.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = DefaultInitialInterval
	}

	// The breaker trips only on sustained upstream failure, well past the
	// retry budget of any single call, so it never changes which error a
	// caller sees on an isolated failure.
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 10
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		cfg:        cfg,
		logger:     cfg.Logger.With().Str("upstream", cfg.Name).Logger(),
	}
}

// JSON fetches url and decodes the 2xx body into T, retrying classified
// failures with exponential backoff (100ms doubling per attempt). It is a
// package-level function because Go methods cannot introduce type
// parameters.
func JSON[T any](ctx context.Context, c *Client, url string) (T, error) {
	var out T

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var lastErr error
	attempt := 0

	operation := func() error {
		attempt++

		body, err := c.get(ctx, url)
		if err != nil {
			lastErr = err
			if apperr.IsKind(err, apperr.KindNetwork) && c.breaker.State() == gobreaker.StateOpen {
				// No point retrying against an open breaker.
				return backoff.Permanent(err)
			}
			c.logger.Warn().
				Str("url", url).
				Int("attempt", attempt).
				Err(err).
				Msg("request failed, retrying with backoff")
			return err
		}

		var decoded T
		if err := json.Unmarshal(body, &decoded); err != nil {
			lastErr = apperr.Parse(err)
			c.logger.Warn().
				Str("url", url).
				Int("attempt", attempt).
				Err(err).
				Msg("response failed to parse, retrying with backoff")
			return lastErr
		}

		out = decoded
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.Error().
			Str("url", url).
			Int("attempts", attempt).
			Err(lastErr).
			Msg("all retry attempts exhausted")
		if lastErr != nil {
			return out, lastErr
		}
		return out, apperr.Internal("unknown error after retries")
	}

	return out, nil
}

// get performs one attempt and classifies its outcome.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if rerr != nil {
			return nil, rerr
		}
		r, derr := c.httpClient.Do(req)
		if derr != nil {
			return nil, derr
		}
		// 5xx count against the breaker.
		if r.StatusCode >= http.StatusInternalServerError {
			return r, apperr.HTTPStatus(r.StatusCode)
		}
		return r, nil
	})

	if err != nil {
		if resp != nil {
			drain(resp)
		}
		return nil, c.classify(url, err)
	}
	defer drain(resp)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperr.HTTPStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Network(err)
	}
	return body, nil
}

func (c *Client) classify(url string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperr.Network(err)
	}

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeoutf("Request to %s timed out", url)
	}
	return apperr.Network(err)
}

// drain consumes and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
