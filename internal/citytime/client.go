package citytime

import (
	"context"
	"fmt"
	"net/url"

	"github.com/citypulse/citypulse/internal/fetch"
)

// ServiceClient fetches local time from the time service's own HTTP API.
// The weather service's aggregator uses it so that time lookups flow
// through the time service and its cache rather than hitting the upstream
// provider directly.
type ServiceClient struct {
	baseURL string
	fetcher *fetch.Client
}

// NewServiceClient creates a client for the time service at baseURL.
func NewServiceClient(baseURL string, fetcher *fetch.Client) *ServiceClient {
	return &ServiceClient{baseURL: baseURL, fetcher: fetcher}
}

// GetTime calls GET {base}/api/time/{city}. The response shape is the
// service's own contract, which matches Sample field for field.
func (c *ServiceClient) GetTime(ctx context.Context, city string) (Sample, error) {
	target := fmt.Sprintf("%s/api/time/%s", c.baseURL, url.PathEscape(city))
	return fetch.JSON[Sample](ctx, c.fetcher, target)
}
