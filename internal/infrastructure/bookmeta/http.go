package bookmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"books-commons/internal/infrastructure/metrics"
	"books-commons/pkg/ratelimit"
)

// httpClient - phần chung của các provider: rate limit, timeout, metrics, decode JSON
type httpClient struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *ratelimit.Limiter
}

func newHTTPClient(name, baseURL string, timeout time.Duration, rps float64) *httpClient {
	return &httpClient{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: ratelimit.New(name, rps),
	}
}

// getJSON GET url và decode body vào dest. HTTP 404 -> ErrNotFound.
func (c *httpClient) getJSON(ctx context.Context, operation, url string, dest interface{}) error {
	start := time.Now()
	err := c.doGetJSON(ctx, url, dest)

	metrics.MetadataRequestDuration.WithLabelValues(c.name, operation).Observe(time.Since(start).Seconds())
	metrics.MetadataRequestsTotal.WithLabelValues(c.name, operation, requestOutcome(err)).Inc()
	return err
}

func (c *httpClient) doGetJSON(ctx context.Context, url string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: unexpected status %d", c.name, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

func requestOutcome(err error) string {
	switch {
	case err == nil:
		return "hit"
	case errors.Is(err, ErrNotFound):
		return "miss"
	default:
		return "error"
	}
}
