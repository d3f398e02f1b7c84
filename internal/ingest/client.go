// Package ingest polls the service health dashboard feed, runs each notice
// through the timeline parser and stores the results.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/statusgarden/availability/internal/domain"
)

const defaultClientTimeout = 30 * time.Second

// ClientConfig holds feed client configuration.
type ClientConfig struct {
	// SourceURL is the dashboard data document.
	SourceURL string
	// RequestsPerSecond caps outbound requests. Zero means one per second.
	RequestsPerSecond float64
	// Timeout bounds a single fetch.
	Timeout time.Duration
}

// Client fetches the dashboard feed over HTTP.
type Client struct {
	sourceURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new feed client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultClientTimeout
	}

	return &Client{
		sourceURL:  cfg.SourceURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Fetch downloads and decodes the feed. It blocks on the rate limiter, so
// back-to-back runs cannot hammer the dashboard.
func (c *Client) Fetch(ctx context.Context) (*domain.Feed, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	var feed domain.Feed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return &feed, nil
}
