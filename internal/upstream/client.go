// Package upstream holds the HTTP plumbing shared by the public data API clients.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/MikeSquared-Agency/Compass/internal/metrics"
)

const defaultUserAgent = "Compass/1.0 (country-ranking)"

// Options configures one upstream client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// StatusError is returned when an upstream answers with status >= 400.
type StatusError struct {
	Upstream   string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s GET %s: %d %s", e.Upstream, e.Path, e.StatusCode, e.Body)
}

// Client performs rate limited GET requests against a single upstream.
type Client struct {
	name       string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func New(name string, opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &Client{
		name:       name,
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, opts.Burst),
		logger:     logger,
	}
}

func (c *Client) Name() string { return c.name }

// Get fetches path relative to the base URL and returns the body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limit wait canceled: %w", c.name, err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	body, err := c.do(ctx, path, target)
	elapsed := time.Since(start)

	metrics.UpstreamRequestDuration.WithLabelValues(c.name, strconv.FormatBool(err == nil)).Observe(elapsed.Seconds())
	if err != nil {
		c.logger.WarnContext(ctx, "upstream call failed",
			"category", "API_CALL",
			"upstream", c.name,
			"path", path,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}
	c.logger.InfoContext(ctx, "upstream call",
		"category", "API_CALL",
		"upstream", c.name,
		"path", path,
		"duration_ms", elapsed.Milliseconds(),
	)
	return body, nil
}

// GetJSON fetches path and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, v interface{}) error {
	body, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s decode %s: %w", c.name, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s GET %s: %w", c.name, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{Upstream: c.name, Path: path, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
