// Package cache is a TTL cache for upstream responses with in-flight
// request deduplication. Failed fetches are never stored.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MikeSquared-Agency/Compass/internal/metrics"
)

const (
	DefaultTTL = 60 * time.Minute

	// FetchTimeout bounds a shared fetch once it no longer follows the
	// caller's context.
	FetchTimeout = 30 * time.Second
)

type Status string

const (
	Hit  Status = "hit"
	Miss Status = "miss"
)

// Backend stores encoded values with an expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Len(ctx context.Context) (int, error)
}

type Stats struct {
	Entries          int   `json:"entries"`
	InflightRequests int64 `json:"inflight_requests"`
}

type Cache struct {
	backend      Backend
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
	inflight     atomic.Int64
	logger       *slog.Logger
}

func New(backend Backend, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{backend: backend, ttl: ttl, fetchTimeout: FetchTimeout, logger: logger}
}

// GetOrFetch returns the cached value for key or runs fetch once for all
// concurrent callers of the same key. Callers that joined an in-flight fetch
// or found a stored value get Hit; the caller that ran fetch gets Miss.
//
// The shared fetch is detached from any single caller's cancellation and
// bounded by FetchTimeout; a caller whose ctx ends stops waiting with its
// own ctx error.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, Status, error) {
	if raw, ok, err := c.backend.Get(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "cache read failed", "category", "CACHE", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.record(ctx, key, Hit)
			return v, Hit, nil
		}
	}
	return load(ctx, c, key, fetch)
}

// Refresh runs fetch regardless of any stored value and replaces it on
// success. A failed refresh leaves the stored value in place.
func Refresh[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, _, err := load(ctx, c, key, fetch)
	return v, err
}

func load[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, Status, error) {
	var zero T

	var ran atomic.Bool
	ch := c.group.DoChan(key, func() (interface{}, error) {
		ran.Store(true)
		c.inflight.Add(1)
		defer c.inflight.Add(-1)

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cache encode %s: %w", key, err)
		}
		if err := c.backend.Set(fctx, key, data, c.ttl); err != nil {
			c.logger.WarnContext(fctx, "cache write failed", "category", "CACHE", "key", key, "error", err)
		}
		return data, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, Miss, ctx.Err()
	}
	if res.Err != nil {
		return zero, Miss, res.Err
	}
	led := ran.Load()
	if res.Shared && !led {
		c.logger.InfoContext(ctx, "joined in-flight request", "category", "CACHE", "key", key)
	}

	var v T
	if err := json.Unmarshal(res.Val.([]byte), &v); err != nil {
		return zero, Miss, fmt.Errorf("cache decode %s: %w", key, err)
	}
	status := Miss
	if !led {
		status = Hit
	}
	c.record(ctx, key, status)
	return v, status, nil
}

func (c *Cache) Stats(ctx context.Context) Stats {
	n, err := c.backend.Len(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "cache stats failed", "category", "CACHE", "error", err)
	}
	return Stats{Entries: n, InflightRequests: c.inflight.Load()}
}

func (c *Cache) record(ctx context.Context, key string, s Status) {
	metrics.CacheLookups.WithLabelValues(string(s)).Inc()
	c.logger.DebugContext(ctx, "cache lookup", "category", "CACHE", "key", key, "status", s)
}
