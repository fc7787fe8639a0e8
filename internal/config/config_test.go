package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var compassEnv = []string{
	"COMPASS_PORT", "COMPASS_METRICS_PORT", "COMPASS_RATE_LIMIT_PER_MINUTE", "COMPASS_ADMIN_TOKEN",
	"COMPASS_CACHE_BACKEND", "COMPASS_CACHE_TTL_MINUTES", "COMPASS_REDIS_ADDR",
	"COMPASS_REDIS_PASSWORD", "COMPASS_HERMES_URL", "COMPASS_WARMUP_ENABLED",
	"COMPASS_WARMUP_SCHEDULE", "COMPASS_AGGREGATOR_CONCURRENCY",
	"COMPASS_LOG_LEVEL", "COMPASS_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range compassEnv {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RateLimitPerMinute != 100 {
		t.Errorf("expected rate limit 100, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Upstreams.RestCountries.BaseURL != "https://restcountries.com/v3.1" {
		t.Errorf("unexpected restcountries URL %s", cfg.Upstreams.RestCountries.BaseURL)
	}
	if cfg.Upstreams.Forecast.Timeout() != 10*time.Second {
		t.Errorf("expected forecast timeout 10s, got %v", cfg.Upstreams.Forecast.Timeout())
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected memory cache, got %s", cfg.Cache.Backend)
	}
	if cfg.CacheTTL() != time.Hour {
		t.Errorf("expected cache TTL 1h, got %v", cfg.CacheTTL())
	}
	if cfg.Hermes.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Hermes.URL)
	}
	if !cfg.Warmup.Enabled || cfg.Warmup.Schedule != "@every 30m" {
		t.Errorf("unexpected warmup defaults %+v", cfg.Warmup)
	}
	if cfg.Aggregator.Concurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.Aggregator.Concurrency)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "compass.yaml")
	yaml := `
server:
  port: 9100
cache:
  backend: redis
  ttl_minutes: 15
  redis:
    addr: redis:6379
upstreams:
  news:
    base_url: http://news.test/rss
    timeout_ms: 2500
warmup:
  enabled: false
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port kept, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Cache.Redis.Prefix != "compass:" {
		t.Errorf("expected default redis prefix kept, got %q", cfg.Cache.Redis.Prefix)
	}
	if cfg.CacheTTL() != 15*time.Minute {
		t.Errorf("expected TTL 15m, got %v", cfg.CacheTTL())
	}
	if cfg.Upstreams.News.BaseURL != "http://news.test/rss" || cfg.Upstreams.News.Timeout() != 2500*time.Millisecond {
		t.Errorf("unexpected news upstream %+v", cfg.Upstreams.News)
	}
	if cfg.Warmup.Enabled {
		t.Error("expected warmup disabled")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPASS_PORT", "9000")
	t.Setenv("COMPASS_METRICS_PORT", "9001")
	t.Setenv("COMPASS_RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("COMPASS_ADMIN_TOKEN", "secret-token")
	t.Setenv("COMPASS_CACHE_BACKEND", "redis")
	t.Setenv("COMPASS_REDIS_ADDR", "cache:6379")
	t.Setenv("COMPASS_HERMES_URL", "nats://nats:4222")
	t.Setenv("COMPASS_WARMUP_ENABLED", "false")
	t.Setenv("COMPASS_AGGREGATOR_CONCURRENCY", "3")
	t.Setenv("COMPASS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RateLimitPerMinute != 30 {
		t.Errorf("expected rate limit 30, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "cache:6379" {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	if cfg.Warmup.Enabled {
		t.Error("expected warmup disabled")
	}
	if cfg.Aggregator.Concurrency != 3 {
		t.Errorf("expected concurrency 3, got %d", cfg.Aggregator.Concurrency)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPASS_CACHE_BACKEND", "memcached")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown cache backend")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("COMPASS_PORT=9300\nCOMPASS_LOG_LEVEL=warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COMPASS_LOG_LEVEL", "error")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("expected port from env file, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected existing env to win, got %s", cfg.Logging.Level)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("expected missing env file to be ignored, got %v", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Errorf("expected empty path to be ignored, got %v", err)
	}
}
