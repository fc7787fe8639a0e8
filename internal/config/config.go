package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upstreams  UpstreamsConfig  `yaml:"upstreams"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Cache      CacheConfig      `yaml:"cache"`
	Hermes     HermesConfig     `yaml:"hermes"`
	Warmup     WarmupConfig     `yaml:"warmup"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	AdminToken         string `yaml:"admin_token"`
}

type UpstreamConfig struct {
	BaseURL           string  `yaml:"base_url"`
	TimeoutMs         int     `yaml:"timeout_ms"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutMs) * time.Millisecond
}

type UpstreamsConfig struct {
	RestCountries UpstreamConfig `yaml:"restcountries"`
	Forecast      UpstreamConfig `yaml:"forecast"`
	AirQuality    UpstreamConfig `yaml:"air_quality"`
	WorldBank     UpstreamConfig `yaml:"worldbank"`
	Wikipedia     UpstreamConfig `yaml:"wikipedia"`
	News          UpstreamConfig `yaml:"news"`
	Exchange      UpstreamConfig `yaml:"exchange"`
	UserAgent     string         `yaml:"user_agent"`
}

type AggregatorConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type CacheConfig struct {
	Backend    string      `yaml:"backend"`
	TTLMinutes int         `yaml:"ttl_minutes"`
	Redis      RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type WarmupConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 100,
		},
		Upstreams: UpstreamsConfig{
			RestCountries: UpstreamConfig{BaseURL: "https://restcountries.com/v3.1", TimeoutMs: 10000, RequestsPerSecond: 10, Burst: 10},
			Forecast:      UpstreamConfig{BaseURL: "https://api.open-meteo.com/v1", TimeoutMs: 10000, RequestsPerSecond: 10, Burst: 10},
			AirQuality:    UpstreamConfig{BaseURL: "https://air-quality-api.open-meteo.com/v1", TimeoutMs: 10000, RequestsPerSecond: 10, Burst: 10},
			WorldBank:     UpstreamConfig{BaseURL: "https://api.worldbank.org/v2", TimeoutMs: 10000, RequestsPerSecond: 5, Burst: 5},
			Wikipedia:     UpstreamConfig{BaseURL: "https://en.wikipedia.org/api/rest_v1", TimeoutMs: 8000, RequestsPerSecond: 5, Burst: 5},
			News:          UpstreamConfig{BaseURL: "https://news.google.com/rss", TimeoutMs: 8000, RequestsPerSecond: 2, Burst: 4},
			Exchange:      UpstreamConfig{BaseURL: "https://open.er-api.com/v6", TimeoutMs: 8000, RequestsPerSecond: 1, Burst: 2},
			UserAgent:     "Compass/1.0 (country-ranking)",
		},
		Aggregator: AggregatorConfig{
			Concurrency: 8,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTLMinutes: 60,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "compass:",
			},
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Warmup: WarmupConfig{
			Enabled:  true,
			Schedule: "@every 30m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Server.Port <= 0 || c.Server.MetricsPort <= 0 {
		return errors.New("config: ports must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COMPASS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("COMPASS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("COMPASS_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("COMPASS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("COMPASS_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("COMPASS_CACHE_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLMinutes = n
		}
	}
	if v := os.Getenv("COMPASS_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("COMPASS_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("COMPASS_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("COMPASS_WARMUP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Warmup.Enabled = b
		}
	}
	if v := os.Getenv("COMPASS_WARMUP_SCHEDULE"); v != "" {
		cfg.Warmup.Schedule = v
	}
	if v := os.Getenv("COMPASS_AGGREGATOR_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Aggregator.Concurrency = n
		}
	}
	if v := os.Getenv("COMPASS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COMPASS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
