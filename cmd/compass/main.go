package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Compass/internal/activity"
	"github.com/MikeSquared-Agency/Compass/internal/aggregator"
	"github.com/MikeSquared-Agency/Compass/internal/api"
	"github.com/MikeSquared-Agency/Compass/internal/cache"
	"github.com/MikeSquared-Agency/Compass/internal/config"
	"github.com/MikeSquared-Agency/Compass/internal/exchange"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/news"
	"github.com/MikeSquared-Agency/Compass/internal/openmeteo"
	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
	"github.com/MikeSquared-Agency/Compass/internal/upstream"
	"github.com/MikeSquared-Agency/Compass/internal/warmup"
	"github.com/MikeSquared-Agency/Compass/internal/wikipedia"
	"github.com/MikeSquared-Agency/Compass/internal/worldbank"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	envPath := flag.String("env", ".env", "path to optional .env file")
	flag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := config.LoadEnvFile(*envPath); err != nil {
		bootLogger.Error("failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cache
	var backend cache.Backend = cache.NewMemoryBackend()
	if cfg.Cache.Backend == "redis" {
		rb := cache.NewRedisBackend(cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err := rb.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, falling back to in-memory cache", "addr", cfg.Cache.Redis.Addr, "error", err)
			_ = rb.Close()
		} else {
			backend = rb
			defer rb.Close()
			logger.Info("connected to redis", "addr", cfg.Cache.Redis.Addr)
		}
	}
	responseCache := cache.New(backend, cfg.CacheTTL(), logger)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Upstream clients
	ups := cfg.Upstreams
	newUpstream := func(name string, u config.UpstreamConfig) *upstream.Client {
		return upstream.New(name, upstream.Options{
			BaseURL:           u.BaseURL,
			Timeout:           u.Timeout(),
			RequestsPerSecond: u.RequestsPerSecond,
			Burst:             u.Burst,
			UserAgent:         ups.UserAgent,
		}, logger)
	}
	clients := aggregator.Clients{
		Countries: restcountries.NewHTTPClient(newUpstream("restcountries", ups.RestCountries)),
		OpenMeteo: openmeteo.NewHTTPClient(newUpstream("openmeteo", ups.Forecast), newUpstream("openmeteo_aqi", ups.AirQuality)),
		WorldBank: worldbank.NewHTTPClient(newUpstream("worldbank", ups.WorldBank)),
		Wikipedia: wikipedia.NewHTTPClient(newUpstream("wikipedia", ups.Wikipedia)),
		News:      news.NewRSSClient(newUpstream("google_news", ups.News)),
		Exchange:  exchange.NewHTTPClient(newUpstream("exchange", ups.Exchange)),
	}

	agg := aggregator.New(clients, responseCache, logger, aggregator.Options{
		Concurrency: cfg.Aggregator.Concurrency,
		Notifier:    hermes.NewPartialNotifier(hermesClient, logger),
	})

	// Cache warmup
	var warmer api.Warmer
	if cfg.Warmup.Enabled {
		w := warmup.New(agg, hermesClient, cfg.Warmup.Schedule, logger)
		if err := w.Start(ctx); err != nil {
			logger.Error("failed to start cache warmup", "error", err)
			os.Exit(1)
		}
		defer w.Stop()
		go w.RunOnce(ctx)
		warmer = w
	}

	// API server
	router := api.NewRouter(agg, hermesClient, api.RouterOptions{
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		AdminToken:         cfg.Server.AdminToken,
		Warmer:             warmer,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

// newLogger builds the process logger. Records also feed any per-request
// activity collector carried in the context.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		base = slog.NewTextHandler(os.Stdout, opts)
	} else {
		base = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(activity.NewHandler(base))
}
