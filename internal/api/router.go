package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Compass/internal/hermes"
)

type RouterOptions struct {
	RateLimitPerMinute int
	AdminToken         string
	// Warmer is optional; nil disables the warm endpoint.
	Warmer Warmer
}

func NewRouter(agg Aggregator, h hermes.Client, opts RouterOptions, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(opts.RateLimitPerMinute))

	analyze := NewAnalyzeHandler(agg, h, logger)
	countries := NewCountriesHandler(agg, logger)
	admin := NewAdminHandler(agg, opts.Warmer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", analyze.Analyze)
		r.Get("/countries", countries.List)
		r.Get("/weights", Weights)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(opts.AdminToken))
			r.Get("/admin/cache", admin.CacheStats)
			r.Post("/admin/cache/warm", admin.WarmCache)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
