package api

import (
	"context"
	"net/http"

	"github.com/MikeSquared-Agency/Compass/internal/warmup"
)

// Warmer pre-fetches shared upstream data into the cache.
type Warmer interface {
	RunOnce(ctx context.Context) warmup.Report
}

type AdminHandler struct {
	agg    Aggregator
	warmer Warmer
}

func NewAdminHandler(agg Aggregator, w Warmer) *AdminHandler {
	return &AdminHandler{agg: agg, warmer: w}
}

func (h *AdminHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agg.CacheStats(r.Context()))
}

func (h *AdminHandler) WarmCache(w http.ResponseWriter, r *http.Request) {
	if h.warmer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "cache warmup not configured"})
		return
	}
	rep := h.warmer.RunOnce(r.Context())
	status := http.StatusOK
	if len(rep.Errors) > 0 {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, rep)
}
