package api

import (
	"log/slog"
	"net/http"
)

type CountriesHandler struct {
	agg    Aggregator
	logger *slog.Logger
}

func NewCountriesHandler(agg Aggregator, logger *slog.Logger) *CountriesHandler {
	return &CountriesHandler{agg: agg, logger: logger}
}

func (h *CountriesHandler) List(w http.ResponseWriter, r *http.Request) {
	countries, status, err := h.agg.Countries(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list countries failed", "category", "API_CALL", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   "Failed to fetch country list",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"count":        len(countries),
		"countries":    countries,
		"cache_status": status,
	})
}
