package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/activity"
	"github.com/MikeSquared-Agency/Compass/internal/aggregator"
	"github.com/MikeSquared-Agency/Compass/internal/cache"
	"github.com/MikeSquared-Agency/Compass/internal/exchange"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/metrics"
	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

// Aggregator is the data source the handlers rank from.
type Aggregator interface {
	Fetch(ctx context.Context, names []string) (*aggregator.Result, error)
	Countries(ctx context.Context) ([]restcountries.CompactCountry, cache.Status, error)
	CacheStats(ctx context.Context) cache.Stats
}

type AnalyzeHandler struct {
	agg    Aggregator
	ranker *scoring.Ranker
	hermes hermes.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewAnalyzeHandler(agg Aggregator, h hermes.Client, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		agg:    agg,
		ranker: scoring.NewRanker(logger),
		hermes: h,
		logger: logger,
		now:    time.Now,
	}
}

type AnalyzeRequest struct {
	Countries     json.RawMessage `json:"countries"`
	RiskTolerance string          `json:"risk_tolerance"`
	Duration      string          `json:"duration"`
}

type Performance struct {
	ResponseTimeMs int64       `json:"response_time_ms"`
	CacheStats     cache.Stats `json:"cache_stats"`
}

type AnalyzeResponse struct {
	Success         bool                       `json:"success"`
	AnalysisID      string                     `json:"analysis_id"`
	Data            scoring.RankingResult      `json:"data"`
	FailedCountries []aggregator.FailedCountry `json:"failed_countries,omitempty"`
	Performance     Performance                `json:"performance"`
	ActivityLog     []activity.Event           `json:"activity_log"`
	ExchangeRates   *exchange.Rates            `json:"exchange_rates,omitempty"`
}

// validate returns the de-duplicated, trimmed country names or the list of
// problems with the request.
func (req *AnalyzeRequest) validate() ([]string, []string) {
	var errs []string
	var names []string

	var raw []interface{}
	if len(req.Countries) == 0 || json.Unmarshal(req.Countries, &raw) != nil || raw == nil {
		errs = append(errs, "countries must be an array")
	} else if len(raw) == 0 {
		errs = append(errs, "At least 1 country is required")
	} else {
		seen := make(map[string]bool, len(raw))
		valid := true
		for _, v := range raw {
			s, ok := v.(string)
			s = strings.TrimSpace(s)
			if !ok || s == "" {
				valid = false
				continue
			}
			key := strings.ToLower(s)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, s)
		}
		if !valid {
			errs = append(errs, "All country entries must be non-empty strings")
		}
	}

	if !scoring.RiskTolerance(strings.ToLower(strings.TrimSpace(req.RiskTolerance))).Valid() {
		errs = append(errs, fmt.Sprintf("risk_tolerance must be one of: %s, %s, %s", scoring.RiskLow, scoring.RiskModerate, scoring.RiskHigh))
	}
	if !scoring.Duration(strings.ToLower(strings.TrimSpace(req.Duration))).Valid() {
		errs = append(errs, fmt.Sprintf("duration must be one of: %s, %s", scoring.DurationShortTerm, scoring.DurationLongTerm))
	}
	return names, errs
}

func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.AnalysesTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"errors":  []string{"invalid request body"},
		})
		return
	}
	names, errs := req.validate()
	if len(errs) > 0 {
		metrics.AnalysesTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"errors":  errs,
		})
		return
	}

	collector := activity.NewCollector(slog.LevelInfo)
	ctx := activity.WithCollector(r.Context(), collector)
	analysisID := uuid.New().String()

	h.logger.InfoContext(ctx, fmt.Sprintf("Starting analysis for %d countries", len(names)),
		"category", "ANALYZE",
		"analysis_id", analysisID,
		"countries", names,
		"risk_tolerance", req.RiskTolerance,
		"duration", req.Duration,
	)

	res, err := h.agg.Fetch(ctx, names)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		h.logger.ErrorContext(ctx, "analysis failed", "category", "ANALYZE", "analysis_id", analysisID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Internal server error during analysis",
			"details": err.Error(),
		})
		return
	}
	if len(res.Entries) == 0 {
		metrics.AnalysesTotal.WithLabelValues("not_found").Inc()
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success":          false,
			"error":            "None of the specified countries could be found",
			"failed_countries": res.Failed,
		})
		return
	}

	result := h.ranker.Rank(ctx, res.Entries, req.RiskTolerance, req.Duration)
	for _, rc := range result.Rankings {
		if rc.CompositeScore != nil {
			metrics.CompositeScore.Observe(*rc.CompositeScore)
		}
	}

	elapsed := h.now().Sub(start).Milliseconds()
	h.logger.InfoContext(ctx, fmt.Sprintf("Analysis completed in %dms", elapsed),
		"category", "ANALYZE",
		"analysis_id", analysisID,
		"total_countries", len(names),
		"successful_countries", len(res.Entries),
		"failed_countries", len(res.Failed),
	)
	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	h.publishCompleted(ctx, analysisID, result, len(res.Failed), elapsed)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Success:         true,
		AnalysisID:      analysisID,
		Data:            result,
		FailedCountries: res.Failed,
		Performance: Performance{
			ResponseTimeMs: elapsed,
			CacheStats:     h.agg.CacheStats(ctx),
		},
		ActivityLog:   collector.Events(),
		ExchangeRates: res.ExchangeRates,
	})
}

func (h *AnalyzeHandler) publishCompleted(ctx context.Context, id string, result scoring.RankingResult, failed int, elapsedMs int64) {
	if h.hermes == nil {
		return
	}
	ev := hermes.AnalysisCompletedEvent{
		AnalysisID:    id,
		FailedCount:   failed,
		RiskTolerance: string(result.Metadata.RiskTolerance),
		Duration:      string(result.Metadata.Duration),
		Weights: map[string]float64{
			"travel_risk":   result.Weights.TravelRisk,
			"health_infra":  result.Weights.HealthInfra,
			"env_stability": result.Weights.EnvStability,
		},
		ResponseTimeMs: elapsedMs,
		Timestamp:      result.Metadata.AnalyzedAt,
	}
	for _, rc := range result.Rankings {
		ev.Countries = append(ev.Countries, rc.CountryName)
	}
	if len(result.Rankings) > 0 {
		ev.TopCountry = result.Rankings[0].CountryName
		ev.TopScore = result.Rankings[0].CompositeScore
	}
	if err := h.hermes.Publish(hermes.SubjectAnalysisCompleted(id), ev); err != nil {
		h.logger.WarnContext(ctx, "publish analysis event failed", "analysis_id", id, "error", err)
	}
}
