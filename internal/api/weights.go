package api

import (
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

type weightsResponse struct {
	RiskTolerance scoring.RiskTolerance `json:"risk_tolerance"`
	Duration      scoring.Duration      `json:"duration"`
	Weights       scoring.Weights       `json:"weights"`
	Explanation   string                `json:"explanation"`
}

// Weights shows the category weights an analysis would use. Missing
// parameters take the defaults; unknown values are rejected.
func Weights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawRisk := strings.TrimSpace(q.Get("risk_tolerance"))
	rawDur := strings.TrimSpace(q.Get("duration"))

	var errs []string
	if rawRisk != "" && !scoring.RiskTolerance(strings.ToLower(rawRisk)).Valid() {
		errs = append(errs, "risk_tolerance must be one of: low, moderate, high")
	}
	if rawDur != "" && !scoring.Duration(strings.ToLower(rawDur)).Valid() {
		errs = append(errs, "duration must be one of: short-term, long-term")
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "errors": errs})
		return
	}

	rt := scoring.ParseRiskTolerance(rawRisk)
	dur := scoring.ParseDuration(rawDur)
	writeJSON(w, http.StatusOK, weightsResponse{
		RiskTolerance: rt,
		Duration:      dur,
		Weights:       scoring.WeightsFor(rt, dur),
		Explanation:   explainWeights(rt, dur),
	})
}

func explainWeights(rt scoring.RiskTolerance, dur scoring.Duration) string {
	var b strings.Builder
	switch rt {
	case scoring.RiskLow:
		b.WriteString("Low risk tolerance emphasises travel safety.")
	case scoring.RiskHigh:
		b.WriteString("High risk tolerance de-emphasises travel risk in favour of healthcare and environment.")
	default:
		b.WriteString("Moderate risk tolerance balances all three categories.")
	}
	if dur == scoring.DurationLongTerm {
		b.WriteString(" Long-term stays shift weight toward healthcare infrastructure.")
	} else {
		b.WriteString(" Short-term trips shift weight toward travel risk and current conditions.")
	}
	return b.String()
}
