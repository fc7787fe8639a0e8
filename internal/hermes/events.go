package hermes

import "time"

type AnalysisCompletedEvent struct {
	AnalysisID     string             `json:"analysis_id"`
	Countries      []string           `json:"countries"`
	FailedCount    int                `json:"failed_count"`
	RiskTolerance  string             `json:"risk_tolerance"`
	Duration       string             `json:"duration"`
	Weights        map[string]float64 `json:"weights"`
	TopCountry     string             `json:"top_country,omitempty"`
	TopScore       *float64           `json:"top_score,omitempty"`
	ResponseTimeMs int64              `json:"response_time_ms"`
	Timestamp      time.Time          `json:"timestamp"`
}

type CountryPartialEvent struct {
	Country   string    `json:"country"`
	Errors    []string  `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

type CacheWarmedEvent struct {
	Countries  int       `json:"countries"`
	Exchange   bool      `json:"exchange"`
	Errors     []string  `json:"errors,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// CacheRefreshRequest asks running instances to re-warm the cache.
type CacheRefreshRequest struct {
	Reason string `json:"reason,omitempty"`
}
