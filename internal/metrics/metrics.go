package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compass_analyses_total",
			Help: "Total number of analyze requests by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compass_upstream_request_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream", "success"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compass_cache_lookups_total",
			Help: "Cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	CompositeScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compass_composite_score",
			Help:    "Distribution of composite country scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)
)
