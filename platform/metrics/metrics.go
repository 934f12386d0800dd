// Package metrics provides Prometheus metrics for the lead intelligence engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SummaryResolutionsTotal counts resolved summaries by the branch that produced them.
	SummaryResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadintel",
			Subsystem: "summary",
			Name:      "resolutions_total",
			Help:      "Total number of lead summaries resolved, by source branch",
		},
		[]string{"source"},
	)

	// TextGenerationDuration tracks outbound text-generation latency by outcome.
	TextGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leadintel",
			Subsystem: "textgen",
			Name:      "request_duration_seconds",
			Help:      "Duration of text-generation requests in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		},
		[]string{"outcome"},
	)

	// ScoreTotal records the distribution of computed health scores.
	ScoreTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "leadintel",
			Subsystem: "score",
			Name:      "total",
			Help:      "Distribution of computed lead health scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
	)

	// DegradedFetchesTotal counts data sources replaced by empty collections.
	DegradedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadintel",
			Subsystem: "fetch",
			Name:      "degraded_total",
			Help:      "Total number of failed data fetches that degraded a computation",
		},
		[]string{"source"},
	)

	// CacheLookupsTotal counts cache lookups by cache name and result.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadintel",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	// DashboardRefreshesTotal counts background dashboard snapshot refreshes.
	DashboardRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadintel",
			Subsystem: "dashboard",
			Name:      "refreshes_total",
			Help:      "Total number of dashboard snapshot refreshes by status",
		},
		[]string{"status"},
	)
)
