package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"component", "reason"},
	)

	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache lookups by outcome",
		},
		[]string{"cache", "outcome"},
	)

	// Domain Metrics
	SessionCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focus_session_completions_total",
			Help: "Total number of completed focus sessions",
		},
		[]string{"category"},
	)

	DecaySweepRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leaderboard_decay_sweep_records",
			Help:    "Number of stats records decayed per sweep",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// TrackDBOperation returns a timer for a database operation; callers defer
// ObserveDuration on it.
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, collection))
}

func TrackError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func TrackCacheOperation(cache string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheOperationsTotal.WithLabelValues(cache, outcome).Inc()
}

func TrackSessionCompletion(category string) {
	SessionCompletionsTotal.WithLabelValues(category).Inc()
}

func TrackDecaySweep(updated int64) {
	DecaySweepRecords.Observe(float64(updated))
}
