// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostOperations counts post API operations by operation and outcome.
	PostOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_post_operations_total",
		Help: "Total number of post operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostEventsPublished counts post lifecycle events by type and result.
	PostEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_post_events_published_total",
		Help: "Total number of post lifecycle events published",
	}, []string{"event", "result"})
)

// RecordPostOperation increments the operation counter. outcome is "ok" when
// err is nil and "error" otherwise.
func RecordPostOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PostOperations.WithLabelValues(operation, outcome).Inc()
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
