package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventrate_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventrate_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RatingSubmissions counts rating writes by outcome (created or updated).
	RatingSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventrate_rating_submissions_total",
		Help: "Total number of rating submissions by outcome",
	}, []string{"outcome"})

	// DuplicateChecks counts duplicate-detection requests by result.
	DuplicateChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventrate_duplicate_checks_total",
		Help: "Total number of duplicate checks by result (match or clean)",
	}, []string{"result"})

	// EventRegistrations counts RSVP attempts by outcome.
	EventRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventrate_event_registrations_total",
		Help: "Total number of event registration attempts by outcome",
	}, []string{"outcome"})

	// AuthFailures counts failed authentication attempts by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventrate_auth_failures_total",
		Help: "Total number of failed authentication attempts by reason",
	}, []string{"reason"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
