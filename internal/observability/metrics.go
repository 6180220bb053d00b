package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScreeningVerdicts counts screening outcomes by the stage that decided them.
	ScreeningVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_screening_verdicts_total",
		Help: "Screening verdicts by deciding stage and outcome",
	}, []string{"stage", "outcome"})

	// ClassifierRequests counts external classifier calls by adapter and result.
	ClassifierRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_classifier_requests_total",
		Help: "External classifier requests by adapter and result",
	}, []string{"adapter", "result"})

	// ClassifierLatency records external classifier latency by adapter.
	ClassifierLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warden_classifier_latency_seconds",
		Help:    "External classifier latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"adapter"})

	// ReportsFiled counts report submissions by result (accepted, duplicate, rejected).
	ReportsFiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_reports_filed_total",
		Help: "Report submissions by result",
	}, []string{"result"})

	// ContentConcealed counts content items concealed after crossing the report threshold.
	ContentConcealed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_content_concealed_total",
		Help: "Content items concealed by reason",
	}, []string{"reason"})

	// PenaltiesIssued counts penalties by kind.
	PenaltiesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_penalties_issued_total",
		Help: "Penalties issued by kind",
	}, []string{"kind"})

	// FalseReportsRecorded counts false-report increments applied to reporters.
	FalseReportsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warden_false_reports_recorded_total",
		Help: "False-report increments applied to reporter trust standings",
	})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warden_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnectionsTotal is the gauge of admin feed connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "warden_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveClassifierCall records one classifier request and its latency.
func ObserveClassifierCall(adapter string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ClassifierRequests.WithLabelValues(adapter, result).Inc()
	ClassifierLatency.WithLabelValues(adapter).Observe(time.Since(start).Seconds())
}
