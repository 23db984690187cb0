// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RunsTotal tracks completed bot runs by platform and outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_runs_total",
			Help: "Total bot runs by platform and outcome",
		},
		[]string{"platform", "outcome"},
	)

	// RunConfidence tracks the evaluator confidence of completed runs.
	RunConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_run_confidence",
			Help:    "Evaluator confidence of completed runs",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		},
		[]string{"platform"},
	)

	// RunDuration tracks bot run duration.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_run_duration_seconds",
			Help:    "Bot run duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"platform"},
	)

	// OracleCallsTotal tracks oracle invocations per run outcome.
	OracleCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_calls_total",
			Help: "Total language model oracle calls",
		},
		[]string{"provider", "status"},
	)

	// ToolCallsTotal tracks tool dispatches by tool name and status.
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total tool dispatches",
		},
		[]string{"tool", "status"},
	)

	// IdentityResolutionsTotal tracks identity resolutions by result.
	// Results: cache_hit, linked, no_identity.
	IdentityResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_resolutions_total",
			Help: "Total identity resolutions by result",
		},
		[]string{"platform", "result"},
	)

	// DisambiguationScore tracks disambiguation confidence scores.
	DisambiguationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "identity_disambiguation_score",
			Help:    "Confidence scores returned by the disambiguation oracle",
			Buckets: []float64{0, 25, 50, 70, 85, 95, 100},
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordRun records metrics for a completed bot run.
func RecordRun(platform, outcome string, confidence, duration float64) {
	RunsTotal.WithLabelValues(platform, outcome).Inc()
	RunConfidence.WithLabelValues(platform).Observe(confidence)
	RunDuration.WithLabelValues(platform).Observe(duration)
}

// RecordToolCall records a tool dispatch.
func RecordToolCall(tool, status string) {
	ToolCallsTotal.WithLabelValues(tool, status).Inc()
}

// RecordResolution records an identity resolution result.
func RecordResolution(platform, result string) {
	IdentityResolutionsTotal.WithLabelValues(platform, result).Inc()
}
