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

	// ChatTurnsTotal counts answered chat messages by selection category.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Chat turns answered, by selection category",
		},
		[]string{"category", "personalized"},
	)

	// ChatSelectDuration tracks time spent choosing and personalizing a reply.
	ChatSelectDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_response_duration_seconds",
			Help:    "Time to build a chat reply",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// CacheRequestsTotal counts cache lookups by cache name and result.
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	// AnalysesTotal counts resume analyses by outcome.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_analyses_total",
			Help: "Resume analyses by outcome",
		},
		[]string{"status"},
	)

	// AnalysisDuration tracks end-to-end analysis time.
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_analysis_duration_seconds",
			Help:    "Resume analysis duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30, 45},
		},
		[]string{"status"},
	)

	// ExtractionFailuresTotal counts text extraction failures by reason.
	ExtractionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_extraction_failures_total",
			Help: "Text extraction failures by reason",
		},
		[]string{"reason"},
	)

	// EventsPublishedTotal counts JetStream publishes by subject kind and result.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published to JetStream",
		},
		[]string{"kind", "result"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordChatTurn records one answered chat message.
func RecordChatTurn(category string, personalized bool, seconds float64) {
	p := "false"
	if personalized {
		p = "true"
	}
	ChatTurnsTotal.WithLabelValues(category, p).Inc()
	ChatSelectDuration.Observe(seconds)
}

// IncCacheRequest records a cache hit or miss.
func IncCacheRequest(cache, result string) {
	CacheRequestsTotal.WithLabelValues(cache, result).Inc()
}

// RecordAnalysis records the outcome of a resume analysis.
func RecordAnalysis(status string, seconds float64) {
	AnalysesTotal.WithLabelValues(status).Inc()
	AnalysisDuration.WithLabelValues(status).Observe(seconds)
}

// IncExtractionFailure records a failed text extraction.
func IncExtractionFailure(reason string) {
	ExtractionFailuresTotal.WithLabelValues(reason).Inc()
}

// IncEventPublished records a publish attempt.
func IncEventPublished(kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	EventsPublishedTotal.WithLabelValues(kind, result).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
