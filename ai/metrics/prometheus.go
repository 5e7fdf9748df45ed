// Package metrics provides Prometheus metrics export for the AI modules.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports routing and agent execution metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	routingDecisions *prometheus.CounterVec
	routingScore     *prometheus.HistogramVec

	agentRuns    *prometheus.CounterVec
	agentLatency *prometheus.HistogramVec

	chatTurns  prometheus.Counter
	chatActive prometheus.Gauge

	summaryRegens *prometheus.CounterVec

	toolCalls   *prometheus.CounterVec
	toolLatency *prometheus.HistogramVec
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default exporter configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.routingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "routing_decisions_total",
			Help:      "Total routing decisions by selected agent and outcome",
		},
		[]string{"agent", "outcome"},
	)

	e.routingScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "routing_confidence",
			Help:      "Confidence score of the winning routing candidate",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"agent"},
	)

	e.agentRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "agent_runs_total",
			Help:      "Total agent executions by agent and status",
		},
		[]string{"agent", "status"},
	)

	e.agentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "agent_latency_seconds",
			Help:      "Agent execution latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"agent"},
	)

	e.chatTurns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "chat_turns_total",
			Help:      "Total chat turns processed",
		},
	)

	e.chatActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "chat_active",
			Help:      "Number of chat requests currently in flight",
		},
	)

	e.summaryRegens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "summary_regenerations_total",
			Help:      "Total conversation summary regenerations by source",
		},
		[]string{"source"},
	)

	e.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "tool_calls_total",
			Help:      "Total ML tool invocations by tool and status",
		},
		[]string{"tool", "status"},
	)

	e.toolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "videoscope",
			Subsystem: "ai",
			Name:      "tool_latency_seconds",
			Help:      "ML tool invocation latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"tool"},
	)

	registry.MustRegister(
		e.routingDecisions,
		e.routingScore,
		e.agentRuns,
		e.agentLatency,
		e.chatTurns,
		e.chatActive,
		e.summaryRegens,
		e.toolCalls,
		e.toolLatency,
	)

	return e
}

// RecordRoutingDecision records one classifier decision.
// outcome is one of "dispatched", "clarify" or "override".
func (e *Exporter) RecordRoutingDecision(agent, outcome string, score float64) {
	e.routingDecisions.WithLabelValues(agent, outcome).Inc()
	if score > 0 {
		e.routingScore.WithLabelValues(agent).Observe(score)
	}
}

// RecordAgentRun records one agent execution.
func (e *Exporter) RecordAgentRun(agent string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.agentRuns.WithLabelValues(agent, status).Inc()
	e.agentLatency.WithLabelValues(agent).Observe(latency.Seconds())
}

// RecordChatTurn records one completed chat turn.
func (e *Exporter) RecordChatTurn() {
	e.chatTurns.Inc()
}

// ChatStarted marks a chat request as in flight.
func (e *Exporter) ChatStarted() {
	e.chatActive.Inc()
}

// ChatFinished marks a chat request as completed.
func (e *Exporter) ChatFinished() {
	e.chatActive.Dec()
}

// RecordSummaryRegen records a conversation summary regeneration.
func (e *Exporter) RecordSummaryRegen(source string) {
	e.summaryRegens.WithLabelValues(source).Inc()
}

// RecordToolCall records one ML tool invocation.
func (e *Exporter) RecordToolCall(tool string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.toolCalls.WithLabelValues(tool, status).Inc()
	e.toolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
