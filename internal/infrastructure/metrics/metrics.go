package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lkr_rates"

// Metrics holds the collectors for tool calls and rate fetches
type Metrics struct {
	registry *prometheus.Registry

	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec
	RateFetchesTotal *prometheus.CounterVec
	RateFetchLatency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool invocations by tool name and outcome",
			},
			[]string{"tool", "status"},
		),
		ToolCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Time spent handling a tool invocation",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
			[]string{"tool"},
		),
		RateFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_fetches_total",
				Help:      "Rate source attempts by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		RateFetchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rate_fetch_duration_seconds",
				Help:      "Latency of a single rate source attempt",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}

	m.registry.MustRegister(
		m.ToolCallsTotal,
		m.ToolCallDuration,
		m.RateFetchesTotal,
		m.RateFetchLatency,
		collectors.NewGoCollector(),
	)

	return m
}

// ObserveToolCall records one dispatcher invocation. Safe on a nil receiver.
func (m *Metrics) ObserveToolCall(tool, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveRateFetch records one attempt against a rate source. Safe on a nil receiver.
func (m *Metrics) ObserveRateFetch(source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RateFetchesTotal.WithLabelValues(source, outcome).Inc()
	m.RateFetchLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
