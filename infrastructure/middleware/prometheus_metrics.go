// Package middleware provides cross-cutting concerns for the voting
// service, currently Prometheus-backed metrics collection.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/palate-app/palate/internal/ports"
)

// PrometheusMetrics implements ports.MetricsCollector with Prometheus,
// covering aggregation runs, suggestion fallback calls, and LLM usage.
type PrometheusMetrics struct {
	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	stateGauges      *prometheus.GaugeVec
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the voting metrics in the default
// Prometheus registry. Call at most once per process.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		operationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "palate_operation_duration_seconds",
				Help:    "Latency of aggregation runs, suggestion calls, and LLM requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "trigger", "outcome"},
		),
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palate_operations_total",
				Help: "Count of voting service operations by status.",
			},
			[]string{"operation", "status"},
		),
		stateGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "palate_state",
				Help: "Current state values such as open sessions.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records an operation duration. The trigger and outcome
// labels default to "none" when absent so cardinality stays bounded.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.operationLatency.WithLabelValues(
		operation,
		labelOr(labels, "trigger", "none"),
		labelOr(labels, "outcome", "none"),
	).Observe(duration.Seconds())
}

// RecordCounter increments an operation counter.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	pm.operationCounter.WithLabelValues(metric, labelOr(labels, "status", "success")).Add(value)
}

// RecordGauge sets a state gauge.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, _ map[string]string) {
	pm.stateGauges.WithLabelValues(metric).Set(value)
}

func labelOr(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}
