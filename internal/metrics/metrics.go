package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics for the pipeline
type Metrics struct {
	EntriesLogged   *prometheus.CounterVec
	PatternsTracked *prometheus.CounterVec
	AlertsFired     *prometheus.CounterVec
	FlushDuration   prometheus.Histogram
	BufferSize      prometheus.Gauge
	HealthScore     prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all pipeline metrics on a private registry,
// so repeated construction in tests never double-registers.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		EntriesLogged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_log_entries_total",
				Help: "Total number of log entries recorded",
			},
			[]string{"level", "component"},
		),
		PatternsTracked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_error_patterns_total",
				Help: "Total number of error occurrences tracked by category",
			},
			[]string{"category"},
		),
		AlertsFired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_alerts_fired_total",
				Help: "Total number of alert rule triggers",
			},
			[]string{"rule"},
		),
		FlushDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sentinel_flush_duration_seconds",
				Help:    "Log batch flush latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		BufferSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentinel_log_buffer_entries",
				Help: "Current number of entries held in the log buffer",
			},
		),
		HealthScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentinel_health_score",
				Help: "Most recent overall automation health score",
			},
		),
		registry: registry,
	}

	registry.MustRegister(m.EntriesLogged)
	registry.MustRegister(m.PatternsTracked)
	registry.MustRegister(m.AlertsFired)
	registry.MustRegister(m.FlushDuration)
	registry.MustRegister(m.BufferSize)
	registry.MustRegister(m.HealthScore)

	return m
}

// RecordEntry increments the entry counter
func (m *Metrics) RecordEntry(level, component string) {
	m.EntriesLogged.WithLabelValues(level, component).Inc()
}

// RecordPattern increments the tracked-pattern counter
func (m *Metrics) RecordPattern(category string) {
	m.PatternsTracked.WithLabelValues(category).Inc()
}

// RecordAlert increments the alert trigger counter
func (m *Metrics) RecordAlert(rule string) {
	m.AlertsFired.WithLabelValues(rule).Inc()
}

// RecordFlush records one flush latency observation
func (m *Metrics) RecordFlush(seconds float64) {
	m.FlushDuration.Observe(seconds)
}

// SetBufferSize updates the buffer occupancy gauge
func (m *Metrics) SetBufferSize(n int) {
	m.BufferSize.Set(float64(n))
}

// SetHealthScore updates the health score gauge
func (m *Metrics) SetHealthScore(score int) {
	m.HealthScore.Set(float64(score))
}

// Handler returns the Prometheus scrape handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
