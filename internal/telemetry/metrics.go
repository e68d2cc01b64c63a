// Package telemetry exposes Prometheus metrics for the serving surfaces.
// Engine packages stay instrumentation-free; the server and stream layers
// record here around their engine calls.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for progression evaluations.
type Metrics struct {
	// Evaluation endpoints
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec

	// State machine
	TransitionsTotal *prometheus.CounterVec

	// Risk assessments
	RiskLevelsTotal *prometheus.CounterVec

	// Stream boundary
	StreamEventsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the progression metrics. sync.Once
// guards the default registry against duplicate registration panics when
// both the server and the stream ask for metrics.
//
// Metrics:
//   - afriprog_evaluations_total{operation} - evaluations served per operation
//   - afriprog_evaluation_duration_seconds{operation} - evaluation latency
//   - afriprog_transitions_total{event,outcome} - transition attempts by result
//   - afriprog_risk_levels_total{level} - risk assessments by level
//   - afriprog_stream_events_total{result} - pushed progress events by result
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			EvaluationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "afriprog_evaluations_total",
					Help: "Total number of progression evaluations served",
				},
				[]string{"operation"}, // "validate", "retake", "risk", "scan"
			),

			EvaluationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "afriprog_evaluation_duration_seconds",
					Help:    "Duration of progression evaluations in seconds",
					Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
				},
				[]string{"operation"},
			),

			TransitionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "afriprog_transitions_total",
					Help: "Total number of status transition attempts",
				},
				[]string{"event", "outcome"}, // outcome: "applied" or "refused"
			),

			RiskLevelsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "afriprog_risk_levels_total",
					Help: "Total number of risk assessments by resulting level",
				},
				[]string{"level"},
			),

			StreamEventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "afriprog_stream_events_total",
					Help: "Total number of pushed progress events by result",
				},
				[]string{"result"}, // "applied", "rejected"
			),
		}
	})

	return globalMetrics
}

// RecordEvaluation records one served evaluation with its duration.
func (m *Metrics) RecordEvaluation(operation string, durationSeconds float64) {
	m.EvaluationsTotal.WithLabelValues(operation).Inc()
	m.EvaluationDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordTransition records a transition attempt and its outcome.
func (m *Metrics) RecordTransition(event, outcome string) {
	m.TransitionsTotal.WithLabelValues(event, outcome).Inc()
}

// RecordRiskLevel records the level an assessment resolved to.
func (m *Metrics) RecordRiskLevel(level string) {
	m.RiskLevelsTotal.WithLabelValues(level).Inc()
}

// RecordStreamEvent records the handling result of a pushed progress event.
func (m *Metrics) RecordStreamEvent(result string) {
	m.StreamEventsTotal.WithLabelValues(result).Inc()
}
