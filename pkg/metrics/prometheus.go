package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal     *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
	phaseLatency  *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analystdesk_runs_total",
				Help: "Total orchestration runs by outcome",
			},
			[]string{"outcome"},
		),
		providerCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analystdesk_provider_calls_total",
				Help: "Provider invocations by result",
			},
			[]string{"provider", "result"},
		),
		phaseLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analystdesk_phase_duration_seconds",
				Help:    "Duration of orchestration phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
	}
}

// RecordRun records a completed run with its outcome.
func (r *Recorder) RecordRun(outcome string) {
	r.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordProviderCall records one provider invocation result (ok, failed, skipped).
func (r *Recorder) RecordProviderCall(providerID, result string) {
	r.providerCalls.WithLabelValues(providerID, result).Inc()
}

// RecordPhaseLatency records phase duration in seconds.
func (r *Recorder) RecordPhaseLatency(phase string, seconds float64) {
	r.phaseLatency.WithLabelValues(phase).Observe(seconds)
}
