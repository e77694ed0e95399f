// Package telemetry exposes Prometheus metrics for a running campaign:
// counters for scenario outcomes and a histogram for instance wall-clock
// duration, so a long batch run can be watched from a /metrics endpoint.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the counters/histograms one campaign run reports.
type Metrics struct {
	InstancesTotal   *prometheus.CounterVec
	InstanceDuration prometheus.Histogram
	LoadNotServedKJ  prometheus.Summary
}

// NewMetrics registers a fresh Metrics set against reg. Pass
// prometheus.DefaultRegisterer for the global registry, or a throwaway
// prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		InstancesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowsim",
			Name:      "instances_total",
			Help:      "Scenario instances completed, labeled by outcome.",
		}, []string{"outcome"}),
		InstanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowsim",
			Name:      "instance_duration_seconds",
			Help:      "Wall-clock time to drive one scenario instance to completion.",
			Buckets:   prometheus.DefBuckets,
		}),
		LoadNotServedKJ: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  "flowsim",
			Name:       "load_not_served_kj",
			Help:       "Energy not served to load across completed instances.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
	}
	reg.MustRegister(m.InstancesTotal, m.InstanceDuration, m.LoadNotServedKJ)
	return m
}

// ObserveResult records one completed instance's outcome.
func (m *Metrics) ObserveResult(good bool, durationSeconds float64, loadNotServedKJ float64) {
	outcome := "ok"
	if !good {
		outcome = "error"
	}
	m.InstancesTotal.WithLabelValues(outcome).Inc()
	m.InstanceDuration.Observe(durationSeconds)
	m.LoadNotServedKJ.Observe(loadNotServedKJ)
}
