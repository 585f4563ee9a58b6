package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus collectors for admission decisions.
type Metrics struct {
	checks     *prometheus.CounterVec
	denials    *prometheus.CounterVec
	retryAfter *prometheus.HistogramVec
}

// NewMetrics creates admission-control collectors registered against reg.
// Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cirrus_ratelimit_checks_total",
				Help: "Total number of admission checks performed",
			},
			[]string{"category", "result"},
		),

		denials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cirrus_ratelimit_denials_total",
				Help: "Total number of denied admission checks",
			},
			[]string{"category"},
		),

		retryAfter: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cirrus_ratelimit_retry_after_seconds",
				Help:    "Estimated wait advertised on denial",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"category"},
		),
	}
}

func (m *Metrics) recordCheck(category Category, allowed bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	m.checks.WithLabelValues(string(category), result).Inc()
}

func (m *Metrics) recordDenial(category Category, retryAfter time.Duration) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(string(category)).Inc()
	m.retryAfter.WithLabelValues(string(category)).Observe(retryAfter.Seconds())
}
