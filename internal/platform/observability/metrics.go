// Package observability holds the Prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	// Registry owns these metrics. Exposed so the /metrics endpoint can serve it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	unitsTotal      *prometheus.CounterVec
	unitRetries     prometheus.Counter
	compensations   *prometheus.CounterVec
	billsProcessed  *prometheus.CounterVec
}

// NewMetrics creates a dedicated registry and registers all metrics in it, so building
// it more than once (e.g. in tests) never panics on duplicate collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ft_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		unitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft_ledger_units_total",
				Help: "Atomic ledger units by backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		unitRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ft_ledger_unit_retries_total",
				Help: "Units retried after a serialization failure or deadlock.",
			},
		),
		compensations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft_ledger_compensations_total",
				Help: "Compensating reverts run by the non-transactional backend.",
			},
			[]string{"outcome"},
		),
		billsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft_recurring_bills_total",
				Help: "Recurring bill payment attempts by result.",
			},
			[]string{"result"},
		),
	}
}

// RecordRequest observes one HTTP request.
func (m *Metrics) RecordRequest(route, method, status string, d time.Duration) {
	m.requestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// IncrUnit counts a finished unit. outcome is "commit", "abort" or "consistency_failure".
func (m *Metrics) IncrUnit(backend, outcome string) {
	m.unitsTotal.WithLabelValues(backend, outcome).Inc()
}

// IncrUnitRetry counts one retried unit attempt.
func (m *Metrics) IncrUnitRetry() {
	m.unitRetries.Inc()
}

// IncrCompensation counts a compensation run, "ok" or "failed".
func (m *Metrics) IncrCompensation(outcome string) {
	m.compensations.WithLabelValues(outcome).Inc()
}

// AddBills adds n bill payment attempts with the given result.
func (m *Metrics) AddBills(result string, n int) {
	if n > 0 {
		m.billsProcessed.WithLabelValues(result).Add(float64(n))
	}
}
