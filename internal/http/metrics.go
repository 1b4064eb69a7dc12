package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quickactions"

// Metrics holds the collectors on a private registry so several instances can
// coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	TriggersTotal     *prometheus.CounterVec
	ActionsTotal      *prometheus.CounterVec
	VerifyAttempts    *prometheus.HistogramVec
	VerifyDuration    *prometheus.HistogramVec
	TokenRefreshTotal *prometheus.CounterVec
	ActionsInFlight   prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		TriggersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "triggers_total",
				Help:      "Total number of action triggers",
			},
			[]string{"source", "kind", "status"},
		),
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Total number of finished actions by outcome",
			},
			[]string{"kind", "outcome"},
		),
		VerifyAttempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "verify_attempts",
				Help:      "Verification polls needed per action",
				Buckets:   prometheus.LinearBuckets(1, 1, 8),
			},
			[]string{"kind"},
		),
		VerifyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "verify_duration_seconds",
				Help:      "Time from write to final outcome",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 7),
			},
			[]string{"kind"},
		),
		TokenRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_refreshes_total",
				Help:      "Total number of access token refreshes",
			},
			[]string{"status"},
		),
		ActionsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "actions_in_flight",
				Help:      "Number of actions currently being verified",
			},
		),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TriggersTotal,
		m.ActionsTotal,
		m.VerifyAttempts,
		m.VerifyDuration,
		m.TokenRefreshTotal,
		m.ActionsInFlight,
	)

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordTrigger(source, kind, status string) {
	m.TriggersTotal.WithLabelValues(source, kind, status).Inc()
}

func (m *Metrics) RecordOutcome(kind, outcome string, attempts int, elapsed time.Duration) {
	m.ActionsTotal.WithLabelValues(kind, outcome).Inc()
	m.VerifyAttempts.WithLabelValues(kind).Observe(float64(attempts))
	m.VerifyDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) SetActionsInFlight(n int) {
	m.ActionsInFlight.Set(float64(n))
}

func (m *Metrics) RecordTokenRefresh(status string) {
	m.TokenRefreshTotal.WithLabelValues(status).Inc()
}
