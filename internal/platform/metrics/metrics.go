package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide Prometheus metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	WizardSessions  prometheus.Counter
	WizardExpired   prometheus.Counter
}

// New creates and registers all platform metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		WizardSessions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_wizard_sessions_started_total",
			Help: "Total number of wizard sessions started",
		}),
		WizardExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_wizard_sessions_expired_total",
			Help: "Total number of wizard operations rejected due to expired sessions",
		}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, status).Observe(seconds)
}
