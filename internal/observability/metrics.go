// Metrics for the civic service. All counters and histograms are registered
// with the default Prometheus registry at construction and exposed on
// /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civic"

// Metrics bundles the service's Prometheus collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	accountActions  *prometheus.CounterVec
	authzDenials    *prometheus.CounterVec
}

// NewMetrics registers and returns the collector set.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Requests rejected with a domain error, by error code.",
		}, []string{"path", "method", "code"}),
		accountActions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_actions_total",
			Help:      "Approval state machine actions by action and outcome.",
		}, []string{"action", "outcome"}),
		authzDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_denials_total",
			Help:      "Authorization denials by reason.",
		}, []string{"reason"}),
	}
}

// RecordRequest increments request counters.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(path, method, code).Inc()
}

// RecordAccountAction tracks approve/reject/deactivate outcomes.
func (m *Metrics) RecordAccountAction(action, outcome string) {
	if m == nil {
		return
	}
	m.accountActions.WithLabelValues(action, outcome).Inc()
}

// RecordAuthzDenial tracks centralized authorization denials.
func (m *Metrics) RecordAuthzDenial(reason string) {
	if m == nil {
		return
	}
	m.authzDenials.WithLabelValues(reason).Inc()
}
