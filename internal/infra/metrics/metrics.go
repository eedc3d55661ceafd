// internal/infra/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// Metrics holds the Prometheus collectors for the cart manager and the BFF.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	BackendCalls     *prometheus.CounterVec
	MergeLines       *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	CheckoutsStarted *prometheus.CounterVec
	OrderActions     *prometheus.CounterVec
}

// New creates and registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		BackendCalls: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_backend_calls_total",
				Help:      "Backend cart calls issued by the cart manager",
			},
			[]string{"op", "result"}, // op=get/add/update/remove, result=ok/stock_exceeded/error
		),
		MergeLines: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_merge_lines_total",
				Help:      "Guest cart lines folded into an authenticated cart at login",
			},
			[]string{"result"}, // ok/failed
		),
		Transitions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_session_transitions_total",
				Help:      "Cart session mode transitions",
			},
			[]string{"from", "to"},
		),
		ActiveSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_device_sessions",
				Help:      "Device cart sessions held in memory",
			},
		),
		HTTPRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Storefront API requests",
			},
			[]string{"route", "status"},
		),
		HTTPDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Storefront API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		CheckoutsStarted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkouts_total",
				Help:      "Orders placed through the storefront, by payment method and result",
			},
			[]string{"method", "result"},
		),
		OrderActions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_actions_total",
				Help:      "Order history reads, cancels and returns",
			},
			[]string{"action", "result"}, // action=list/cancel/return
		),
	}
}

func (m *Metrics) BackendCall(op, result string) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(op, result).Inc()
}

func (m *Metrics) MergeLine(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.MergeLines.WithLabelValues(result).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) ObserveRequest(route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) Checkout(method, result string) {
	if m == nil {
		return
	}
	m.CheckoutsStarted.WithLabelValues(method, result).Inc()
}

func (m *Metrics) OrderAction(action, result string) {
	if m == nil {
		return
	}
	m.OrderActions.WithLabelValues(action, result).Inc()
}
