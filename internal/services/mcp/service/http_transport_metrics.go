package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded by metrics and spans.
const (
	outcomeOK             = "ok"
	outcomeAccepted       = "accepted"
	outcomeNotFound       = "not_found"
	outcomeRateLimited    = "rate_limited"
	outcomeTooLarge       = "too_large"
	outcomeTimeout        = "timeout"
	outcomeBadRequest     = "bad_request"
	outcomeInvalidJSON    = "invalid_json"
	outcomeInvalidRequest = "invalid_request"
	outcomeCancelled      = "cancelled"
	outcomeInternalError  = "internal_error"
)

// transportMetrics owns a registry per transport so tests and multiple
// transports in one process never collide on the default registerer.
type transportMetrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	bodyBytes prometheus.Histogram
	dispatch  *prometheus.HistogramVec
}

func newTransportMetrics() *transportMetrics {
	m := &transportMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plugin_catalog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by outcome.",
		}, []string{"outcome"}),
		bodyBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plugin_catalog",
			Subsystem: "http",
			Name:      "request_body_bytes",
			Help:      "Size of accepted JSON-RPC request bodies.",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 9),
		}),
		dispatch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "plugin_catalog",
			Subsystem: "mcp",
			Name:      "dispatch_duration_seconds",
			Help:      "Time from delivering a JSON-RPC call to receiving its response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	m.registry.MustRegister(m.requests, m.bodyBytes, m.dispatch)
	return m
}

func (m *transportMetrics) observeRequest(outcome string) {
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *transportMetrics) observeBody(size int) {
	m.bodyBytes.Observe(float64(size))
}

func (m *transportMetrics) observeDispatch(method string, elapsed time.Duration) {
	if _, ok := knownMethods[method]; !ok {
		method = "other"
	}
	m.dispatch.WithLabelValues(method).Observe(elapsed.Seconds())
}

// knownMethods bounds the method label; clients choose the method string.
var knownMethods = map[string]struct{}{
	"initialize":               {},
	"ping":                     {},
	"tools/list":               {},
	"tools/call":               {},
	"resources/list":           {},
	"resources/read":           {},
	"resources/templates/list": {},
}

func (m *transportMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
