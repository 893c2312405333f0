package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPClientMetrics records outcome metadata for outbound API calls.
type HTTPClientMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewHTTPClientMetrics registers the client metrics on the provided registerer.
func NewHTTPClientMetrics(reg prometheus.Registerer) *HTTPClientMetrics {
	if reg == nil {
		return &HTTPClientMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Duration of outbound API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Outbound API requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_request_failures_total",
		Help: "Outbound API requests that never produced a response.",
	}, []string{"endpoint", "method"})
	reg.MustRegister(duration, requests, failures)
	return &HTTPClientMetrics{
		duration: duration,
		requests: requests,
		failures: failures,
	}
}

// ObserveRequest records one settled request.
func (m *HTTPClientMetrics) ObserveRequest(endpoint, method string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	method = normalizeLabel(method)
	m.requests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
}

// IncFailure counts a request that failed before any response arrived.
func (m *HTTPClientMetrics) IncFailure(endpoint, method string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(endpoint), normalizeLabel(method)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
