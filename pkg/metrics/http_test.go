package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestCountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPClientMetrics(reg)

	m.ObserveRequest("/cart/items", http.MethodPost, http.StatusCreated, 120*time.Millisecond)
	m.ObserveRequest("/cart/items", http.MethodPost, http.StatusCreated, 80*time.Millisecond)
	m.ObserveRequest("/cart/items", http.MethodPost, http.StatusBadGateway, 10*time.Millisecond)
	m.IncFailure("/cart/items", http.MethodPost)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	requests := byName["api_requests_total"]
	require.NotNil(t, requests)
	total := 0.0
	for _, metric := range requests.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	require.Equal(t, 3.0, total)

	failures := byName["api_request_failures_total"]
	require.NotNil(t, failures)
	require.Equal(t, 1.0, failures.GetMetric()[0].GetCounter().GetValue())

	duration := byName["api_request_duration_seconds"]
	require.NotNil(t, duration)
	require.Equal(t, uint64(3), duration.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestNilRegistererIsSafe(t *testing.T) {
	m := NewHTTPClientMetrics(nil)
	m.ObserveRequest("/x", http.MethodGet, http.StatusOK, time.Millisecond)
	m.IncFailure("/x", http.MethodGet)

	var unset *HTTPClientMetrics
	unset.ObserveRequest("/x", http.MethodGet, http.StatusOK, time.Millisecond)
	unset.IncFailure("/x", http.MethodGet)
}
