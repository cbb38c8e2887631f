package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestTimerDuration tests duration measurement
func TestTimerDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(20 * time.Millisecond)

	first := timer.Duration()
	assert.GreaterOrEqual(t, first, 20*time.Millisecond)

	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, timer.Duration(), first)
}

// TestTimerObserveDurationVec tests histogram vec observation
func TestTimerObserveDurationVec(t *testing.T) {
	histogramVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_load_duration_seconds",
			Help:    "Test duration histogram vec",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	timer := NewTimer()
	timer.ObserveDurationVec(histogramVec, "tasks")
	timer.ObserveDurationVec(histogramVec, "nodes")

	assert.Equal(t, 2, testutil.CollectAndCount(histogramVec))
}

// TestCollectorsRegistered tests that the package metrics are on the default registry
func TestCollectorsRegistered(t *testing.T) {
	GatewayRequestsTotal.WithLabelValues("GET", "200").Inc()
	GuardDecisionsTotal.WithLabelValues("allow").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	assert.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["skyconsole_gateway_requests_total"])
	assert.True(t, names["skyconsole_guard_decisions_total"])
}

// TestWriteText tests the text exposition of a registry
func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_loads_total",
		Help: "Test loads",
	}, []string{"outcome"})
	reg.MustRegister(counter)
	counter.WithLabelValues("ok").Add(3)

	var buf bytes.Buffer
	assert.NoError(t, WriteText(&buf, reg))
	assert.Contains(t, buf.String(), "# TYPE test_loads_total counter")
	assert.Contains(t, buf.String(), `test_loads_total{outcome="ok"} 3`)
}
