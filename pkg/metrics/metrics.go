package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	// Gateway metrics
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyconsole_gateway_requests_total",
			Help: "Total number of remote calls by method and status",
		},
		[]string{"method", "status"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skyconsole_gateway_request_duration_seconds",
			Help:    "Remote call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// List controller metrics
	ListLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyconsole_list_loads_total",
			Help: "Total number of list loads by resource and outcome (ok, error, stale)",
		},
		[]string{"resource", "outcome"},
	)

	ListLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skyconsole_list_load_duration_seconds",
			Help:    "List load duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// Session metrics
	SessionRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyconsole_session_refresh_total",
			Help: "Total number of token refresh attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Guard metrics
	GuardDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyconsole_guard_decisions_total",
			Help: "Total number of navigation guard decisions by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(GatewayRequestsTotal)
	prometheus.MustRegister(GatewayRequestDuration)
	prometheus.MustRegister(ListLoadsTotal)
	prometheus.MustRegister(ListLoadDuration)
	prometheus.MustRegister(SessionRefreshTotal)
	prometheus.MustRegister(GuardDecisionsTotal)
}

// WriteText writes every family gathered from g in the Prometheus text format
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
