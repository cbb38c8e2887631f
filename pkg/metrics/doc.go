/*
Package metrics provides Prometheus instrumentation for the SkyTask console.

Collectors are registered on the default registry in init(). The console is a
client, so nothing is scraped; WriteText renders the gathered families in the
Prometheus text format, which cmd/skyctl prints after a command when run with
--dump-metrics.

# Metrics Catalog

skyconsole_gateway_requests_total{method, status}:
  - Type: Counter
  - status is the HTTP status code, or "error" for transport failures

skyconsole_gateway_request_duration_seconds{method}:
  - Type: Histogram

skyconsole_list_loads_total{resource, outcome}:
  - Type: Counter
  - outcome: ok, error, stale (response discarded because a newer load was issued)

skyconsole_list_load_duration_seconds{resource}:
  - Type: Histogram

skyconsole_session_refresh_total{outcome}:
  - Type: Counter
  - outcome: ok, error, no_token

skyconsole_guard_decisions_total{outcome}:
  - Type: Counter
  - outcome: allow, login, landing, denied

# Usage

	timer := metrics.NewTimer()
	// ... perform the call ...
	timer.ObserveDurationVec(metrics.GatewayRequestDuration, "GET")
*/
package metrics
