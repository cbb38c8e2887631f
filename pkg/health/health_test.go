package health

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPChecker(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		min, max int
		healthy  bool
	}{
		{name: "ok", status: http.StatusOK, healthy: true},
		{name: "server error", status: http.StatusInternalServerError, healthy: false},
		{name: "unauthorized outside default range", status: http.StatusUnauthorized, healthy: false},
		{name: "unauthorized inside custom range", status: http.StatusUnauthorized, min: 200, max: 499, healthy: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHTTPChecker(statusServer(t, tt.status).URL)
			if tt.max > 0 {
				checker.WithStatusRange(tt.min, tt.max)
			}

			result := checker.Check(context.Background())
			assert.Equal(t, tt.healthy, result.Healthy, result.Message)
			assert.Positive(t, result.Duration)
		})
	}
}

func TestHTTPChecker_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := NewHTTPChecker(server.URL).WithTimeout(50 * time.Millisecond).Check(context.Background())
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Message, "request failed")
}

func TestTCPChecker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	result := NewTCPChecker(addr).Check(context.Background())
	assert.True(t, result.Healthy, result.Message)
	assert.Equal(t, CheckTypeTCP, NewTCPChecker(addr).Type())

	require.NoError(t, ln.Close())
	result = NewTCPChecker(addr).WithTimeout(time.Second).Check(context.Background())
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Message, "connection failed")
}

type flakyChecker struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyChecker) Check(context.Context) Result {
	if f.calls.Add(1) <= f.failures {
		return Result{Message: "down"}
	}
	return Result{Healthy: true, Message: "up"}
}

func (f *flakyChecker) Type() CheckType { return CheckTypeTCP }

func TestProbe(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		retries   int
		healthy   bool
		wantCalls int32
	}{
		{name: "healthy first time", failures: 0, retries: 1, healthy: true, wantCalls: 1},
		{name: "single attempt fails", failures: 1, retries: 1, healthy: false, wantCalls: 1},
		{name: "recovers within retries", failures: 2, retries: 3, healthy: true, wantCalls: 3},
		{name: "retries exhausted", failures: 5, retries: 3, healthy: false, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &flakyChecker{failures: tt.failures}
			result := Probe(context.Background(), Config{Interval: time.Millisecond, Retries: tt.retries}, checker)

			assert.Equal(t, tt.healthy, result.Healthy)
			assert.Equal(t, tt.wantCalls, checker.calls.Load())
		})
	}
}

func TestProbe_StopsAtFirstUnhealthy(t *testing.T) {
	down := &flakyChecker{failures: 10}
	never := &flakyChecker{}

	result := Probe(context.Background(), DefaultConfig(), down, never)
	assert.False(t, result.Healthy)
	assert.Equal(t, "down", result.Message)
	assert.Zero(t, never.calls.Load())
}

func TestProbe_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Probe(ctx, Config{Interval: time.Hour, Retries: 5}, &flakyChecker{failures: 10})
	assert.False(t, result.Healthy)
	assert.Equal(t, context.Canceled.Error(), result.Message)
}

func TestForServer(t *testing.T) {
	server := statusServer(t, http.StatusUnauthorized)

	checkers, err := ForServer(server.URL, time.Second, nil)
	require.NoError(t, err)
	require.Len(t, checkers, 2)
	assert.Equal(t, CheckTypeTCP, checkers[0].Type())
	assert.Equal(t, CheckTypeHTTP, checkers[1].Type())

	result := Probe(context.Background(), DefaultConfig(), checkers...)
	assert.True(t, result.Healthy, result.Message)
	assert.Contains(t, result.Message, "HTTP 401")

	tests := []struct {
		server  string
		address string
	}{
		{server: "http://skytask.local", address: "skytask.local:80"},
		{server: "https://skytask.local/api", address: "skytask.local:443"},
		{server: "http://10.0.0.5:8080", address: "10.0.0.5:8080"},
	}
	for _, tt := range tests {
		checkers, err := ForServer(tt.server, time.Second, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.address, checkers[0].(*TCPChecker).Address)
	}

	_, err = ForServer("not a url", time.Second, nil)
	assert.Error(t, err)
}

func TestForServer_TLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checkers, err := ForServer(server.URL, time.Second, nil)
	require.NoError(t, err)
	assert.False(t, Probe(context.Background(), DefaultConfig(), checkers...).Healthy)

	roots := x509.NewCertPool()
	roots.AddCert(server.Certificate())
	checkers, err = ForServer(server.URL, time.Second, &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12})
	require.NoError(t, err)
	result := Probe(context.Background(), DefaultConfig(), checkers...)
	assert.True(t, result.Healthy, result.Message)
}
