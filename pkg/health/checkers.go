package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultHTTPTimeout = 10 * time.Second
)

// measure runs fn and stamps its outcome with start time and duration
func measure(fn func() (bool, string)) Result {
	start := time.Now()
	healthy, message := fn()
	return Result{
		Healthy:   healthy,
		Message:   message,
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// TCPChecker dials the backend host
type TCPChecker struct {
	// Address is host:port
	Address string
	Timeout time.Duration
}

func NewTCPChecker(address string) *TCPChecker {
	return &TCPChecker{Address: address, Timeout: defaultDialTimeout}
}

func (t *TCPChecker) Check(ctx context.Context) Result {
	return measure(func() (bool, string) {
		dialer := net.Dialer{Timeout: t.Timeout}
		conn, err := dialer.DialContext(ctx, "tcp", t.Address)
		if err != nil {
			return false, fmt.Sprintf("connection failed: %v", err)
		}
		conn.Close()
		return true, "reachable at " + t.Address
	})
}

func (t *TCPChecker) Type() CheckType {
	return CheckTypeTCP
}

// WithTimeout sets the dial timeout
func (t *TCPChecker) WithTimeout(timeout time.Duration) *TCPChecker {
	t.Timeout = timeout
	return t
}

// HTTPChecker sends a GET to URL and accepts a status within [MinStatus, MaxStatus]
type HTTPChecker struct {
	URL       string
	MinStatus int
	MaxStatus int
	Client    *http.Client
}

// NewHTTPChecker accepts 2xx and 3xx answers until WithStatusRange says otherwise
func NewHTTPChecker(url string) *HTTPChecker {
	return &HTTPChecker{
		URL:       url,
		MinStatus: http.StatusOK,
		MaxStatus: 399,
		Client:    &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (h *HTTPChecker) Check(ctx context.Context) Result {
	return measure(func() (bool, string) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
		if err != nil {
			return false, fmt.Sprintf("failed to create request: %v", err)
		}
		resp, err := h.Client.Do(req)
		if err != nil {
			return false, fmt.Sprintf("request failed: %v", err)
		}
		resp.Body.Close()

		status := fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		if resp.StatusCode < h.MinStatus || resp.StatusCode > h.MaxStatus {
			return false, fmt.Sprintf("%s (expected %d-%d)", status, h.MinStatus, h.MaxStatus)
		}
		return true, status
	})
}

func (h *HTTPChecker) Type() CheckType {
	return CheckTypeHTTP
}

// WithStatusRange sets the accepted status codes, bounds included
func (h *HTTPChecker) WithStatusRange(min, max int) *HTTPChecker {
	h.MinStatus, h.MaxStatus = min, max
	return h
}

func (h *HTTPChecker) WithTimeout(timeout time.Duration) *HTTPChecker {
	h.Client.Timeout = timeout
	return h
}

// WithTLSConfig sets the TLS settings of the checker's client
func (h *HTTPChecker) WithTLSConfig(cfg *tls.Config) *HTTPChecker {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = cfg
	h.Client.Transport = transport
	return h
}
