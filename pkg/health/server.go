package health

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"time"
)

// ForServer returns the checkers that prove the backend at server is up: a
// TCP dial of its host, then a GET of the base URL answered below 500. A
// zero timeout keeps the checker defaults.
func ForServer(server string, timeout time.Duration, tlsConfig *tls.Config) ([]Checker, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", server, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", server)
	}

	address := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		address = net.JoinHostPort(u.Hostname(), port)
	}

	tcp := NewTCPChecker(address)
	get := NewHTTPChecker(server).WithStatusRange(200, 499)
	if tlsConfig != nil {
		get.WithTLSConfig(tlsConfig)
	}
	if timeout > 0 {
		tcp.WithTimeout(timeout)
		get.WithTimeout(timeout)
	}
	return []Checker{tcp, get}, nil
}
