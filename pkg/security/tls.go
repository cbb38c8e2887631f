package security

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/skyconsole/pkg/log"
)

// Warn when a trusted certificate has less than 30 days left
const certExpiryThreshold = 30 * 24 * time.Hour

// LoadCACerts reads every certificate of a PEM bundle
func LoadCACerts(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle: %w", err)
	}

	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CA certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return certs, nil
}

// CertExpiresSoon reports whether cert expires within 30 days
func CertExpiresSoon(cert *x509.Certificate) bool {
	if cert == nil {
		return true
	}
	return time.Until(cert.NotAfter) < certExpiryThreshold
}

// TLSConfig returns the gateway TLS settings. An empty caFile keeps the
// system roots.
func TLSConfig(caFile string, insecureSkipVerify bool) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify,
	}
	if caFile == "" {
		return cfg, nil
	}

	certs, err := LoadCACerts(caFile)
	if err != nil {
		return nil, err
	}

	logger := log.WithComponent("security")
	pool := x509.NewCertPool()
	for _, cert := range certs {
		if time.Now().After(cert.NotAfter) {
			return nil, errors.New("CA certificate " + cert.Subject.CommonName + " has expired")
		}
		if CertExpiresSoon(cert) {
			logger.Warn().
				Str("subject", cert.Subject.CommonName).
				Time("not_after", cert.NotAfter).
				Msg("Trusted CA certificate expires soon")
		}
		pool.AddCert(cert)
	}
	cfg.RootCAs = pool
	return cfg, nil
}
