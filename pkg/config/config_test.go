package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadMissingFile tests that a missing file yields defaults
func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, DefaultAPIPrefix, cfg.APIPrefix)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
}

// TestLoadOverridesDefaults tests that file values layer over defaults
func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server: https://skytask.example.com/
apiPrefix: gateway/api/
timeout: 3s
pageSize: 25
rateLimit:
  requestsPerSecond: 5
  burst: 10
log:
  level: debug
  json: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://skytask.example.com", cfg.Server)
	assert.Equal(t, "/gateway/api", cfg.APIPrefix)
	assert.Equal(t, "", cfg.AuthPrefix)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.NotEmpty(t, cfg.DataDir)
}

// TestLoadRejectsInvalid tests validation failures
func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "server: [unterminated"},
		{name: "zero page size", content: "pageSize: 0"},
		{name: "negative rate", content: "rateLimit:\n  requestsPerSecond: -1"},
		{name: "empty server", content: "server: \"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

// TestSessionAndTLSSettings tests the at-rest and transport security settings
func TestSessionAndTLSSettings(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Session.Encrypt)
	assert.Empty(t, cfg.Session.KeyFile)
	assert.Empty(t, cfg.TLS.CAFile)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
session:
  encrypt: false
  keyFile: /etc/skyctl/session.key
tls:
  caFile: /etc/skyctl/ca.pem
  insecureSkipVerify: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Session.Encrypt)
	assert.Equal(t, "/etc/skyctl/session.key", cfg.Session.KeyFile)
	assert.Equal(t, "/etc/skyctl/ca.pem", cfg.TLS.CAFile)
	assert.True(t, cfg.TLS.InsecureSkipVerify)
}
