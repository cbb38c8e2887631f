package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultServer     = "http://localhost:8080"
	DefaultAPIPrefix  = "/api"
	DefaultTimeout    = 8 * time.Second
	DefaultPageSize   = 10
	DefaultConfigName = "config.yaml"
)

// Config is the console configuration
type Config struct {
	Server     string          `yaml:"server"`
	APIPrefix  string          `yaml:"apiPrefix"`
	AuthPrefix string          `yaml:"authPrefix"`
	Timeout    time.Duration   `yaml:"timeout"`
	DataDir    string          `yaml:"dataDir"`
	PageSize   int             `yaml:"pageSize"`
	RateLimit  RateLimitConfig `yaml:"rateLimit"`
	TLS        TLSConfig       `yaml:"tls"`
	Session    SessionConfig   `yaml:"session"`
	Log        LogConfig       `yaml:"log"`
}

// TLSConfig controls how the gateway verifies the backend certificate
type TLSConfig struct {
	CAFile             string `yaml:"caFile"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
}

// SessionConfig controls the stored session record
type SessionConfig struct {
	// Encrypt seals the record with the key in KeyFile
	Encrypt bool `yaml:"encrypt"`
	// KeyFile defaults to session.key inside the data dir
	KeyFile string `yaml:"keyFile"`
}

// RateLimitConfig bounds outbound request rate. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// LogConfig controls the global logger
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Server:    DefaultServer,
		APIPrefix: DefaultAPIPrefix,
		Timeout:   DefaultTimeout,
		DataDir:   DefaultDataDir(),
		PageSize:  DefaultPageSize,
		Session: SessionConfig{
			Encrypt: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDataDir returns ~/.skyconsole, or a relative dir when home is unknown
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".skyconsole"
	}
	return filepath.Join(home, ".skyconsole")
}

// DefaultPath returns the config file path inside the default data dir
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), DefaultConfigName)
}

// Load reads a YAML config file over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and normalizes prefixes
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("pageSize must be at least 1, got %d", c.PageSize)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rateLimit values must not be negative")
	}
	c.Server = strings.TrimRight(c.Server, "/")
	c.APIPrefix = normalizePrefix(c.APIPrefix)
	c.AuthPrefix = normalizePrefix(c.AuthPrefix)
	return nil
}

func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
