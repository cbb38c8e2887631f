package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cuemby/skyconsole/pkg/config"
	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Header names attached to outbound calls
const (
	HeaderAuthorization = "Authorization"
	HeaderTenant        = "X-SkyTask-Tenant"
	HeaderEnvironment   = "X-SkyTask-Env"
	HeaderRequestID     = "X-Request-Id"
)

// maxErrorBody bounds how much of a failed response is kept on TransportError
const maxErrorBody = 4096

// Scope selects the base path of a call
type Scope int

const (
	// ScopeAPI calls go under the API prefix (default /api)
	ScopeAPI Scope = iota
	// ScopeAuth calls go under the auth prefix (default root)
	ScopeAuth
)

// Request describes one remote call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Scope  Scope
	// Anonymous calls never carry the bearer credential and are never retried
	// after a refresh
	Anonymous bool
}

// Caller executes remote calls. out may be nil, a *json.RawMessage, a *[]byte
// for the raw body, or any JSON-decodable pointer.
type Caller interface {
	Call(ctx context.Context, req Request, out any) error
}

// CredentialsSource supplies the ambient credentials of the current session
type CredentialsSource interface {
	CurrentCredentials() types.Credentials
}

// CredentialsFunc adapts a function to CredentialsSource
type CredentialsFunc func() types.Credentials

func (f CredentialsFunc) CurrentCredentials() types.Credentials {
	return f()
}

// Refresher renews the access token after a 401
type Refresher interface {
	RefreshToken(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) RefreshToken(ctx context.Context) error {
	return f(ctx)
}

// Client is the Remote Call Gateway: an HTTP/JSON client that injects the
// session's bearer token, tenant and environment into every call
type Client struct {
	server     string
	apiPrefix  string
	authPrefix string
	httpClient *http.Client
	creds      CredentialsSource
	refresher  Refresher
	limiter    *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithCredentials sets the credential source consulted on every call
func WithCredentials(src CredentialsSource) Option {
	return func(c *Client) {
		c.creds = src
	}
}

// WithRefresher enables one refresh-and-retry on 401 responses
func WithRefresher(r Refresher) Option {
	return func(c *Client) {
		c.refresher = r
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTLSConfig sets the TLS settings used to reach the backend
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = cfg
		c.httpClient.Transport = transport
	}
}

// WithRateLimit bounds the outbound request rate. Zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a gateway from the console configuration
func NewClient(cfg *config.Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultTimeout
	}

	c := &Client{
		server:     strings.TrimRight(cfg.Server, "/"),
		apiPrefix:  cfg.APIPrefix,
		authPrefix: cfg.AuthPrefix,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)(c)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call executes req and decodes the response body into out
func (c *Client) Call(ctx context.Context, req Request, out any) error {
	err := c.do(ctx, req, out)
	if err == nil || req.Anonymous || c.refresher == nil || !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	logger := log.WithComponent("gateway")
	if rerr := c.refresher.RefreshToken(ctx); rerr != nil {
		logger.Warn().Err(rerr).Str("path", req.Path).Msg("Token refresh after 401 failed")
		return err
	}

	logger.Debug().Str("path", req.Path).Msg("Retrying call with refreshed token")
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.url(req)
	requestID := uuid.NewString()
	logger := log.WithRequestID(requestID)

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	c.decorate(httpReq, req.Anonymous)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Method: method, Path: req.Path, Err: err}
		}
	}

	timer := metrics.NewTimer()
	resp, err := c.httpClient.Do(httpReq)
	timer.ObserveDurationVec(metrics.GatewayRequestDuration, method)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(method, "error").Inc()
		metrics.UpdateComponent(metrics.ComponentGateway, false, err.Error())
		logger.Debug().Err(err).Str("method", method).Str("path", req.Path).Msg("Remote call failed")
		return &TransportError{Method: method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	metrics.GatewayRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.UpdateComponent(metrics.ComponentGateway, true, c.server)
	logger.Debug().
		Str("method", method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("duration", timer.Duration()).
		Msg("Remote call completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			Method:     method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: req.Path, StatusCode: resp.StatusCode, Err: err}
	}
	return decode(data, out)
}

func (c *Client) url(req Request) string {
	prefix := c.apiPrefix
	if req.Scope == ScopeAuth {
		prefix = c.authPrefix
	}

	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	target := c.server + prefix + path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	return target
}

// decorate attaches the session credentials. Empty values are never sent.
func (c *Client) decorate(httpReq *http.Request, anonymous bool) {
	if c.creds == nil {
		return
	}
	creds := c.creds.CurrentCredentials()
	if creds.AccessToken != "" && !anonymous {
		httpReq.Header.Set(HeaderAuthorization, "Bearer "+creds.AccessToken)
	}
	if creds.TenantCode != "" {
		httpReq.Header.Set(HeaderTenant, creds.TenantCode)
	}
	if creds.Environment != "" {
		httpReq.Header.Set(HeaderEnvironment, string(creds.Environment))
	}
}

func decode(data []byte, out any) error {
	if out == nil {
		return nil
	}

	switch v := out.(type) {
	case *[]byte:
		*v = data
		return nil
	case *json.RawMessage:
		if len(bytes.TrimSpace(data)) == 0 {
			*v = nil
			return nil
		}
		*v = append((*v)[:0], data...)
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
