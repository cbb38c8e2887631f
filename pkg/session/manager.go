package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cuemby/skyconsole/pkg/events"
	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/cuemby/skyconsole/pkg/storage"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// AuthService is the subset of the auth endpoints the manager drives
type AuthService interface {
	Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	Profile(ctx context.Context) (*types.Profile, error)
	Logout(ctx context.Context) error
}

// Manager owns the console session: login, refresh, profile retrieval,
// logout and durable persistence. All mutations hold mu for their whole
// read-modify-persist sequence; network calls run outside the lock.
type Manager struct {
	auth      AuthService
	store     storage.Store
	publisher events.Publisher
	logger    zerolog.Logger

	mu      sync.RWMutex
	session types.Session

	// epoch advances on every login and logout
	epoch uint64

	// refreshes shares one in-flight refresh between concurrent callers
	refreshes singleflight.Group
}

// Option configures a Manager
type Option func(*Manager)

// WithPublisher sends session change events to p
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// NewManager creates a session manager and loads the persisted session.
// A store failure is logged and the default session is used instead.
func NewManager(auth AuthService, store storage.Store, opts ...Option) *Manager {
	if store == nil {
		store = storage.NewMemoryStore()
	}

	m := &Manager{
		auth:   auth,
		store:  store,
		logger: log.WithComponent("session"),
	}
	for _, opt := range opts {
		opt(m)
	}

	sess, err := store.LoadSession()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to load persisted session, using defaults")
		sess = types.DefaultSession()
	}
	m.session = sess

	return m
}

// Environments returns the selectable environment list
func (m *Manager) Environments() []types.EnvironmentOption {
	return slices.Clone(types.Environments)
}

// ChangeEnvironment selects env and persists it. Credentials are kept.
func (m *Manager) ChangeEnvironment(env types.Environment) error {
	if !env.Valid() {
		return fmt.Errorf("unknown environment %q", env)
	}

	m.mu.Lock()
	m.session.Environment = env
	m.persistLocked()
	m.mu.Unlock()

	m.logger.Info().Str("environment", string(env)).Msg("Environment changed")
	events.Publish(m.publisher, events.EventSessionEnvironment, "environment changed",
		map[string]string{"environment": string(env)})
	return nil
}

// Login exchanges credentials for tokens and stores the resulting session.
// The raw response is returned; failures leave the session untouched.
func (m *Manager) Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error) {
	resp, err := m.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	profile := profileFromToken(resp)

	m.mu.Lock()
	m.epoch++
	m.session.AccessToken = resp.AccessToken
	m.session.RefreshToken = resp.RefreshToken
	m.session.Profile = profile
	m.persistLocked()
	m.mu.Unlock()

	m.logger.Info().
		Str("username", profile.Username).
		Str("tenant", profile.TenantCode).
		Msg("Logged in")
	events.Publish(m.publisher, events.EventSessionLogin, "logged in",
		map[string]string{"username": profile.Username, "tenant": profile.TenantCode})
	return resp, nil
}

// Refresh renews the access token. Concurrent callers share one backend call.
// It fails with ErrNoRefreshToken, without any network call, when no refresh
// token is held, and with ErrSessionChanged when a login or logout lands
// while the call is in flight.
func (m *Manager) Refresh(ctx context.Context) (*types.TokenResponse, error) {
	m.mu.RLock()
	token := m.session.RefreshToken
	epoch := m.epoch
	m.mu.RUnlock()

	if token == "" {
		metrics.SessionRefreshTotal.WithLabelValues("no_token").Inc()
		return nil, ErrNoRefreshToken
	}

	v, err, _ := m.refreshes.Do("refresh", func() (any, error) {
		return m.refresh(ctx, token, epoch)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.TokenResponse), nil
}

func (m *Manager) refresh(ctx context.Context, token string, epoch uint64) (*types.TokenResponse, error) {
	resp, err := m.auth.Refresh(ctx, token)
	if err != nil {
		metrics.SessionRefreshTotal.WithLabelValues("error").Inc()
		m.logger.Warn().Err(err).Msg("Token refresh failed")
		return nil, err
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		metrics.SessionRefreshTotal.WithLabelValues("discarded").Inc()
		m.logger.Warn().Msg("Session changed during token refresh, discarding response")
		return nil, ErrSessionChanged
	}
	m.session.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		m.session.RefreshToken = resp.RefreshToken
	}
	if m.session.Profile == nil {
		m.session.Profile = profileFromToken(resp)
	} else {
		profile := m.session.Profile.Clone()
		if resp.Roles != nil {
			profile.Roles = slices.Clone(resp.Roles)
		}
		if resp.Permissions != nil {
			profile.Permissions = slices.Clone(resp.Permissions)
		}
		m.session.Profile = profile
	}
	m.persistLocked()
	m.mu.Unlock()

	metrics.SessionRefreshTotal.WithLabelValues("ok").Inc()
	m.logger.Debug().Msg("Token refreshed")
	events.Publish(m.publisher, events.EventSessionRefreshed, "token refreshed", nil)
	return resp, nil
}

// RefreshToken refreshes and discards the response. It lets the manager
// serve as the gateway's client.Refresher.
func (m *Manager) RefreshToken(ctx context.Context) error {
	_, err := m.Refresh(ctx)
	return err
}

// FetchProfile replaces the profile with the one held by the backend
func (m *Manager) FetchProfile(ctx context.Context) (*types.Profile, error) {
	resp, err := m.auth.Profile(ctx)
	if err != nil {
		return nil, err
	}

	profile := resp.Clone()
	if profile.Roles == nil {
		profile.Roles = []string{}
	}
	if profile.Permissions == nil {
		profile.Permissions = []string{}
	}

	m.mu.Lock()
	m.session.Profile = profile
	m.persistLocked()
	m.mu.Unlock()

	events.Publish(m.publisher, events.EventSessionProfile, "profile fetched",
		map[string]string{"username": profile.Username})
	return profile.Clone(), nil
}

// Logout clears the session, resets the environment and erases the stored
// record. The backend is told best-effort when a token is held; its failure
// never keeps local state alive.
func (m *Manager) Logout(ctx context.Context) {
	if m.IsAuthenticated() {
		if err := m.auth.Logout(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
		}
	}

	m.mu.Lock()
	m.epoch++
	m.session = types.DefaultSession()
	if err := m.store.DeleteSession(); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to erase persisted session")
	}
	m.mu.Unlock()

	m.logger.Info().Msg("Logged out")
	events.Publish(m.publisher, events.EventSessionLogout, "logged out", nil)
}

// persistLocked writes the session record. A write failure is logged and
// does not fail the operation that caused it. Callers must hold mu.
func (m *Manager) persistLocked() {
	if err := m.store.SaveSession(m.session); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to persist session")
		return
	}
	m.logger.Debug().Msg("Session persisted")
}

func profileFromToken(resp *types.TokenResponse) *types.Profile {
	profile := &types.Profile{
		Username:    resp.Username,
		DisplayName: resp.DisplayName,
		TenantCode:  resp.TenantCode,
		TenantName:  resp.TenantName,
		Roles:       slices.Clone(resp.Roles),
		Permissions: slices.Clone(resp.Permissions),
	}
	if profile.Roles == nil {
		profile.Roles = []string{}
	}
	if profile.Permissions == nil {
		profile.Permissions = []string{}
	}
	return profile
}
