package session

import (
	"slices"

	"github.com/cuemby/skyconsole/pkg/types"
)

// IsAuthenticated reports whether an access token and a profile are both held
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Authenticated()
}

// HasPermission reports whether the profile carries perm
func (m *Manager) HasPermission(perm string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Profile.HasPermission(perm)
}

// HasAnyPermission reports whether the profile carries at least one of perms.
// An empty set is never satisfied.
func (m *Manager) HasAnyPermission(perms []string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.ContainsFunc(perms, m.session.Profile.HasPermission)
}

// HasRole reports whether the profile carries role
func (m *Manager) HasRole(role string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Profile.HasRole(role)
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.AccessToken
}

func (m *Manager) Environment() types.Environment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Environment
}

// TenantCode returns the profile's tenant code, empty without a profile
func (m *Manager) TenantCode() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.Profile == nil {
		return ""
	}
	return m.session.Profile.TenantCode
}

// TenantName returns the profile's tenant name, empty without a profile
func (m *Manager) TenantName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.Profile == nil {
		return ""
	}
	return m.session.Profile.TenantName
}

func (m *Manager) Roles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.Profile == nil {
		return []string{}
	}
	return slices.Clone(m.session.Profile.Roles)
}

func (m *Manager) Permissions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.Profile == nil {
		return []string{}
	}
	return slices.Clone(m.session.Profile.Permissions)
}

// Snapshot returns a deep copy of the current session
func (m *Manager) Snapshot() types.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Clone()
}

// CurrentCredentials returns the values the gateway injects into outbound calls
func (m *Manager) CurrentCredentials() types.Credentials {
	m.mu.RLock()
	defer m.mu.RUnlock()
	creds := types.Credentials{
		AccessToken: m.session.AccessToken,
		Environment: m.session.Environment,
	}
	if m.session.Profile != nil {
		creds.TenantCode = m.session.Profile.TenantCode
	}
	return creds
}
