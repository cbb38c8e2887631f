package guard

import (
	"slices"
	"testing"

	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	authenticated bool
	permissions   []string
}

func (f fakeSession) IsAuthenticated() bool {
	return f.authenticated
}

func (f fakeSession) HasAnyPermission(perms []string) bool {
	return slices.ContainsFunc(perms, func(p string) bool {
		return slices.Contains(f.permissions, p)
	})
}

var (
	anonymous = fakeSession{}
	reader    = fakeSession{authenticated: true, permissions: []string{"task:read"}}

	loginRoute  = Route{Path: "/login", Public: true}
	tasksRoute  = Route{Path: "/tasks?page=2", RequiresAuth: true, Permissions: []string{"task:read"}}
	configRoute = Route{Path: "/config", RequiresAuth: true, Permissions: []string{"config:write"}}
	openRoute   = Route{Path: "/about", RequiresAuth: true}
)

// TestCheck tests every guard branch
func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		target   Route
		from     string
		session  fakeSession
		outcome  Outcome
		location string
		warning  bool
	}{
		{
			name:    "public allowed anonymously",
			target:  loginRoute,
			session: anonymous,
			outcome: OutcomeAllow,
		},
		{
			name:    "other public route allowed when authenticated",
			target:  Route{Path: "/status", Public: true},
			session: reader,
			outcome: OutcomeAllow,
		},
		{
			name:     "login while authenticated goes to landing",
			target:   Route{Path: "/login?redirect=%2Ftasks", Public: true},
			session:  reader,
			outcome:  OutcomeLanding,
			location: "/dashboard",
		},
		{
			name:     "anonymous sent to login with redirect",
			target:   tasksRoute,
			session:  anonymous,
			outcome:  OutcomeLogin,
			location: "/login?redirect=%2Ftasks%3Fpage%3D2",
		},
		{
			name:    "permission satisfied",
			target:  tasksRoute,
			session: reader,
			outcome: OutcomeAllow,
		},
		{
			name:    "no permission set",
			target:  openRoute,
			session: fakeSession{authenticated: true},
			outcome: OutcomeAllow,
		},
		{
			name:     "denied goes back",
			target:   configRoute,
			from:     "/tasks",
			session:  reader,
			outcome:  OutcomeDenied,
			location: "/tasks",
			warning:  true,
		},
		{
			name:     "denied from login goes to landing",
			target:   configRoute,
			from:     "/login",
			session:  reader,
			outcome:  OutcomeDenied,
			location: "/dashboard",
			warning:  true,
		},
		{
			name:     "denied with no previous route goes to landing",
			target:   configRoute,
			session:  reader,
			outcome:  OutcomeDenied,
			location: "/dashboard",
			warning:  true,
		},
		{
			name:     "permission route without auth flag denies anonymous",
			target:   Route{Path: "/reports", Permissions: []string{"task:read"}},
			from:     "/tasks",
			session:  anonymous,
			outcome:  OutcomeDenied,
			location: "/tasks",
			warning:  true,
		},
	}

	g := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Check(tt.target, tt.from, tt.session)
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.outcome == OutcomeAllow, d.Allowed())
			assert.Equal(t, tt.location, d.Location())
			if tt.warning {
				assert.Equal(t, DeniedWarning, d.Warning)
			} else {
				assert.Empty(t, d.Warning)
			}
		})
	}
}

// TestCheckCountsDecisions tests that each decision is counted once
func TestCheckCountsDecisions(t *testing.T) {
	counter := metrics.GuardDecisionsTotal.WithLabelValues(string(OutcomeDenied))
	before := testutil.ToFloat64(counter)

	d := New().Check(configRoute, "/tasks", reader)

	assert.False(t, d.Allowed())
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

// TestCustomPaths tests a guard with non-default paths
func TestCustomPaths(t *testing.T) {
	g := &Guard{LoginPath: "/signin", LandingPath: "/home"}

	d := g.Check(Route{Path: "/signin", Public: true}, "", reader)
	assert.Equal(t, "/home", d.Redirect)

	d = g.Check(configRoute, "/signin", reader)
	assert.Equal(t, "/home", d.Redirect)

	d = g.Check(tasksRoute, "", anonymous)
	assert.Equal(t, "/signin", d.Redirect)
}
