package guard

import (
	"net/url"

	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/metrics"
)

const (
	DefaultLoginPath   = "/login"
	DefaultLandingPath = "/dashboard"

	// RedirectParam carries the originally requested path to the login page
	RedirectParam = "redirect"

	// DeniedWarning is shown when the session lacks every required permission
	DeniedWarning = "current account has no permission to access this page"
)

// Route is the access declaration of one navigation target
type Route struct {
	// Path is the full requested path, query included
	Path         string
	Public       bool
	RequiresAuth bool
	Permissions  []string
}

// Authorizer answers the session questions the guard asks
type Authorizer interface {
	IsAuthenticated() bool
	HasAnyPermission(perms []string) bool
}

// Outcome classifies a Decision
type Outcome string

const (
	OutcomeAllow   Outcome = "allow"
	OutcomeLogin   Outcome = "login"
	OutcomeLanding Outcome = "landing"
	OutcomeDenied  Outcome = "denied"
)

// Decision is the result of one guard check. Redirect is empty when the
// transition is allowed.
type Decision struct {
	Outcome  Outcome
	Redirect string
	Query    url.Values
	Warning  string
}

// Allowed reports whether the target may mount
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Location returns the redirect path with its query encoded
func (d Decision) Location() string {
	if len(d.Query) == 0 {
		return d.Redirect
	}
	return d.Redirect + "?" + d.Query.Encode()
}

// Guard decides route transitions against the session
type Guard struct {
	LoginPath   string
	LandingPath string
}

// New creates a guard with the default login and landing paths
func New() *Guard {
	return &Guard{
		LoginPath:   DefaultLoginPath,
		LandingPath: DefaultLandingPath,
	}
}

// Check decides whether the transition from the path from to target is
// allowed. It is synchronous and performs no I/O beyond logging.
func (g *Guard) Check(target Route, from string, auth Authorizer) Decision {
	d := g.decide(target, from, auth)
	metrics.GuardDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()

	if d.Outcome == OutcomeDenied {
		logger := log.WithComponent("guard")
		logger.Warn().
			Str("target", target.Path).
			Strs("required", target.Permissions).
			Str("redirect", d.Redirect).
			Msg(d.Warning)
	}
	return d
}

func (g *Guard) decide(target Route, from string, auth Authorizer) Decision {
	authenticated := auth.IsAuthenticated()

	if target.Public {
		if authenticated && routePath(target.Path) == g.LoginPath {
			return Decision{Outcome: OutcomeLanding, Redirect: g.LandingPath}
		}
		return Decision{Outcome: OutcomeAllow}
	}

	if target.RequiresAuth && !authenticated {
		return Decision{
			Outcome:  OutcomeLogin,
			Redirect: g.LoginPath,
			Query:    url.Values{RedirectParam: {target.Path}},
		}
	}

	if len(target.Permissions) > 0 && !auth.HasAnyPermission(target.Permissions) {
		back := from
		if back == "" || routePath(back) == g.LoginPath {
			back = g.LandingPath
		}
		return Decision{Outcome: OutcomeDenied, Redirect: back, Warning: DeniedWarning}
	}

	return Decision{Outcome: OutcomeAllow}
}

// routePath strips the query from a full path
func routePath(full string) string {
	u, err := url.Parse(full)
	if err != nil {
		return full
	}
	return u.Path
}
