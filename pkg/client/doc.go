/*
Package client provides the Remote Call Gateway used by every console component.

The gateway is a small HTTP/JSON client. It builds the URL from the configured
server and prefix, attaches the ambient session credentials, and turns every
non-2xx response or network failure into a *TransportError.

# Architecture

	┌─────────────────── REMOTE CALL GATEWAY ───────────────────┐
	│                                                             │
	│  Request{Method, Path, Query, Body, Scope, Anonymous}       │
	│       │                                                     │
	│       ▼                                                     │
	│  URL: server + (apiPrefix | authPrefix) + path + query      │
	│       │                                                     │
	│       ▼                                                     │
	│  Headers from CredentialsSource (never a global lookup):    │
	│    Authorization: Bearer <token>   (skipped if Anonymous)   │
	│    X-SkyTask-Tenant: <tenantCode>                           │
	│    X-SkyTask-Env: <environment>                             │
	│    X-Request-Id: <uuid>                                     │
	│       │                                                     │
	│       ▼                                                     │
	│  optional rate.Limiter ─► http.Client (8s timeout)          │
	│       │                                                     │
	│       ├─ 2xx  → decode into out                             │
	│       ├─ 401  → Refresher once, retry once (non-anonymous)  │
	│       └─ else → *TransportError{StatusCode, Body, Err}      │
	└─────────────────────────────────────────────────────────────┘

Empty credential values are never sent. Auth calls (login, refresh) use
ScopeAuth and Anonymous so a stale token is never attached to them.

# Dependency Injection

The credential source and refresher are passed at construction. The session
manager itself depends on the gateway, so the two are wired with closures:

	var mgr *session.Manager
	gw := client.NewClient(cfg,
		client.WithCredentials(client.CredentialsFunc(func() types.Credentials {
			return mgr.CurrentCredentials()
		})),
		client.WithRefresher(client.RefresherFunc(func(ctx context.Context) error {
			_, err := mgr.Refresh(ctx)
			return err
		})),
	)
	mgr = session.NewManager(api.NewAuthAPI(gw), store)

# Error Handling

	err := gw.Call(ctx, req, &out)
	if client.IsStatus(err, http.StatusNotFound) {
		// ...
	}

	var te *client.TransportError
	if errors.As(err, &te) && te.StatusCode == 0 {
		// network failure, te.Err holds the cause
	}
*/
package client
