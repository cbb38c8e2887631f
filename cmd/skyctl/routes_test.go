package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cuemby/skyconsole/pkg/guard"
	"github.com/cuemby/skyconsole/pkg/session"
	"github.com/cuemby/skyconsole/pkg/storage"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) Login(context.Context, types.LoginRequest) (*types.TokenResponse, error) {
	return nil, errors.New("not used")
}

func (stubAuth) Refresh(context.Context, string) (*types.TokenResponse, error) {
	return nil, errors.New("not used")
}

func (stubAuth) Profile(context.Context) (*types.Profile, error) {
	return nil, errors.New("not used")
}

func (stubAuth) Logout(context.Context) error { return nil }

// withApp installs an app holding s for the duration of the test
func withApp(t *testing.T, s types.Session) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.SaveSession(s))
	app = &consoleApp{
		session: session.NewManager(stubAuth{}, store),
		guard:   guard.New(),
	}
	t.Cleanup(func() { app = nil })
}

func newRouted(mark func(*cobra.Command) *cobra.Command, from string) (*cobra.Command, *bytes.Buffer) {
	cmd := mark(&cobra.Command{Use: "x"})
	cmd.Flags().String("from", "", "")
	_ = cmd.Flags().Set("from", from)
	stderr := &bytes.Buffer{}
	cmd.SetErr(stderr)
	return cmd, stderr
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		name string
		cmd  *cobra.Command
		args []string
		want guard.Route
	}{
		{
			name: "public route",
			cmd:  public(&cobra.Command{}, "/login"),
			want: guard.Route{Path: "/login", Public: true},
		},
		{
			name: "protected without permissions",
			cmd:  protected(&cobra.Command{}, "/profile"),
			want: guard.Route{Path: "/profile", RequiresAuth: true},
		},
		{
			name: "arguments extend the path",
			cmd:  protected(&cobra.Command{}, "/tasks", "task:write"),
			args: []string{"42"},
			want: guard.Route{Path: "/tasks/42", RequiresAuth: true, Permissions: []string{"task:write"}},
		},
		{
			name: "several permissions",
			cmd:  protected(&cobra.Command{}, "/nodes", "node:read", "config:write"),
			want: guard.Route{Path: "/nodes", RequiresAuth: true, Permissions: []string{"node:read", "config:write"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, isRouted(tt.cmd))
			assert.Equal(t, tt.want, routeFor(tt.cmd, tt.args))
		})
	}

	assert.False(t, isRouted(&cobra.Command{}))
}

func TestEnforceRoute(t *testing.T) {
	loggedIn := types.Session{
		Environment: types.EnvironmentDev,
		AccessToken: "t1",
		Profile:     &types.Profile{Username: "ops", Permissions: []string{"task:read"}},
	}

	tests := []struct {
		name    string
		session types.Session
		mark    func(*cobra.Command) *cobra.Command
		from    string
		wantErr string
		warned  bool
	}{
		{
			name:    "public route while logged out",
			session: types.DefaultSession(),
			mark:    func(c *cobra.Command) *cobra.Command { return public(c, "/env") },
		},
		{
			name:    "login while logged in",
			session: loggedIn,
			mark:    func(c *cobra.Command) *cobra.Command { return public(c, "/login") },
			wantErr: errAlreadyLoggedIn.Error(),
		},
		{
			name:    "protected route while logged out",
			session: types.DefaultSession(),
			mark:    func(c *cobra.Command) *cobra.Command { return protected(c, "/tasks", "task:read") },
			wantErr: "login required, run \"skyctl login\" (redirect /login?redirect=%2Ftasks)",
		},
		{
			name:    "granted permission",
			session: loggedIn,
			mark:    func(c *cobra.Command) *cobra.Command { return protected(c, "/tasks", "task:read") },
		},
		{
			name:    "missing permission returns to the previous route",
			session: loggedIn,
			mark:    func(c *cobra.Command) *cobra.Command { return protected(c, "/alerts", "config:write") },
			from:    "/tasks",
			wantErr: "access denied, redirected to /tasks",
			warned:  true,
		},
		{
			name:    "missing permission without a previous route",
			session: loggedIn,
			mark:    func(c *cobra.Command) *cobra.Command { return protected(c, "/alerts", "config:write") },
			wantErr: "access denied, redirected to /dashboard",
			warned:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withApp(t, tt.session)
			cmd, stderr := newRouted(tt.mark, tt.from)

			err := enforceRoute(cmd, nil)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
			if tt.warned {
				assert.Contains(t, stderr.String(), guard.DeniedWarning)
			} else {
				assert.Empty(t, stderr.String())
			}
		})
	}
}
