package api

import (
	"context"
	"net/http"

	"github.com/cuemby/skyconsole/pkg/client"
	"github.com/cuemby/skyconsole/pkg/types"
)

// AuthAPI wraps the auth service endpoints
type AuthAPI struct {
	caller client.Caller
}

// NewAuthAPI creates the auth endpoint wrapper
func NewAuthAPI(caller client.Caller) *AuthAPI {
	return &AuthAPI{caller: caller}
}

// Login exchanges credentials for tokens. It never carries a bearer token.
func (a *AuthAPI) Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var resp types.TokenResponse
	err := a.caller.Call(ctx, client.Request{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      req,
		Scope:     client.ScopeAuth,
		Anonymous: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh renews the access token with a refresh token
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	var resp types.TokenResponse
	err := a.caller.Call(ctx, client.Request{
		Method:    http.MethodPost,
		Path:      "/auth/refresh",
		Body:      map[string]string{"refreshToken": refreshToken},
		Scope:     client.ScopeAuth,
		Anonymous: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile fetches the profile of the current token
func (a *AuthAPI) Profile(ctx context.Context) (*types.Profile, error) {
	var profile types.Profile
	err := a.caller.Call(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/auth/profile",
		Scope:  client.ScopeAuth,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout revokes the refresh token server side
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.caller.Call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Scope:  client.ScopeAuth,
	}, nil)
}
