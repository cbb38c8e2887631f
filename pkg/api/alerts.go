package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cuemby/skyconsole/pkg/client"
	"github.com/cuemby/skyconsole/pkg/types"
)

// AlertsAPI wraps the alert rule endpoints
type AlertsAPI struct {
	caller client.Caller
}

// NewAlertsAPI creates the alert endpoint wrapper
func NewAlertsAPI(caller client.Caller) *AlertsAPI {
	return &AlertsAPI{caller: caller}
}

// ListRules returns the raw rule list
func (a *AlertsAPI) ListRules(ctx context.Context, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: "/alerts/rules", Query: query}, &raw)
	return raw, err
}

// CreateRule creates an alert rule
func (a *AlertsAPI) CreateRule(ctx context.Context, req types.AlertRuleRequest) (*types.AlertRule, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var rule types.AlertRule
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodPost, Path: "/alerts/rules", Body: req}, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpdateRule replaces an alert rule
func (a *AlertsAPI) UpdateRule(ctx context.Context, ruleID string, req types.AlertRuleRequest) (*types.AlertRule, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var rule types.AlertRule
	err := a.caller.Call(ctx, client.Request{
		Method: http.MethodPut,
		Path:   "/alerts/rules/" + url.PathEscape(ruleID),
		Body:   req,
	}, &rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeleteRule removes an alert rule
func (a *AlertsAPI) DeleteRule(ctx context.Context, ruleID string) error {
	return a.caller.Call(ctx, client.Request{Method: http.MethodDelete, Path: "/alerts/rules/" + url.PathEscape(ruleID)}, nil)
}

// TestChannel sends a test notification through the rule's channels
func (a *AlertsAPI) TestChannel(ctx context.Context, req types.AlertRuleRequest) error {
	return a.caller.Call(ctx, client.Request{Method: http.MethodPost, Path: "/alerts/test", Body: req}, nil)
}
