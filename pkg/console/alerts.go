package console

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/cuemby/skyconsole/pkg/listing"
	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/rs/zerolog"
)

const ResourceAlerts = "alerts"

// AlertService is the alert rule endpoint surface the controller drives
type AlertService interface {
	ListRules(ctx context.Context, query url.Values) (json.RawMessage, error)
	CreateRule(ctx context.Context, req types.AlertRuleRequest) (*types.AlertRule, error)
	UpdateRule(ctx context.Context, ruleID string, req types.AlertRuleRequest) (*types.AlertRule, error)
	DeleteRule(ctx context.Context, ruleID string) error
	TestChannel(ctx context.Context, req types.AlertRuleRequest) error
}

// Alerts holds the alert rule list
type Alerts struct {
	svc    AlertService
	logger zerolog.Logger

	Rules *listing.Controller[types.AlertRule]
}

// NewAlerts creates the alert rule controller on top of svc
func NewAlerts(svc AlertService, opts ...listing.Option) *Alerts {
	return &Alerts{
		svc:    svc,
		logger: log.WithComponent("console").With().Str("resource", ResourceAlerts).Logger(),
		Rules:  listing.NewController[types.AlertRule](ResourceAlerts, rawFetcher(svc.ListRules), opts...),
	}
}

// Submit creates the rule when req has no id and updates it otherwise, then
// reloads the rule list
func (a *Alerts) Submit(ctx context.Context, req types.AlertRuleRequest) (*types.AlertRule, error) {
	var (
		rule *types.AlertRule
		err  error
	)
	if req.ID != "" {
		rule, err = a.svc.UpdateRule(ctx, req.ID, req)
	} else {
		rule, err = a.svc.CreateRule(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Info().Str("rule", req.Name).Bool("update", req.ID != "").Msg("Alert rule saved")
	return rule, a.Rules.Reload(ctx)
}

// Delete removes a rule, then reloads the rule list
func (a *Alerts) Delete(ctx context.Context, ruleID string) error {
	if err := a.svc.DeleteRule(ctx, ruleID); err != nil {
		return err
	}
	a.logger.Info().Str("rule_id", ruleID).Msg("Alert rule deleted")
	return a.Rules.Reload(ctx)
}

// TestChannel sends a test notification for req. The list is not reloaded.
func (a *Alerts) TestChannel(ctx context.Context, req types.AlertRuleRequest) error {
	return a.svc.TestChannel(ctx, req)
}
