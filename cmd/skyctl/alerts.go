package main

import (
	"fmt"
	"strings"

	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/spf13/cobra"
)

var alertCmd = &cobra.Command{
	Use:     "alert",
	Aliases: []string{"alerts"},
	Short:   "Manage alert rules",
}

var alertListCmd = protected(&cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List alert rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]any{}
		pageFilters(cmd, overrides)

		list := app.console.Alerts.Rules
		if err := list.Load(cmd.Context(), overrides); err != nil {
			return fmt.Errorf("failed to list alert rules: %w", err)
		}

		rules := list.Items()
		rows := make([][]string, 0, len(rules))
		for _, r := range rules {
			rows = append(rows, []string{
				r.ID, r.Name, r.Metric, fmt.Sprint(r.Threshold),
				strings.Join(r.Channels, ","), yesNo(r.Enabled),
			})
		}
		return renderPage(cmd, rules, []string{"ID", "NAME", "METRIC", "THRESHOLD", "CHANNELS", "ENABLED"},
			rows, list.Pagination())
	},
}, "/alerts", permConfigWrite)

var alertCreateCmd = protected(&cobra.Command{
	Use:   "create",
	Short: "Create an alert rule from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req types.AlertRuleRequest
		if err := readPayload(cmd, &req); err != nil {
			return err
		}
		req.ID = ""
		return submitAlertRule(cmd, req)
	},
}, "/alerts/new", permConfigWrite)

var alertUpdateCmd = protected(&cobra.Command{
	Use:   "update RULE_ID",
	Short: "Update an alert rule from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req types.AlertRuleRequest
		if err := readPayload(cmd, &req); err != nil {
			return err
		}
		req.ID = args[0]
		return submitAlertRule(cmd, req)
	},
}, "/alerts/edit", permConfigWrite)

func submitAlertRule(cmd *cobra.Command, req types.AlertRuleRequest) error {
	rule, err := app.console.Alerts.Submit(cmd.Context(), req)
	if rule == nil {
		return fmt.Errorf("failed to save alert rule: %w", err)
	}
	success(cmd, "Alert rule %s saved (%s)", rule.Name, rule.ID)
	if err != nil {
		return fmt.Errorf("alert rule saved but the rule list failed to reload: %w", err)
	}
	return nil
}

var alertDeleteCmd = protected(&cobra.Command{
	Use:     "delete RULE_ID",
	Aliases: []string{"rm"},
	Short:   "Delete an alert rule",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.console.Alerts.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete alert rule: %w", err)
		}
		success(cmd, "Alert rule %s deleted", args[0])
		return nil
	},
}, "/alerts", permConfigWrite)

var alertTestCmd = protected(&cobra.Command{
	Use:   "test",
	Short: "Send a test notification for the rule in a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req types.AlertRuleRequest
		if err := readPayload(cmd, &req); err != nil {
			return err
		}
		if err := app.console.Alerts.TestChannel(cmd.Context(), req); err != nil {
			return fmt.Errorf("test notification failed: %w", err)
		}
		success(cmd, "Test notification sent to %s", strings.Join(req.Channels, ", "))
		return nil
	},
}, "/alerts", permConfigWrite)

func init() {
	addPageFlags(alertListCmd)
	for _, c := range []*cobra.Command{alertCreateCmd, alertUpdateCmd, alertTestCmd} {
		c.Flags().StringP("file", "f", "", "Alert rule YAML file, - for stdin")
	}

	alertCmd.AddCommand(alertListCmd)
	alertCmd.AddCommand(alertCreateCmd)
	alertCmd.AddCommand(alertUpdateCmd)
	alertCmd.AddCommand(alertDeleteCmd)
	alertCmd.AddCommand(alertTestCmd)
	rootCmd.AddCommand(alertCmd)
}
