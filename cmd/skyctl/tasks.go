package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cuemby/skyconsole/pkg/console"
	"github.com/cuemby/skyconsole/pkg/listing"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/spf13/cobra"
)

const (
	permTaskRead    = "task:read"
	permTaskWrite   = "task:write"
	permTaskTrigger = "task:trigger"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks"},
	Short:   "Manage scheduled tasks",
}

var taskListCmd = protected(&cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		keyword, _ := flags.GetString("keyword")
		status, _ := flags.GetString("status")
		owner, _ := flags.GetString("owner")
		tags, _ := flags.GetStringSlice("tags")

		overrides := listing.Filters{
			"keyword": keyword,
			"status":  strings.ToUpper(status),
			"tags":    tags,
		}
		if owner != "" {
			overrides["owner"] = owner
		}
		pageFilters(cmd, overrides)

		list := app.console.Tasks.List
		if err := list.Load(cmd.Context(), overrides); err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		tasks := list.Items()
		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, []string{
				t.ID, t.Name, t.Group, t.CronExpr, t.Owner, t.Status, yesNo(t.Enabled),
			})
		}
		return renderPage(cmd, tasks, []string{"ID", "NAME", "GROUP", "CRON", "OWNER", "STATUS", "ENABLED"},
			rows, list.Pagination())
	},
}, "/tasks", permTaskRead)

var taskGetCmd = protected(&cobra.Command{
	Use:   "get TASK_ID",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := app.console.Tasks.LoadDetail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}
		rows := [][]string{
			{"ID", t.ID},
			{"Name", t.Name},
			{"Group", t.Group},
			{"Type", t.Type},
			{"Executor", t.ExecutorType},
			{"Handler", t.Handler},
			{"Cron", t.CronExpr},
			{"Route strategy", t.RouteStrategy},
			{"Retry", fmt.Sprintf("%s (max %d)", t.RetryPolicy, t.MaxRetry)},
			{"Timeout", fmt.Sprintf("%ds", t.Timeout)},
			{"Owner", t.Owner},
			{"Tags", strings.Join(t.Tags, ", ")},
			{"Status", t.Status},
			{"Enabled", yesNo(t.Enabled)},
			{"Last node", t.LastNode},
		}
		return render(cmd, t, []string{"FIELD", "VALUE"}, rows)
	},
}, "/tasks", permTaskRead)

var taskCreateCmd = protected(&cobra.Command{
	Use:   "create",
	Short: "Create a task from a YAML file",
	Example: `  # task.yaml
  name: nightly-report
  group: reports
  type: CRON
  executorType: HTTP
  cronExpr: "0 0 2 * * ?"
  routeStrategy: ROUND_ROBIN
  retryPolicy: FIXED
  maxRetry: 3
  timeout: 60
  owner: ops

  skyctl task create -f task.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req types.TaskRequest
		if err := readPayload(cmd, &req); err != nil {
			return err
		}
		req.ID = ""
		return submitTask(cmd, req)
	},
}, "/tasks/new", permTaskWrite)

var taskUpdateCmd = protected(&cobra.Command{
	Use:   "update TASK_ID",
	Short: "Update a task from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req types.TaskRequest
		if err := readPayload(cmd, &req); err != nil {
			return err
		}
		req.ID = args[0]
		return submitTask(cmd, req)
	},
}, "/tasks/edit", permTaskWrite)

func submitTask(cmd *cobra.Command, req types.TaskRequest) error {
	t, err := app.console.Tasks.Submit(cmd.Context(), req)
	if t == nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	success(cmd, "Task %s saved (%s)", t.Name, t.ID)
	if err != nil {
		return fmt.Errorf("task saved but the task list failed to reload: %w", err)
	}
	return nil
}

var taskDeleteCmd = protected(&cobra.Command{
	Use:     "delete TASK_ID",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.console.Tasks.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		success(cmd, "Task %s deleted", args[0])
		return nil
	},
}, "/tasks", permTaskWrite)

func taskToggleCmd(use string, enabled bool) *cobra.Command {
	return protected(&cobra.Command{
		Use:   use + " TASK_ID",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.console.Tasks.SetEnabled(cmd.Context(), args[0], enabled); err != nil {
				return fmt.Errorf("failed to %s task: %w", use, err)
			}
			success(cmd, "Task %s %sd", args[0], use)
			return nil
		},
	}, "/tasks", permTaskWrite)
}

var taskTriggerCmd = protected(&cobra.Command{
	Use:   "trigger TASK_ID",
	Short: "Run a task now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		req := types.TriggerRequest{Manual: true}
		req.Operator, _ = flags.GetString("operator")
		req.ShardingKey, _ = flags.GetString("sharding-key")
		req.Payload, _ = flags.GetString("payload")
		if req.Operator == "" && app.session.IsAuthenticated() {
			req.Operator = app.session.Snapshot().Profile.Username
		}

		tasks := app.console.Tasks
		execution, err := tasks.Trigger(cmd.Context(), args[0], req)
		if execution == nil {
			return fmt.Errorf("failed to trigger task: %w", err)
		}
		success(cmd, "Task %s triggered, execution %s", args[0], execution.ID)
		if err != nil {
			return fmt.Errorf("execution list failed to reload: %w", err)
		}
		return renderExecutions(cmd, tasks.Executions)
	},
}, "/tasks", permTaskTrigger)

var taskExecutionsCmd = protected(&cobra.Command{
	Use:   "executions TASK_ID",
	Short: "List the executions of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		window, _ := cmd.Flags().GetString("range")
		overrides := listing.Filters{console.TaskIDFilter: args[0]}
		if window != "" {
			overrides[console.RangeFilter] = window
		}
		pageFilters(cmd, overrides)

		list := app.console.Tasks.Executions
		if err := list.Load(cmd.Context(), overrides); err != nil {
			return fmt.Errorf("failed to list executions: %w", err)
		}
		return renderExecutions(cmd, list)
	},
}, "/executions", permTaskRead)

func renderExecutions(cmd *cobra.Command, list *listing.Controller[types.Execution]) error {
	executions := list.Items()
	rows := make([][]string, 0, len(executions))
	for _, e := range executions {
		rows = append(rows, []string{
			e.ID, e.TriggerTime, e.Node, e.Status, fmt.Sprintf("%dms", e.Duration), fmt.Sprint(e.Retry),
		})
	}
	return renderPage(cmd, executions, []string{"ID", "TRIGGERED", "NODE", "STATUS", "DURATION", "RETRY"},
		rows, list.Pagination())
}

var taskMetricsCmd = protected(&cobra.Command{
	Use:   "metrics",
	Short: "Show task counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, _ := cmd.Flags().GetString("range")
		m, err := app.console.Tasks.LoadMetrics(cmd.Context(), window)
		if err != nil {
			return fmt.Errorf("failed to load task metrics: %w", err)
		}
		rows := [][]string{
			{"Total tasks", fmt.Sprint(m.TotalTasks)},
			{"Inactive tasks", fmt.Sprint(m.InactiveTasks)},
			{"Success rate", fmt.Sprintf("%.2f%%", m.SuccessRate)},
			{"Failed today", fmt.Sprint(m.FailedToday)},
			{"Backlog", fmt.Sprint(m.Backlog)},
		}
		return render(cmd, m, []string{"METRIC", "VALUE"}, rows)
	},
}, "/dashboard", permTaskRead)

var taskCronCmd = protected(&cobra.Command{
	Use:   "cron [KEYWORD]",
	Short: "Look up cron expressions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := ""
		if len(args) == 1 {
			keyword = args[0]
		}
		suggestions, err := app.console.Tasks.CronSuggestions(cmd.Context(), keyword)
		if err != nil {
			return fmt.Errorf("failed to look up cron expressions: %w", err)
		}
		rows := make([][]string, 0, len(suggestions))
		for _, s := range suggestions {
			rows = append(rows, []string{s["expression"], s["desc"]})
		}
		return render(cmd, suggestions, []string{"EXPRESSION", "DESCRIPTION"}, rows)
	},
}, "/tasks/cron", permTaskRead)

var taskExportCmd = protected(&cobra.Command{
	Use:   "export",
	Short: "Export every task as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := app.console.Tasks.Export(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to export tasks: %w", err)
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		success(cmd, "Exported tasks to %s", out)
		return nil
	},
}, "/tasks/export", permTaskRead)

func init() {
	taskListCmd.Flags().String("keyword", "", "Match name or handler")
	taskListCmd.Flags().String("status", "ALL", "Status filter")
	taskListCmd.Flags().String("owner", "", "Owner filter")
	taskListCmd.Flags().StringSlice("tags", nil, "Tag filter (comma-separated)")
	addPageFlags(taskListCmd)

	for _, c := range []*cobra.Command{taskCreateCmd, taskUpdateCmd} {
		c.Flags().StringP("file", "f", "", "Task YAML file, - for stdin")
	}

	taskTriggerCmd.Flags().String("operator", "", "Operator recorded on the execution (default: logged in user)")
	taskTriggerCmd.Flags().String("sharding-key", "", "Sharding key")
	taskTriggerCmd.Flags().String("payload", "", "Payload passed to the handler")

	taskExecutionsCmd.Flags().String("range", "", "Time window, e.g. 24h or 7d")
	addPageFlags(taskExecutionsCmd)

	taskMetricsCmd.Flags().String("range", "", "Time window, e.g. 24h or 7d")

	taskExportCmd.Flags().String("out", "", "Write the CSV to a file instead of stdout")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskGetCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskToggleCmd("enable", true))
	taskCmd.AddCommand(taskToggleCmd("disable", false))
	taskCmd.AddCommand(taskTriggerCmd)
	taskCmd.AddCommand(taskExecutionsCmd)
	taskCmd.AddCommand(taskMetricsCmd)
	taskCmd.AddCommand(taskCronCmd)
	taskCmd.AddCommand(taskExportCmd)
	rootCmd.AddCommand(taskCmd)
}
