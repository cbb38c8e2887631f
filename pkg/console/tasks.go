package console

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/cuemby/skyconsole/pkg/listing"
	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/rs/zerolog"
)

const (
	ResourceTasks       = "tasks"
	ResourceExecutions  = "executions"
	ResourceTaskMetrics = "tasks.metrics"

	// TaskIDFilter scopes the execution list to one task
	TaskIDFilter = "taskId"
	// RangeFilter selects the time window of executions and metrics
	RangeFilter = "range"
)

// TaskService is the task endpoint surface the controller drives
type TaskService interface {
	List(ctx context.Context, query url.Values) (json.RawMessage, error)
	Get(ctx context.Context, taskID string) (*types.Task, error)
	Create(ctx context.Context, req types.TaskRequest) (*types.Task, error)
	Update(ctx context.Context, taskID string, req types.TaskRequest) (*types.Task, error)
	SetEnabled(ctx context.Context, taskID string, enabled bool) (*types.Task, error)
	Delete(ctx context.Context, taskID string) error
	Trigger(ctx context.Context, taskID string, req types.TriggerRequest) (*types.Execution, error)
	Executions(ctx context.Context, taskID string, query url.Values) (json.RawMessage, error)
	Metrics(ctx context.Context, query url.Values) (*types.TaskMetrics, error)
	CronSuggestions(ctx context.Context, keyword string) ([]types.CronSuggestion, error)
	Export(ctx context.Context) ([]byte, error)
}

// DefaultTaskFilters are the task list filters at start
func DefaultTaskFilters() listing.Filters {
	return listing.Filters{
		"keyword": "",
		"status":  "ALL",
		"owner":   nil,
		"tags":    []string{},
	}
}

// Tasks holds the task list, the execution list of the task being viewed,
// the task counters and the task in detail view. Every successful mutation
// reloads the affected list; a failed mutation reloads nothing.
type Tasks struct {
	svc    TaskService
	logger zerolog.Logger

	List       *listing.Controller[types.Task]
	Executions *listing.Controller[types.Execution]
	Metrics    *listing.Aggregate[types.TaskMetrics]

	mu      sync.Mutex
	current *types.Task
}

// NewTasks creates the task controllers on top of svc
func NewTasks(svc TaskService, opts ...listing.Option) *Tasks {
	t := &Tasks{
		svc:    svc,
		logger: log.WithComponent("console").With().Str("resource", ResourceTasks).Logger(),
	}

	t.List = listing.NewController[types.Task](ResourceTasks, rawFetcher(svc.List),
		append(opts, listing.WithDefaults(DefaultTaskFilters()))...)
	t.Executions = listing.NewController[types.Execution](ResourceExecutions, t.fetchExecutions, opts...)
	t.Metrics = listing.NewAggregate[types.TaskMetrics](ResourceTaskMetrics, valueFetcher(svc.Metrics), opts...)
	return t
}

// fetchExecutions moves the task id filter from the query into the path
func (t *Tasks) fetchExecutions(ctx context.Context, query url.Values) ([]byte, error) {
	taskID := query.Get(TaskIDFilter)
	if taskID == "" {
		return nil, fmt.Errorf("execution list needs a %s filter", TaskIDFilter)
	}
	query.Del(TaskIDFilter)
	return t.svc.Executions(ctx, taskID, query)
}

// LoadExecutions switches the execution list to taskID and loads its first
// page. An empty window leaves the range unset.
func (t *Tasks) LoadExecutions(ctx context.Context, taskID, window string) error {
	filters := listing.Filters{TaskIDFilter: taskID, RangeFilter: nil}
	if window != "" {
		filters[RangeFilter] = window
	}
	return t.Executions.SetFilters(ctx, filters)
}

// LoadMetrics fetches the task counters. An empty window uses the server default.
func (t *Tasks) LoadMetrics(ctx context.Context, window string) (types.TaskMetrics, error) {
	query := url.Values{}
	if window != "" {
		query.Set(RangeFilter, window)
	}
	return t.Metrics.Load(ctx, query)
}

// LoadDetail fetches one task and makes it the current task
func (t *Tasks) LoadDetail(ctx context.Context, taskID string) (*types.Task, error) {
	task, err := t.svc.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.current = task
	t.mu.Unlock()
	return task, nil
}

// Current returns the task loaded by LoadDetail, nil before the first one
func (t *Tasks) Current() *types.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Submit creates the task when req has no id and updates it otherwise, then
// reloads the task list
func (t *Tasks) Submit(ctx context.Context, req types.TaskRequest) (*types.Task, error) {
	var (
		task *types.Task
		err  error
	)
	if req.ID != "" {
		task, err = t.svc.Update(ctx, req.ID, req)
	} else {
		task, err = t.svc.Create(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	t.logger.Info().Str("task", req.Name).Bool("update", req.ID != "").Msg("Task saved")
	return task, t.List.Reload(ctx)
}

// SetEnabled enables or disables a task, then reloads the task list
func (t *Tasks) SetEnabled(ctx context.Context, taskID string, enabled bool) error {
	if _, err := t.svc.SetEnabled(ctx, taskID, enabled); err != nil {
		return err
	}
	t.logger.Info().Str("task_id", taskID).Bool("enabled", enabled).Msg("Task status changed")
	return t.List.Reload(ctx)
}

// Delete removes a task, then reloads the task list
func (t *Tasks) Delete(ctx context.Context, taskID string) error {
	if err := t.svc.Delete(ctx, taskID); err != nil {
		return err
	}
	t.logger.Info().Str("task_id", taskID).Msg("Task deleted")
	return t.List.Reload(ctx)
}

// Trigger runs a task now, then reloads that task's execution list once with
// the execution list's current window. When the list was showing another
// task it is switched to taskID at page 1 with the range cleared.
func (t *Tasks) Trigger(ctx context.Context, taskID string, req types.TriggerRequest) (*types.Execution, error) {
	execution, err := t.svc.Trigger(ctx, taskID, req)
	if err != nil {
		return nil, err
	}
	t.logger.Info().Str("task_id", taskID).Msg("Task triggered")

	if t.Executions.Filters()[TaskIDFilter] == taskID {
		return execution, t.Executions.Reload(ctx)
	}
	return execution, t.Executions.SetFilters(ctx, listing.Filters{TaskIDFilter: taskID, RangeFilter: nil})
}

// CronSuggestions looks up cron expressions for keyword
func (t *Tasks) CronSuggestions(ctx context.Context, keyword string) ([]types.CronSuggestion, error) {
	return t.svc.CronSuggestions(ctx, keyword)
}

// Export downloads every task as CSV
func (t *Tasks) Export(ctx context.Context) ([]byte, error) {
	return t.svc.Export(ctx)
}
