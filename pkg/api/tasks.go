package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cuemby/skyconsole/pkg/client"
	"github.com/cuemby/skyconsole/pkg/types"
)

// TasksAPI wraps the scheduler task endpoints
type TasksAPI struct {
	caller client.Caller
}

// NewTasksAPI creates the task endpoint wrapper
func NewTasksAPI(caller client.Caller) *TasksAPI {
	return &TasksAPI{caller: caller}
}

func taskPath(taskID string, rest string) string {
	return "/tasks/" + url.PathEscape(taskID) + rest
}

// List returns the raw paginated task envelope
func (a *TasksAPI) List(ctx context.Context, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: "/tasks", Query: query}, &raw)
	return raw, err
}

// Get returns one task
func (a *TasksAPI) Get(ctx context.Context, taskID string) (*types.Task, error) {
	var task types.Task
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: taskPath(taskID, "")}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create creates a task
func (a *TasksAPI) Create(ctx context.Context, req types.TaskRequest) (*types.Task, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var task types.Task
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodPost, Path: "/tasks", Body: req}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update replaces a task definition
func (a *TasksAPI) Update(ctx context.Context, taskID string, req types.TaskRequest) (*types.Task, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var task types.Task
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodPut, Path: taskPath(taskID, ""), Body: req}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SetEnabled enables or disables a task
func (a *TasksAPI) SetEnabled(ctx context.Context, taskID string, enabled bool) (*types.Task, error) {
	var task types.Task
	err := a.caller.Call(ctx, client.Request{
		Method: http.MethodPatch,
		Path:   taskPath(taskID, "/status"),
		Body:   map[string]bool{"enabled": enabled},
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task
func (a *TasksAPI) Delete(ctx context.Context, taskID string) error {
	return a.caller.Call(ctx, client.Request{Method: http.MethodDelete, Path: taskPath(taskID, "")}, nil)
}

// Trigger runs a task now and returns the accepted execution
func (a *TasksAPI) Trigger(ctx context.Context, taskID string, req types.TriggerRequest) (*types.Execution, error) {
	var execution types.Execution
	err := a.caller.Call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   taskPath(taskID, "/trigger"),
		Body:   req,
	}, &execution)
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

// Executions returns the raw paginated execution envelope of one task
func (a *TasksAPI) Executions(ctx context.Context, taskID string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: taskPath(taskID, "/records"), Query: query}, &raw)
	return raw, err
}

// Metrics returns aggregate task counters
func (a *TasksAPI) Metrics(ctx context.Context, query url.Values) (*types.TaskMetrics, error) {
	var m types.TaskMetrics
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: "/tasks/metrics", Query: query}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CronSuggestions looks up cron expressions matching keyword
func (a *TasksAPI) CronSuggestions(ctx context.Context, keyword string) ([]types.CronSuggestion, error) {
	query := url.Values{}
	if keyword != "" {
		query.Set("keyword", keyword)
	}
	var out []types.CronSuggestion
	err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: "/tasks/cron/suggestions", Query: query}, &out)
	return out, err
}

// Export downloads all tasks as CSV
func (a *TasksAPI) Export(ctx context.Context) ([]byte, error) {
	var data []byte
	err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: "/tasks/export"}, &data)
	return data, err
}
