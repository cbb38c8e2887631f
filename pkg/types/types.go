package types

import (
	"slices"
	"time"
)

// Environment identifies the backend deployment the console points at
type Environment string

const (
	EnvironmentDev  Environment = "dev"
	EnvironmentTest Environment = "test"
	EnvironmentProd Environment = "prod"

	// DefaultEnvironment is used at first start and after logout
	DefaultEnvironment = EnvironmentDev
)

// EnvironmentOption is one entry of the selectable environment list
type EnvironmentOption struct {
	Label string      `json:"label"`
	Value Environment `json:"value"`
}

// Environments is the static list of selectable environments. It is never persisted.
var Environments = []EnvironmentOption{
	{Label: "Development", Value: EnvironmentDev},
	{Label: "Testing", Value: EnvironmentTest},
	{Label: "Production", Value: EnvironmentProd},
}

// Valid reports whether e is one of the selectable environments
func (e Environment) Valid() bool {
	for _, opt := range Environments {
		if opt.Value == e {
			return true
		}
	}
	return false
}

// Profile is the identity returned by the auth service
type Profile struct {
	UserID      int64    `json:"userId,omitempty"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	TenantCode  string   `json:"tenantCode"`
	TenantName  string   `json:"tenantName"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the profile carries permission p
func (p *Profile) HasPermission(perm string) bool {
	return p != nil && perm != "" && slices.Contains(p.Permissions, perm)
}

// HasRole reports whether the profile carries role r
func (p *Profile) HasRole(role string) bool {
	return p != nil && role != "" && slices.Contains(p.Roles, role)
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.Roles = slices.Clone(p.Roles)
	out.Permissions = slices.Clone(p.Permissions)
	return &out
}

// Session is the authenticated identity context held for the console's lifetime.
// It is authenticated only when both AccessToken and Profile are present.
type Session struct {
	Environment  Environment `json:"environment"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	Profile      *Profile    `json:"profile"`
}

// DefaultSession returns the empty session used when nothing is persisted
func DefaultSession() Session {
	return Session{Environment: DefaultEnvironment}
}

// Authenticated reports whether the session holds a token and a profile
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.Profile != nil
}

// Clone returns a deep copy of the session
func (s Session) Clone() Session {
	s.Profile = s.Profile.Clone()
	return s
}

// SessionRecordVersion is the current persisted record schema version
const SessionRecordVersion = 1

// SessionRecord is the durable form of a Session
type SessionRecord struct {
	Version int `json:"version"`
	Session
}

// Credentials are the values the gateway injects into outbound calls
type Credentials struct {
	AccessToken string
	TenantCode  string
	Environment Environment
}

// LoginRequest is the body of the login call
type LoginRequest struct {
	Username   string `json:"username" yaml:"username" validate:"required"`
	Password   string `json:"password" yaml:"password" validate:"required"`
	TenantCode string `json:"tenantCode,omitempty" yaml:"tenantCode"`
}

// TokenResponse is returned by login and refresh. Nil Roles or Permissions
// mean the field was absent from the response.
type TokenResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType,omitempty"`
	ExpiresIn    int64    `json:"expiresIn,omitempty"`
	TenantCode   string   `json:"tenantCode"`
	TenantName   string   `json:"tenantName"`
	Username     string   `json:"username"`
	DisplayName  string   `json:"displayName"`
	Roles        []string `json:"roles"`
	Permissions  []string `json:"permissions"`
}

// Task is a scheduled task definition
type Task struct {
	ID            string         `json:"id" yaml:"id"`
	TenantCode    string         `json:"tenantCode,omitempty" yaml:"tenantCode,omitempty"`
	TenantName    string         `json:"tenantName,omitempty" yaml:"tenantName,omitempty"`
	Name          string         `json:"name" yaml:"name"`
	Group         string         `json:"group" yaml:"group"`
	Type          string         `json:"type" yaml:"type"`
	ExecutorType  string         `json:"executorType" yaml:"executorType"`
	Handler       string         `json:"handler,omitempty" yaml:"handler,omitempty"`
	CronExpr      string         `json:"cronExpr,omitempty" yaml:"cronExpr,omitempty"`
	TimeZone      string         `json:"timeZone,omitempty" yaml:"timeZone,omitempty"`
	RouteStrategy string         `json:"routeStrategy" yaml:"routeStrategy"`
	RetryPolicy   string         `json:"retryPolicy" yaml:"retryPolicy"`
	MaxRetry      int            `json:"maxRetry" yaml:"maxRetry"`
	Timeout       int            `json:"timeout" yaml:"timeout"`
	Owner         string         `json:"owner" yaml:"owner"`
	Tags          []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Status        string         `json:"status,omitempty" yaml:"status,omitempty"`
	Enabled       bool           `json:"enabled" yaml:"enabled"`
	AlertEnabled  bool           `json:"alertEnabled" yaml:"alertEnabled"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt     *time.Time     `json:"updatedAt,omitempty" yaml:"-"`
	LastTrigger   *time.Time     `json:"lastTrigger,omitempty" yaml:"-"`
	LastNode      string         `json:"lastNode,omitempty" yaml:"-"`
}

// TaskRequest is the create/update payload for a task
type TaskRequest struct {
	ID            string         `json:"id,omitempty" yaml:"id"`
	Name          string         `json:"name" yaml:"name" validate:"required"`
	Group         string         `json:"group" yaml:"group" validate:"required"`
	Type          string         `json:"type" yaml:"type" validate:"required"`
	ExecutorType  string         `json:"executorType" yaml:"executorType" validate:"required"`
	Handler       string         `json:"handler,omitempty" yaml:"handler"`
	CronExpr      string         `json:"cronExpr,omitempty" yaml:"cronExpr"`
	TimeZone      string         `json:"timeZone,omitempty" yaml:"timeZone"`
	RouteStrategy string         `json:"routeStrategy" yaml:"routeStrategy" validate:"required"`
	RetryPolicy   string         `json:"retryPolicy" yaml:"retryPolicy" validate:"required"`
	MaxRetry      int            `json:"maxRetry" yaml:"maxRetry" validate:"gte=0"`
	Timeout       int            `json:"timeout" yaml:"timeout" validate:"gte=0"`
	Owner         string         `json:"owner" yaml:"owner" validate:"required"`
	Tags          []string       `json:"tags,omitempty" yaml:"tags"`
	IdempotentKey string         `json:"idempotentKey,omitempty" yaml:"idempotentKey"`
	Parameters    map[string]any `json:"parameters,omitempty" yaml:"parameters"`
	Description   string         `json:"description,omitempty" yaml:"description"`
	AlertEnabled  bool           `json:"alertEnabled" yaml:"alertEnabled"`
}

// TriggerRequest is the body of a manual trigger
type TriggerRequest struct {
	Manual      bool   `json:"manual"`
	Operator    string `json:"operator,omitempty"`
	ShardingKey string `json:"shardingKey,omitempty"`
	Payload     string `json:"payload,omitempty"`
}

// Execution is one run of a task
type Execution struct {
	ID          string         `json:"id"`
	TaskID      string         `json:"taskId"`
	TriggerTime string         `json:"triggerTime"`
	Node        string         `json:"node"`
	Status      string         `json:"status"`
	Duration    int64          `json:"duration"`
	Retry       int            `json:"retry"`
	Log         string         `json:"log,omitempty"`
	TraceID     string         `json:"traceId,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// TaskMetrics are aggregate task counters
type TaskMetrics struct {
	TotalTasks    int64            `json:"totalTasks"`
	InactiveTasks int64            `json:"inactiveTasks"`
	SuccessRate   float64          `json:"successRate"`
	FailedToday   int64            `json:"failedToday"`
	Backlog       int64            `json:"backlog"`
	Trend         []map[string]any `json:"trend,omitempty"`
	RecentEvents  []map[string]any `json:"recentEvents,omitempty"`
	TopFailed     []map[string]any `json:"topFailed,omitempty"`
}

// CronSuggestion is one entry of the cron lookup
type CronSuggestion map[string]string

// Node is an executor node
type Node struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Cluster       string     `json:"cluster"`
	Host          string     `json:"host"`
	Status        string     `json:"status"`
	CPU           int        `json:"cpu"`
	Memory        int        `json:"memory"`
	RunningTasks  int        `json:"runningTasks"`
	Backlog       int        `json:"backlog"`
	Delay         int64      `json:"delay"`
	AlertLevel    string     `json:"alertLevel,omitempty"`
	ShardCount    int        `json:"shardCount"`
	RegisterTime  *time.Time `json:"registerTime,omitempty"`
	LastHeartbeat *time.Time `json:"lastHeartbeat,omitempty"`
}

// NodeMetrics are aggregate node counters
type NodeMetrics struct {
	TotalNodes   int64   `json:"totalNodes"`
	OnlineNodes  int64   `json:"onlineNodes"`
	OfflineNodes int64   `json:"offlineNodes"`
	AvgCPU       float64 `json:"avgCpu"`
	AvgMemory    float64 `json:"avgMemory"`
}

// Heartbeat is the heartbeat history of one node
type Heartbeat struct {
	NodeID     string           `json:"nodeId"`
	Name       string           `json:"name"`
	Latest     string           `json:"latest"`
	AvgLatency float64          `json:"avgLatency"`
	LastAlert  string           `json:"lastAlert,omitempty"`
	Logs       []map[string]any `json:"logs,omitempty"`
}

// AlertRule is an alerting rule
type AlertRule struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Metric      string     `json:"metric"`
	Threshold   float64    `json:"threshold"`
	Channels    []string   `json:"channels"`
	Subscribers []string   `json:"subscribers"`
	Enabled     bool       `json:"enabled"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// AlertRuleRequest is the create/update/test payload for an alert rule
type AlertRuleRequest struct {
	ID          string   `json:"id,omitempty" yaml:"id"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Metric      string   `json:"metric" yaml:"metric" validate:"required"`
	Threshold   *float64 `json:"threshold" yaml:"threshold" validate:"required"`
	Channels    []string `json:"channels,omitempty" yaml:"channels"`
	Subscribers []string `json:"subscribers,omitempty" yaml:"subscribers"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
}

// Pagination is the page window of a list
type Pagination struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}
