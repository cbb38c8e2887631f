/*
Package types defines the data structures shared across the SkyTask console.

The package holds three groups of types:

Session State:
  - Environment: dev, test or prod backend target, plus the static Environments list
  - Profile: identity, tenant, roles and permissions returned by the auth service
  - Session: environment + access token + refresh token + profile
  - SessionRecord: the versioned durable form of a Session
  - Credentials: what the gateway injects into outbound calls

Auth Payloads:
  - LoginRequest, TokenResponse

Scheduler Records:
  - Task, TaskRequest, TriggerRequest, Execution, TaskMetrics, CronSuggestion
  - Node, NodeMetrics, Heartbeat
  - AlertRule, AlertRuleRequest
  - Pagination

Scheduler records are carried between the gateway and the views; the console core
only interprets their list envelope (see package listing).

# Session Invariant

A session is authenticated iff AccessToken is non-empty AND Profile is present:

	s := types.Session{AccessToken: "t1"}
	s.Authenticated() // false, no profile

	s.Profile = &types.Profile{Username: "ops"}
	s.Authenticated() // true

Absent vs empty: TokenResponse.Roles and TokenResponse.Permissions are nil when the
field was missing from the response and non-nil (possibly empty) when it was present.
The session manager relies on that distinction when merging a refresh response.
*/
package types
