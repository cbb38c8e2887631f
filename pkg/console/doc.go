// Package console builds the console's resource controllers on top of
// package listing: Tasks (task list, per-task execution list, counters and
// the task in detail view), Nodes (executor nodes and their counters) and
// Alerts (alert rules).
//
// Mutating actions perform their single call and then reload the affected
// list with its current filters and window. Trigger reloads the execution
// list of the triggered task instead of the task list. A failed mutation
// reloads nothing and returns the gateway error unchanged.
package console
