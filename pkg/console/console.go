package console

import (
	"github.com/cuemby/skyconsole/pkg/api"
	"github.com/cuemby/skyconsole/pkg/client"
	"github.com/cuemby/skyconsole/pkg/listing"
)

// Console bundles the resource controllers of one console session
type Console struct {
	Tasks  *Tasks
	Nodes  *Nodes
	Alerts *Alerts
}

// New creates every resource controller on top of the gateway caller
func New(caller client.Caller, opts ...listing.Option) *Console {
	return &Console{
		Tasks:  NewTasks(api.NewTasksAPI(caller), opts...),
		Nodes:  NewNodes(api.NewNodesAPI(caller), opts...),
		Alerts: NewAlerts(api.NewAlertsAPI(caller), opts...),
	}
}
