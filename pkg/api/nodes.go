package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cuemby/skyconsole/pkg/client"
	"github.com/cuemby/skyconsole/pkg/types"
)

// NodesAPI wraps the executor node endpoints
type NodesAPI struct {
	caller client.Caller
}

// NewNodesAPI creates the node endpoint wrapper
func NewNodesAPI(caller client.Caller) *NodesAPI {
	return &NodesAPI{caller: caller}
}

func nodePath(nodeID string, rest string) string {
	return "/scheduler/nodes/" + url.PathEscape(nodeID) + rest
}

// List returns the raw node list. The server ignores paging parameters.
func (a *NodesAPI) List(ctx context.Context, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: "/scheduler/nodes", Query: query}, &raw)
	return raw, err
}

// Metrics returns aggregate node counters
func (a *NodesAPI) Metrics(ctx context.Context) (*types.NodeMetrics, error) {
	var m types.NodeMetrics
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: "/scheduler/nodes/metrics"}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Heartbeat returns the heartbeat history of one node
func (a *NodesAPI) Heartbeat(ctx context.Context, nodeID string) (*types.Heartbeat, error) {
	var hb types.Heartbeat
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodGet, Path: nodePath(nodeID, "/heartbeat")}, &hb); err != nil {
		return nil, err
	}
	return &hb, nil
}

// Offline decommissions a node
func (a *NodesAPI) Offline(ctx context.Context, nodeID string) (*types.Node, error) {
	var node types.Node
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodPost, Path: nodePath(nodeID, "/offline")}, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// Rebalance redistributes a node's shards
func (a *NodesAPI) Rebalance(ctx context.Context, nodeID string) (*types.Node, error) {
	var node types.Node
	if err := a.caller.Call(ctx, client.Request{Method: http.MethodPost, Path: nodePath(nodeID, "/rebalance")}, &node); err != nil {
		return nil, err
	}
	return &node, nil
}
