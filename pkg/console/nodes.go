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

const (
	ResourceNodes       = "nodes"
	ResourceNodeMetrics = "nodes.metrics"
)

// NodeService is the executor node endpoint surface the controller drives
type NodeService interface {
	List(ctx context.Context, query url.Values) (json.RawMessage, error)
	Metrics(ctx context.Context) (*types.NodeMetrics, error)
	Heartbeat(ctx context.Context, nodeID string) (*types.Heartbeat, error)
	Offline(ctx context.Context, nodeID string) (*types.Node, error)
	Rebalance(ctx context.Context, nodeID string) (*types.Node, error)
}

// Nodes holds the executor node list and the node counters
type Nodes struct {
	svc    NodeService
	logger zerolog.Logger

	List    *listing.Controller[types.Node]
	Metrics *listing.Aggregate[types.NodeMetrics]
}

// NewNodes creates the node controllers on top of svc
func NewNodes(svc NodeService, opts ...listing.Option) *Nodes {
	metrics := func(ctx context.Context, _ url.Values) (*types.NodeMetrics, error) {
		return svc.Metrics(ctx)
	}
	return &Nodes{
		svc:     svc,
		logger:  log.WithComponent("console").With().Str("resource", ResourceNodes).Logger(),
		List:    listing.NewController[types.Node](ResourceNodes, rawFetcher(svc.List), opts...),
		Metrics: listing.NewAggregate[types.NodeMetrics](ResourceNodeMetrics, valueFetcher(metrics), opts...),
	}
}

// LoadMetrics fetches the node counters
func (n *Nodes) LoadMetrics(ctx context.Context) (types.NodeMetrics, error) {
	return n.Metrics.Load(ctx, nil)
}

// Heartbeat fetches the heartbeat history of one node
func (n *Nodes) Heartbeat(ctx context.Context, nodeID string) (*types.Heartbeat, error) {
	return n.svc.Heartbeat(ctx, nodeID)
}

// Offline takes a node out of scheduling, then reloads the node list
func (n *Nodes) Offline(ctx context.Context, nodeID string) error {
	if _, err := n.svc.Offline(ctx, nodeID); err != nil {
		return err
	}
	n.logger.Info().Str("node_id", nodeID).Msg("Node taken offline")
	return n.List.Reload(ctx)
}

// Rebalance redistributes a node's shards, then reloads the node list
func (n *Nodes) Rebalance(ctx context.Context, nodeID string) error {
	if _, err := n.svc.Rebalance(ctx, nodeID); err != nil {
		return err
	}
	n.logger.Info().Str("node_id", nodeID).Msg("Node shards rebalanced")
	return n.List.Reload(ctx)
}
