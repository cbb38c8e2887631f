package main

import (
	"fmt"

	"github.com/cuemby/skyconsole/pkg/listing"
	"github.com/spf13/cobra"
)

const (
	permNodeRead    = "node:read"
	permConfigWrite = "config:write"
)

var nodeCmd = &cobra.Command{
	Use:     "node",
	Aliases: []string{"nodes"},
	Short:   "Inspect and manage executor nodes",
}

var nodeListCmd = protected(&cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List executor nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := listing.Filters{}
		if cluster, _ := cmd.Flags().GetString("cluster"); cluster != "" {
			overrides["cluster"] = cluster
		}
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			overrides["status"] = status
		}
		pageFilters(cmd, overrides)

		list := app.console.Nodes.List
		if err := list.Load(cmd.Context(), overrides); err != nil {
			return fmt.Errorf("failed to list nodes: %w", err)
		}

		nodes := list.Items()
		rows := make([][]string, 0, len(nodes))
		for _, n := range nodes {
			rows = append(rows, []string{
				n.ID, n.Name, n.Cluster, n.Host, n.Status,
				fmt.Sprintf("%d%%", n.CPU), fmt.Sprintf("%d%%", n.Memory),
				fmt.Sprint(n.RunningTasks), fmt.Sprint(n.Backlog),
			})
		}
		return renderPage(cmd, nodes,
			[]string{"ID", "NAME", "CLUSTER", "HOST", "STATUS", "CPU", "MEMORY", "RUNNING", "BACKLOG"},
			rows, list.Pagination())
	},
}, "/nodes", permNodeRead)

var nodeMetricsCmd = protected(&cobra.Command{
	Use:   "metrics",
	Short: "Show node counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := app.console.Nodes.LoadMetrics(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load node metrics: %w", err)
		}
		rows := [][]string{
			{"Total nodes", fmt.Sprint(m.TotalNodes)},
			{"Online", fmt.Sprint(m.OnlineNodes)},
			{"Offline", fmt.Sprint(m.OfflineNodes)},
			{"Average CPU", fmt.Sprintf("%.1f%%", m.AvgCPU)},
			{"Average memory", fmt.Sprintf("%.1f%%", m.AvgMemory)},
		}
		return render(cmd, m, []string{"METRIC", "VALUE"}, rows)
	},
}, "/nodes", permNodeRead)

var nodeHeartbeatCmd = protected(&cobra.Command{
	Use:   "heartbeat NODE_ID",
	Short: "Show the heartbeat history of a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hb, err := app.console.Nodes.Heartbeat(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load heartbeat: %w", err)
		}
		rows := [][]string{
			{"Node", fmt.Sprintf("%s (%s)", hb.Name, hb.NodeID)},
			{"Latest", hb.Latest},
			{"Average latency", fmt.Sprintf("%.1fms", hb.AvgLatency)},
			{"Last alert", hb.LastAlert},
			{"Log entries", fmt.Sprint(len(hb.Logs))},
		}
		return render(cmd, hb, []string{"FIELD", "VALUE"}, rows)
	},
}, "/nodes", permNodeRead)

var nodeOfflineCmd = protected(&cobra.Command{
	Use:   "offline NODE_ID",
	Short: "Take a node offline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.console.Nodes.Offline(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to take node offline: %w", err)
		}
		success(cmd, "Node %s is offline", args[0])
		return nil
	},
}, "/nodes", permConfigWrite)

var nodeRebalanceCmd = protected(&cobra.Command{
	Use:   "rebalance NODE_ID",
	Short: "Rebalance the shards of a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.console.Nodes.Rebalance(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to rebalance node: %w", err)
		}
		success(cmd, "Node %s rebalanced", args[0])
		return nil
	},
}, "/nodes", permConfigWrite)

func init() {
	nodeListCmd.Flags().String("cluster", "", "Cluster filter")
	nodeListCmd.Flags().String("status", "", "Status filter")
	addPageFlags(nodeListCmd)

	nodeCmd.AddCommand(nodeListCmd)
	nodeCmd.AddCommand(nodeMetricsCmd)
	nodeCmd.AddCommand(nodeHeartbeatCmd)
	nodeCmd.AddCommand(nodeOfflineCmd)
	nodeCmd.AddCommand(nodeRebalanceCmd)
	rootCmd.AddCommand(nodeCmd)
}
