package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
)

var styles = struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
	Success: lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
	Cell:    lipgloss.NewStyle().Padding(0, 1),
}

// success prints a ✓ line to the command output
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return strings.ToLower(format)
}

// render writes v in the selected output format. Table output uses headers
// and rows; structured formats encode v itself.
func render(cmd *cobra.Command, v any, headers []string, rows [][]string) error {
	w := cmd.OutOrStdout()
	switch outputFormat(cmd) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "table", "":
		if len(rows) == 0 {
			fmt.Fprintln(w, styles.Muted.Render("No results"))
			return nil
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(styles.Muted).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return styles.Header
				}
				return styles.Cell
			})
		fmt.Fprintln(w, t.Render())
		return nil
	default:
		return fmt.Errorf("unknown output format %q", outputFormat(cmd))
	}
}

// renderPage writes a list with its page window footer
func renderPage(cmd *cobra.Command, v any, headers []string, rows [][]string, p types.Pagination) error {
	if err := render(cmd, v, headers, rows); err != nil {
		return err
	}
	if outputFormat(cmd) == "table" {
		fmt.Fprintln(cmd.OutOrStdout(), styles.Muted.Render(
			fmt.Sprintf("page %d, size %d, total %d", p.Page, p.Size, p.Total)))
	}
	return nil
}

func dumpMetrics(w io.Writer) error {
	fmt.Fprintln(w)
	return metrics.WriteText(w, prometheus.DefaultGatherer)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
