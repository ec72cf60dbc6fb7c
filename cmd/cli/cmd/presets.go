// Package cmd - presets command
package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"dbu-cost/core/scenario"
	"dbu-cost/core/usage"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List workload presets",
		Long: `List the built-in workload presets with the DBU/month each derives
on its own. Use one with estimate --preset or "preset" in a scenario file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("KEY", "NAME", "DBU/MONTH", "DESCRIPTION")
			for _, p := range scenario.Presets() {
				t.Row(p.Key, p.Label, usage.FormatNumber(usage.CalcUsage(p.Usage).Quantity), p.Description)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return err
		},
	}
}
