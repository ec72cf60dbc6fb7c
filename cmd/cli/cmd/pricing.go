// Package cmd - pricing table commands
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"dbu-cost/core/catalog"
	"dbu-cost/core/output"
	"dbu-cost/core/pricing"
)

func newPricingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Inspect and validate pricing tables",
		Long: `Pricing table commands.

A table passes the load gate when it decodes, every record has its
selection fields, source URL and effective date, no rate is negative and
no two records share the same cloud, region, edition, service and
serverless combination. Legacy pricing.json files are converted first.`,
	}
	cmd.AddCommand(newPricingValidateCmd())
	cmd.AddCommand(newPricingListCmd())
	cmd.AddCommand(newPricingOptionsCmd())
	return cmd
}

// gateOnly checks a file without touching the last-known-good cache
func gateOnly(path string) (*catalog.LoadResult, error) {
	return catalog.NewLoader(catalog.WithCacheDir(""), catalog.WithFallback(false)).Load(path)
}

func newPricingValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Run a pricing table through the load gate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := gateOnly(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: OK\n", args[0])
			fmt.Fprintf(w, "  version:  %s\n", res.Metadata.Version)
			fmt.Fprintf(w, "  currency: %s\n", res.Metadata.Currency)
			fmt.Fprintf(w, "  records:  %d\n", len(res.Table.Records))
			if res.Metadata.UsedLegacyConversion {
				fmt.Fprintln(w, "  converted from the legacy pricing.json format")
			}
			return nil
		},
	}
}

func newPricingListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List the records of a pricing table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := gateOnly(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Table)
			}
			return renderRecords(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the normalized table as JSON")
	return cmd
}

func renderRecords(w io.Writer, res *catalog.LoadResult) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CLOUD", "REGION", "EDITION", "SERVICE", "SERVERLESS", "RATE", "EFFECTIVE")
	for _, r := range res.Table.Records {
		t.Row(r.Cloud, r.Region, r.Edition, r.Service, strconv.FormatBool(r.Serverless),
			output.Rate(r.UnitRate), r.EffectiveFrom)
	}
	_, err := fmt.Fprintf(w, "%s\n%d records · version %s · rates in %s\n",
		t.String(), len(res.Table.Records), res.Table.Version, res.Table.Currency)
	return err
}

func newPricingOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options <file>",
		Short: "List the distinct values accepted by each rate query field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := gateOnly(args[0])
			if err != nil {
				return err
			}
			opts := pricing.Options(res.Table)
			fields := make([]string, 0, len(opts))
			for field := range opts {
				fields = append(fields, field)
			}
			sort.Strings(fields)

			w := cmd.OutOrStdout()
			for _, field := range fields {
				fmt.Fprintf(w, "%-11s %s\n", field+":", strings.Join(opts[field], ", "))
			}
			return nil
		},
	}
}
