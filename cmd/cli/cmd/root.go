// Package cmd provides the CLI commands for dbu-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dbu-cost/internal/config"
	"dbu-cost/internal/errors"
	"dbu-cost/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	root := &cobra.Command{
		Use:   "dbu-cost",
		Short: "Estimate monthly DBU cost for Databricks workloads",
		Long: `dbu-cost estimates the monthly cost of a Databricks workload from a
versioned pricing table and a loosely specified usage description.

Every estimate carries the pricing version, the assumptions made while
deriving DBU/month and advisory warnings for degraded inputs.

Examples:
  dbu-cost estimate --preset jobs_etl --cloud Azure --region eastus \
      --edition Premium --service "Jobs Compute"
  dbu-cost estimate scenario.hcl --format json
  dbu-cost estimate base.yaml --compare bigger.yaml --sensitivity
  dbu-cost pricing validate pricing.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile, verbose)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newEstimateCmd())
	root.AddCommand(newPricingCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI, printing typed error issues to stderr
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		printError(root, err)
	}
	return err
}

func printError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "Error: %v\n", err)
	if typed, ok := errors.AsError(err); ok {
		for _, issue := range typed.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
}

func initConfig(path string, verbose bool) error {
	missing := false
	if path == "" {
		path = config.DefaultPath()
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		missing = true
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	config.Set(cfg)

	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	if err := logging.Initialize(logCfg); err != nil {
		return errors.Config("logging could not be initialized", err)
	}
	if missing {
		logging.Warn("config file not found; using defaults", zap.String("path", path))
	}
	logging.Debug("configuration loaded")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dbu-cost version %s\n", Version)
		},
	}
}
