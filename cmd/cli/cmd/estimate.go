// Package cmd - estimate command
package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dbu-cost/core/catalog"
	"dbu-cost/core/engine"
	"dbu-cost/core/input"
	"dbu-cost/core/output"
	"dbu-cost/core/rounding"
	"dbu-cost/core/scenario"
	"dbu-cost/core/types"
	"dbu-cost/internal/config"
	"dbu-cost/internal/errors"
	"dbu-cost/internal/logging"
)

type estimateOptions struct {
	pricingPath   string
	preset        string
	format        string
	rounding      string
	scale         int
	fxRate        float64
	currency      string
	sensitivity   float64
	compare       string
	noAssumptions bool

	dbuPerMonth       float64
	clusterDBUPerHour float64
	hoursPerMonth     float64

	cloud      string
	region     string
	edition    string
	service    string
	serverless bool
}

func newEstimateCmd() *cobra.Command {
	o := &estimateOptions{}
	cmd := &cobra.Command{
		Use:   "estimate [scenario-file]",
		Short: "Estimate the monthly cost of a workload",
		Long: `Estimate the monthly DBU cost of a workload.

The scenario comes from an optional .hcl, .yaml or .json file, a preset,
and flags. Flags override the file, the file overrides the config.

Examples:
  dbu-cost estimate scenario.hcl
  dbu-cost estimate --preset sql_warehouse --cloud AWS --region us-east-1 \
      --edition Premium --service "SQL Compute"
  dbu-cost estimate --dbu-per-month 1200 --cloud Azure --region eastus \
      --edition Standard --service "Jobs Compute" --fx-rate 0.92 --currency EUR
  dbu-cost estimate base.yaml --compare variant.yaml --format markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runEstimate(cmd, o, path)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.pricingPath, "pricing", "p", "", "pricing table file (default from config)")
	f.StringVar(&o.preset, "preset", "", "workload preset filling unset usage fields ("+strings.Join(scenario.Keys(), ", ")+")")
	f.StringVarP(&o.format, "format", "f", "", "output format ("+strings.Join(config.Formats, ", ")+")")
	f.StringVar(&o.rounding, "rounding", "", "rounding mode (half-up, bankers)")
	f.IntVar(&o.scale, "scale", 2, "decimal places of rounded amounts")
	f.Float64Var(&o.fxRate, "fx-rate", 1, "multiplier applied to every table rate")
	f.StringVar(&o.currency, "currency", "", "currency code to label the result with")
	f.Float64Var(&o.sensitivity, "sensitivity", 0, "min/max band in percent applied to nodes, hours and efficiency (0 turns off the file's band)")
	f.StringVar(&o.compare, "compare", "", "variant scenario file to compare against")
	f.BoolVar(&o.noAssumptions, "no-assumptions", false, "omit the assumption log")

	f.Float64Var(&o.dbuPerMonth, "dbu-per-month", 0, "monthly DBU, used as-is")
	f.Float64Var(&o.clusterDBUPerHour, "cluster-dbu-per-hour", 0, "cluster DBU per hour")
	f.Float64Var(&o.hoursPerMonth, "hours-per-month", 0, "cluster runtime hours per month")

	f.StringVar(&o.cloud, "cloud", "", "rate query cloud")
	f.StringVar(&o.region, "region", "", "rate query region")
	f.StringVar(&o.edition, "edition", "", "rate query edition")
	f.StringVar(&o.service, "service", "", "rate query service")
	f.BoolVar(&o.serverless, "serverless", false, "select serverless pricing")
	return cmd
}

func runEstimate(cmd *cobra.Command, o *estimateOptions, path string) error {
	cfg := config.Get()
	log := logging.Named("estimate")

	req, err := o.request(cmd, path)
	if err != nil {
		return err
	}
	if err := o.applyOptions(cmd, cfg, req); err != nil {
		return err
	}
	if req.Scenario.RateQuery == nil {
		log.Warn("no rate query given; usage will be priced at 0")
	}

	formatter, err := o.formatter(cfg)
	if err != nil {
		return err
	}
	band, err := o.band(cmd, req)
	if err != nil {
		return err
	}

	loaded, err := loadPricing(cfg, o.pricingPath)
	if err != nil {
		return err
	}

	result := engine.Estimate(req.Scenario, loaded.Table, &req.Options)
	log.Debug("estimate computed",
		zap.Float64("quantity", result.Usage.Quantity),
		zap.Float64("total", result.Total),
		zap.Strings("warnings", warningStrings(result.Meta.Warnings)))

	report := output.NewReport(req.Name, result, rounding.Resolve(req.Options.Rounding).Scale)
	report.Source = req.Source.Path
	report.SourceDigest = req.Source.Digest
	report.Query = req.Scenario.RateQuery
	report.PricingFromCache = loaded.Metadata.FromCache
	report.PricingIssues = loaded.Issues
	report.HideAssumptions = o.noAssumptions || !cfg.Output.ShowAssumptions

	if band != nil {
		sens := scenario.Sensitivity(req.Scenario, loaded.Table, &req.Options, *band)
		report.Sensitivity = &sens
	}

	if o.compare != "" {
		variant, err := input.Load(o.compare)
		if err != nil {
			return err
		}
		if variant.Scenario.RateQuery == nil && req.Scenario.RateQuery != nil {
			q := *req.Scenario.RateQuery
			variant.Scenario.RateQuery = &q
		}
		if err := o.applyOptions(cmd, cfg, variant); err != nil {
			return err
		}
		vres := engine.Estimate(variant.Scenario, loaded.Table, &variant.Options)
		delta := scenario.Compare(result, vres)
		report.Variant = &vres
		report.Delta = &delta
	}

	return formatter.Render(cmd.OutOrStdout(), report)
}

// request assembles the scenario from the file, the preset and the usage
// and rate-query flags, in increasing precedence
func (o *estimateOptions) request(cmd *cobra.Command, path string) (*input.Request, error) {
	var (
		req *input.Request
		err error
	)
	if path != "" {
		req, err = input.Load(path)
		if err == nil && o.preset != "" {
			err = applyPreset(req, o.preset)
		}
	} else {
		req, err = input.Resolve(&input.Document{Preset: o.preset}, input.Source{})
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	u := &req.Scenario.Usage
	if flags.Changed("dbu-per-month") {
		u.DBUPerMonth = types.Float(o.dbuPerMonth)
	}
	if flags.Changed("cluster-dbu-per-hour") {
		u.ClusterDBUPerHour = types.Float(o.clusterDBUPerHour)
	}
	if flags.Changed("hours-per-month") {
		u.HoursPerMonth = types.Float(o.hoursPerMonth)
	}

	if flags.Changed("cloud") || flags.Changed("region") || flags.Changed("edition") ||
		flags.Changed("service") || flags.Changed("serverless") {
		q := types.RateQuery{}
		if req.Scenario.RateQuery != nil {
			q = *req.Scenario.RateQuery
		}
		if flags.Changed("cloud") {
			q.Cloud = o.cloud
		}
		if flags.Changed("region") {
			q.Region = o.region
		}
		if flags.Changed("edition") {
			q.Edition = o.edition
		}
		if flags.Changed("service") {
			q.Service = o.service
		}
		if flags.Changed("serverless") {
			q.Serverless = o.serverless
		}
		req.Scenario.RateQuery = &q
	}
	return req, nil
}

// band picks the sensitivity band: the flag when set, else the scenario's block
func (o *estimateOptions) band(cmd *cobra.Command, req *input.Request) (*scenario.Band, error) {
	if !cmd.Flags().Changed("sensitivity") {
		return req.Sensitivity, nil
	}
	switch {
	case o.sensitivity < 0 || math.IsNaN(o.sensitivity) || math.IsInf(o.sensitivity, 0):
		return nil, errors.Input(fmt.Sprintf("--sensitivity must be a percentage >= 0, got %v", o.sensitivity))
	case o.sensitivity == 0:
		return nil, nil
	}
	return &scenario.Band{NodesPct: o.sensitivity, HoursPct: o.sensitivity, EfficiencyPct: o.sensitivity}, nil
}

func applyPreset(req *input.Request, key string) error {
	p, ok := scenario.Lookup(key)
	if !ok {
		return errors.NotFound("preset", key).WithContext("available", scenario.Keys())
	}
	req.Scenario.Usage = p.Apply(req.Scenario.Usage)
	if req.Name == "" {
		req.Name = p.Label
	}
	return nil
}

// applyOptions layers config defaults, the document's options and flags
func (o *estimateOptions) applyOptions(cmd *cobra.Command, cfg *config.Config, req *input.Request) error {
	flags := cmd.Flags()

	mode, err := rounding.ParseMode(cfg.Rounding.Mode)
	if err != nil {
		return errors.Config("invalid rounding.mode in config", err)
	}
	r := types.RoundingOptions{Mode: mode, Scale: cfg.Rounding.Scale}
	if req.Options.Rounding != nil {
		r = *req.Options.Rounding
	}
	if flags.Changed("rounding") {
		m, err := rounding.ParseMode(o.rounding)
		if err != nil {
			return errors.Wrap(errors.TypeInput, "invalid --rounding", err)
		}
		r.Mode = m
	}
	if flags.Changed("scale") {
		if o.scale < 0 {
			return errors.Input(fmt.Sprintf("--scale must be >= 0, got %d", o.scale))
		}
		r.Scale = o.scale
	}
	req.Options.Rounding = &r

	cur := types.CurrencyOptions{OutputCurrency: currencyCode(cfg.Currency.Output)}
	if cfg.Currency.FXRate != nil {
		cur.FXRate = types.Float(*cfg.Currency.FXRate)
	}
	if doc := req.Options.Currency; doc != nil {
		if doc.FXRate != nil {
			cur.FXRate = types.Float(*doc.FXRate)
		}
		if doc.OutputCurrency != "" {
			cur.OutputCurrency = doc.OutputCurrency
		}
	}
	if flags.Changed("fx-rate") {
		cur.FXRate = types.Float(o.fxRate)
	}
	if flags.Changed("currency") {
		cur.OutputCurrency = currencyCode(o.currency)
	}

	req.Options.Currency = nil
	if cur.FXRate != nil || cur.OutputCurrency != "" {
		req.Options.Currency = &cur
	}
	return nil
}

func (o *estimateOptions) formatter(cfg *config.Config) (output.Formatter, error) {
	name := o.format
	if name == "" {
		name = cfg.Output.Format
	}
	registry := output.DefaultRegistry()
	f, ok := registry.Get(output.Format(name))
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q", name).
			WithContext("available", registry.Formats())
	}
	return f, nil
}

func loadPricing(cfg *config.Config, path string) (*catalog.LoadResult, error) {
	if path == "" {
		path = cfg.Pricing.TablePath
	}
	loader := catalog.NewLoader(
		catalog.WithCacheDir(cfg.Pricing.CacheDir),
		catalog.WithFallback(cfg.Pricing.FallbackToCache),
	)
	return loader.Load(path)
}

func currencyCode(s string) types.Currency {
	return types.Currency(strings.ToUpper(strings.TrimSpace(s)))
}

func warningStrings(codes []types.WarningCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}
