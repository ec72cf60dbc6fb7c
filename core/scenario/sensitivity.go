package scenario

import (
	"math"

	"dbu-cost/core/engine"
	"dbu-cost/core/types"
)

// Band is a symmetric ± percentage range per driver
type Band struct {
	NodesPct      float64 `json:"nodes_pct" yaml:"nodes_pct" hcl:"nodes_pct,optional"`
	HoursPct      float64 `json:"hours_pct" yaml:"hours_pct" hcl:"hours_pct,optional"`
	EfficiencyPct float64 `json:"efficiency_pct" yaml:"efficiency_pct" hcl:"efficiency_pct,optional"`
}

// DefaultBand is ±10% on every driver
func DefaultBand() Band {
	return Band{NodesPct: 10, HoursPct: 10, EfficiencyPct: 10}
}

// Factors multiplies each usage driver
type Factors struct {
	Nodes      float64
	Hours      float64
	Efficiency float64
}

// SensitivityResult holds the band edges around the expected estimate
type SensitivityResult struct {
	Band     Band                 `json:"band"`
	Min      types.EstimateResult `json:"min"`
	Expected types.EstimateResult `json:"expected"`
	Max      types.EstimateResult `json:"max"`
}

// Bounds returns the low and high factors for band.
// Low factors never go below zero; non-finite percentages count as zero.
func (b Band) Bounds() (low, high Factors) {
	nodes, hours, eff := pct(b.NodesPct), pct(b.HoursPct), pct(b.EfficiencyPct)
	low = Factors{
		Nodes:      math.Max(0, 1-nodes),
		Hours:      math.Max(0, 1-hours),
		Efficiency: math.Max(0, 1-eff),
	}
	high = Factors{Nodes: 1 + nodes, Hours: 1 + hours, Efficiency: 1 + eff}
	return low, high
}

func pct(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v / 100
}

// Sensitivity estimates scenario at the band edges and at its expected value
func Sensitivity(s types.Scenario, table *types.PricingTable, opts *types.Options, band Band) SensitivityResult {
	low, high := band.Bounds()
	return SensitivityResult{
		Band:     band,
		Min:      engine.Estimate(Adjust(s, low), table, opts),
		Expected: engine.Estimate(s, table, opts),
		Max:      engine.Estimate(Adjust(s, high), table, opts),
	}
}

// Adjust returns a copy of s with every present finite usage driver scaled
// by its factor and clamped at zero. The input scenario is not modified.
func Adjust(s types.Scenario, f Factors) types.Scenario {
	out := s
	if s.RateQuery != nil {
		q := *s.RateQuery
		out.RateQuery = &q
	}
	u := s.Usage.Clone()

	scale(u.DBUPerMonth, f.Nodes*f.Hours*f.Efficiency)
	scale(u.ClusterDBUPerHour, f.Nodes)
	scale(u.HoursPerMonth, f.Hours)
	scale(u.RunsPerDay, f.Hours)
	scale(u.AvgRunHours, f.Hours)
	scale(u.IdleHoursPerRun, f.Hours)
	scale(u.EfficiencyFactor, f.Efficiency)
	if u.Autoscale != nil {
		scale(u.Autoscale.AvgNodes, f.Nodes)
		scale(u.Autoscale.MinNodes, f.Nodes)
		scale(u.Autoscale.MaxNodes, f.Nodes)
	}

	out.Usage = u
	return out
}

// scale leaves absent or non-finite values for the resolver to flag
func scale(v *float64, factor float64) {
	if !types.IsFinite(v) {
		return
	}
	*v = math.Max(0, *v*factor)
}
