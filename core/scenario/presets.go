// Package scenario provides workload presets and what-if tooling built
// on top of the estimate engine: sensitivity bands and variant comparison.
package scenario

import (
	"sort"

	"dbu-cost/core/types"
)

// Preset is a named starting point for a common workload shape
type Preset struct {
	Key         string
	Label       string
	Description string
	Usage       types.UsageInput
}

var presets = []Preset{
	{
		Key:         "jobs_etl",
		Label:       "Jobs ETL",
		Description: "Scheduled batch ETL on an autoscaling job cluster",
		Usage: nodeUsage(nodeShape{
			minNodes: 2, maxNodes: 6, runsPerDay: 2, avgRunHours: 2,
			idleHoursPerRun: 0.5, idleMinutes: 15, dbuPerNodeHour: 1.2,
		}),
	},
	{
		Key:         "sql_warehouse",
		Label:       "SQL Warehouse",
		Description: "Classic SQL warehouse serving BI queries around the clock",
		Usage: nodeUsage(nodeShape{
			minNodes: 2, maxNodes: 4, runsPerDay: 24, avgRunHours: 0.5,
			idleHoursPerRun: 0.25, idleMinutes: 5, dbuPerNodeHour: 0.9,
		}),
	},
	{
		Key:         "serverless_sql",
		Label:       "Serverless SQL",
		Description: "Serverless SQL with short bursts and no idle time",
		Usage: nodeUsage(nodeShape{
			minNodes: 1, maxNodes: 1, runsPerDay: 24, avgRunHours: 0.25,
			dbuPerNodeHour: 1,
		}),
	},
	{
		Key:         "model_serving",
		Label:       "Model Serving",
		Description: "Real-time model endpoint handling a request burst every hour",
		Usage: nodeUsage(nodeShape{
			minNodes: 1, maxNodes: 3, runsPerDay: 24, avgRunHours: 0.0417,
			dbuPerNodeHour: 0.6,
		}),
	},
	{
		Key:         "dlt",
		Label:       "Delta Live Tables",
		Description: "Daily DLT pipeline refresh",
		Usage: nodeUsage(nodeShape{
			minNodes: 2, maxNodes: 8, runsPerDay: 1, avgRunHours: 4,
			idleHoursPerRun: 0.5, idleMinutes: 10, dbuPerNodeHour: 1.3,
		}),
	},
}

type nodeShape struct {
	minNodes, maxNodes           float64
	runsPerDay, avgRunHours      float64
	idleHoursPerRun, idleMinutes float64
	dbuPerNodeHour               float64
}

func nodeUsage(s nodeShape) types.UsageInput {
	return types.UsageInput{
		Autoscale: &types.AutoscaleInput{
			MinNodes: types.Float(s.minNodes),
			MaxNodes: types.Float(s.maxNodes),
		},
		RunsPerDay:       types.Float(s.runsPerDay),
		AvgRunHours:      types.Float(s.avgRunHours),
		IdleHoursPerRun:  types.Float(s.idleHoursPerRun),
		IdleMinutes:      types.Float(s.idleMinutes),
		DaysPerMonth:     types.Float(30),
		EfficiencyFactor: types.Float(1),
		DBUPerNodeHour:   types.Float(s.dbuPerNodeHour),
	}
}

// Presets returns every preset in display order. Usage inputs are copies.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		p.Usage = p.Usage.Clone()
		out[i] = p
	}
	return out
}

// Lookup returns the preset registered under key
func Lookup(key string) (Preset, bool) {
	for _, p := range presets {
		if p.Key == key {
			p.Usage = p.Usage.Clone()
			return p, true
		}
	}
	return Preset{}, false
}

// Keys returns the sorted preset keys
func Keys() []string {
	keys := make([]string, 0, len(presets))
	for _, p := range presets {
		keys = append(keys, p.Key)
	}
	sort.Strings(keys)
	return keys
}

// Apply fills every usage field that input leaves unset from the preset.
// Fields set on input always win.
func (p Preset) Apply(input types.UsageInput) types.UsageInput {
	out := input.Clone()
	base := p.Usage.Clone()

	fill := func(dst **float64, src *float64) {
		if *dst == nil {
			*dst = src
		}
	}
	fill(&out.DBUPerMonth, base.DBUPerMonth)
	fill(&out.ClusterDBUPerHour, base.ClusterDBUPerHour)
	fill(&out.HoursPerMonth, base.HoursPerMonth)
	fill(&out.RunsPerDay, base.RunsPerDay)
	fill(&out.AvgRunHours, base.AvgRunHours)
	fill(&out.IdleHoursPerRun, base.IdleHoursPerRun)
	fill(&out.IdleMinutes, base.IdleMinutes)
	fill(&out.DaysPerMonth, base.DaysPerMonth)
	fill(&out.DBUPerNodeHour, base.DBUPerNodeHour)
	fill(&out.EfficiencyFactor, base.EfficiencyFactor)

	switch {
	case out.Autoscale == nil:
		out.Autoscale = base.Autoscale
	case base.Autoscale != nil:
		fill(&out.Autoscale.MinNodes, base.Autoscale.MinNodes)
		fill(&out.Autoscale.MaxNodes, base.Autoscale.MaxNodes)
		fill(&out.Autoscale.AvgNodes, base.Autoscale.AvgNodes)
	}
	return out
}
