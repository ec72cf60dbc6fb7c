// Package usage derives monthly DBU consumption from a partially filled
// workload description.
//
// Derivation is an ordered decision tree that short-circuits at the first
// applicable branch: a direct monthly figure, then an explicit cluster
// DBU/hour, then a DBU/hour derived from node count. Hourly branches are
// multiplied by resolved monthly hours. Each step records what it used in
// a Ledger so the resulting number can be audited. Nothing here returns an
// error: missing or malformed fields degrade to zero with a warning code.
package usage

import (
	"math"

	"dbu-cost/core/types"
)

const (
	// DefaultDaysPerMonth is used when days_per_month is absent
	DefaultDaysPerMonth = 30.0

	// DefaultDBUPerNodeHour is used when dbu_per_node_hour is absent
	DefaultDBUPerNodeHour = 1.0

	// DefaultEfficiency leaves usage unscaled
	DefaultEfficiency = 1.0
)

// Path names the branch of the decision tree that produced a quantity
type Path string

const (
	PathDirect      Path = "direct"
	PathRatePerHour Path = "rate_per_hour"
	PathNodeDerived Path = "node_derived"
)

// Result is the outcome of CalcUsage
type Result struct {
	// Quantity is DBU per month, always finite and >= 0
	Quantity float64

	// Path is the derivation branch taken
	Path Path

	// Assumptions is the ordered derivation log
	Assumptions []string

	// Warnings are raised codes in the order raised, repeats included
	Warnings []types.WarningCode
}

// CalcUsage derives the monthly DBU quantity for input
func CalcUsage(input types.UsageInput) Result {
	l := NewLedger()
	efficiency := resolveEfficiency(l, input.EfficiencyFactor)

	switch s := input.Strategy().(type) {
	case types.Direct:
		return direct(l, s, efficiency)

	case types.RatePerHour:
		rate := l.NonNegative(s.ClusterDBUPerHour)
		l.Assume("cluster_dbu_per_hour input %s", FormatNumber(rate))
		return hourly(l, PathRatePerHour, rate, s.Hours, efficiency)

	case types.NodeDerived:
		rate, ok := nodeRate(l, s)
		if !ok {
			return finish(l, PathNodeDerived, 0)
		}
		return hourly(l, PathNodeDerived, rate, s.Hours, efficiency)

	default:
		l.Warn(types.WarnMissingInput)
		return finish(l, "", 0)
	}
}

func resolveEfficiency(l *Ledger, factor *float64) float64 {
	if types.IsFinite(factor) {
		efficiency := l.NonNegative(*factor)
		if efficiency != DefaultEfficiency {
			l.Assume("Applied efficiency factor %s", FormatNumber(efficiency))
		}
		return efficiency
	}
	if factor != nil {
		l.Warn(types.WarnNegativeOrNaN)
	}
	return DefaultEfficiency
}

func direct(l *Ledger, s types.Direct, efficiency float64) Result {
	dbu := l.NonNegative(s.DBUPerMonth)
	usage := dbu * efficiency
	if efficiency != DefaultEfficiency {
		l.Assume("Direct DBU input %s × efficiency %s = %s",
			FormatNumber(dbu), FormatNumber(efficiency), FormatNumber(usage))
	} else {
		l.Assume("Direct DBU input %s", FormatNumber(dbu))
	}
	return finish(l, PathDirect, usage)
}

// nodeRate derives cluster DBU/hour as node count × per-node rate
func nodeRate(l *Ledger, s types.NodeDerived) (float64, bool) {
	var avgNodes float64
	a := s.Autoscale

	switch {
	case types.IsFinite(a.AvgNodes):
		avgNodes = l.NonNegative(*a.AvgNodes)
		l.Assume("Using avg_nodes %s", FormatNumber(avgNodes))

	case types.IsFinite(a.MinNodes) && types.IsFinite(a.MaxNodes):
		minNodes := l.NonNegative(*a.MinNodes)
		maxNodes := l.NonNegative(*a.MaxNodes)
		avgNodes = (minNodes + maxNodes) / 2
		l.Assume("avg_nodes not provided; using (min+max)/2 = %s", FormatNumber(avgNodes))
		l.Warn(types.WarnFallbackAvgNodes)

	default:
		l.Warn(types.WarnMissingInput)
		return 0, false
	}

	perNode, found := 0.0, false
	if types.IsFinite(s.DBUPerNodeHour) {
		perNode, found = l.NonNegative(*s.DBUPerNodeHour), true
	} else if s.DBUPerNodeHour != nil {
		l.Warn(types.WarnNegativeOrNaN)
	}
	if !found {
		perNode = DefaultDBUPerNodeHour
		l.Warn(types.WarnDBUPerNodeHourAssumed)
		l.Assume("dbu_per_node_hour not provided; assuming %s", FormatNumber(DefaultDBUPerNodeHour))
	}

	rate := avgNodes * perNode
	l.Assume("cluster_dbu_per_hour derived: avg_nodes %s × dbu_per_node_hour %s = %s",
		FormatNumber(avgNodes), FormatNumber(perNode), FormatNumber(rate))
	return rate, true
}

func hourly(l *Ledger, path Path, rate float64, h types.HoursInput, efficiency float64) Result {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		l.Warn(types.WarnMissingInput)
		return finish(l, path, 0)
	}

	hours, ok := resolveHours(l, h)
	if !ok || math.IsNaN(hours) || math.IsInf(hours, 0) {
		l.Warn(types.WarnMissingInput)
		return finish(l, path, 0)
	}

	base := l.NonNegative(rate * hours)
	l.Assume("Monthly DBU before efficiency: cluster_dbu_per_hour %s × hours_per_month %s = %s",
		FormatNumber(rate), FormatNumber(hours), FormatNumber(base))

	usage := base
	if efficiency != DefaultEfficiency {
		usage = base * efficiency
		l.Assume("Applying efficiency %s → %s", FormatNumber(efficiency), FormatNumber(usage))
	}
	return finish(l, path, usage)
}

// resolveHours returns monthly runtime hours from either an explicit total
// or runs_per_day × days_per_month × (avg_run_hours + idle per run).
func resolveHours(l *Ledger, h types.HoursInput) (float64, bool) {
	if types.IsFinite(h.HoursPerMonth) {
		hours := l.NonNegative(*h.HoursPerMonth)
		l.Assume("hours_per_month input %s", FormatNumber(hours))
		return hours, true
	}
	if !types.IsFinite(h.RunsPerDay) || !types.IsFinite(h.AvgRunHours) {
		return 0, false
	}

	runs := l.NonNegative(*h.RunsPerDay)
	runHours := l.NonNegative(*h.AvgRunHours)
	idlePerRun := 0.0
	if types.IsFinite(h.IdleHoursPerRun) {
		idlePerRun = l.NonNegative(*h.IdleHoursPerRun)
	}

	days, defaulted := DefaultDaysPerMonth, true
	if types.IsFinite(h.DaysPerMonth) {
		days, defaulted = l.NonNegative(*h.DaysPerMonth), false
	} else if h.DaysPerMonth != nil {
		l.Warn(types.WarnNegativeOrNaN)
	}
	if defaulted {
		l.Assume("days_per_month not provided; using default %s", FormatNumber(DefaultDaysPerMonth))
	} else {
		l.Assume("days_per_month input %s", FormatNumber(days))
	}

	capHours, capped := 0.0, false
	if types.IsFinite(h.IdleMinutes) {
		minutes := l.NonNegative(*h.IdleMinutes)
		if minutes > 0 {
			capHours, capped = minutes/60, true
			l.Assume("Idle termination configured at %s minutes", FormatNumber(minutes))
		} else {
			l.Assume("Idle termination disabled (0 minutes)")
		}
	} else if h.IdleMinutes != nil {
		l.Warn(types.WarnNegativeOrNaN)
	}

	if capped && idlePerRun > capHours {
		idlePerRun = capHours
		l.Assume("Idle hours per run capped to %s by idle_minutes", FormatNumber(idlePerRun))
	}

	active := runs * days * runHours
	idle := runs * days * idlePerRun
	l.Assume("Active hours/month: runs_per_day %s × days_per_month %s × avg_run_hours %s = %s",
		FormatNumber(runs), FormatNumber(days), FormatNumber(runHours), FormatNumber(active))
	if idlePerRun > 0 {
		l.Assume("Idle hours/month: runs_per_day %s × days_per_month %s × idle_hours_per_run %s = %s",
			FormatNumber(runs), FormatNumber(days), FormatNumber(idlePerRun), FormatNumber(idle))
	}

	total := active + idle
	l.Assume("Total hours/month %s", FormatNumber(total))
	return total, true
}

// finish snapshots the ledger; an overflowed quantity is clamped like any other bad value
func finish(l *Ledger, path Path, quantity float64) Result {
	quantity = l.NonNegative(quantity)
	return Result{
		Quantity:    quantity,
		Path:        path,
		Assumptions: l.Assumptions(),
		Warnings:    l.Warnings(),
	}
}
