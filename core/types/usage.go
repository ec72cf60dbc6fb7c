// Package types - Usage input types
package types

import "math"

// WarningCode flags a degraded-but-valid computation outcome
type WarningCode string

const (
	// WarnNoRateMatch means no pricing record matched the query; base rate treated as 0
	WarnNoRateMatch WarningCode = "NO_RATE_MATCH"

	// WarnMissingInput means no derivation path had enough fields; quantity treated as 0
	WarnMissingInput WarningCode = "MISSING_INPUT"

	// WarnNegativeOrNaN means a numeric field was negative or non-finite and was clamped to 0
	WarnNegativeOrNaN WarningCode = "NEGATIVE_OR_NAN"

	// WarnFallbackAvgNodes means avg_nodes was substituted by the min/max midpoint
	WarnFallbackAvgNodes WarningCode = "FALLBACK_AVG_NODES_USED"

	// WarnDBUPerNodeHourAssumed means the per-node hourly rate defaulted to 1
	WarnDBUPerNodeHourAssumed WarningCode = "DBU_PER_NODE_HOUR_ASSUMED"
)

// String returns the string representation
func (w WarningCode) String() string {
	return string(w)
}

// AutoscaleInput describes cluster size
type AutoscaleInput struct {
	MinNodes *float64 `json:"min_nodes,omitempty" yaml:"min_nodes,omitempty" hcl:"min_nodes,optional"`
	MaxNodes *float64 `json:"max_nodes,omitempty" yaml:"max_nodes,omitempty" hcl:"max_nodes,optional"`
	AvgNodes *float64 `json:"avg_nodes,omitempty" yaml:"avg_nodes,omitempty" hcl:"avg_nodes,optional"`
}

// UsageInput is the loosely filled workload description.
// A nil field is absent; a non-finite value is present but not a number.
type UsageInput struct {
	DBUPerMonth       *float64        `json:"dbu_per_month,omitempty" yaml:"dbu_per_month,omitempty" hcl:"dbu_per_month,optional"`
	ClusterDBUPerHour *float64        `json:"cluster_dbu_per_hour,omitempty" yaml:"cluster_dbu_per_hour,omitempty" hcl:"cluster_dbu_per_hour,optional"`
	HoursPerMonth     *float64        `json:"hours_per_month,omitempty" yaml:"hours_per_month,omitempty" hcl:"hours_per_month,optional"`
	RunsPerDay        *float64        `json:"runs_per_day,omitempty" yaml:"runs_per_day,omitempty" hcl:"runs_per_day,optional"`
	AvgRunHours       *float64        `json:"avg_run_hours,omitempty" yaml:"avg_run_hours,omitempty" hcl:"avg_run_hours,optional"`
	IdleHoursPerRun   *float64        `json:"idle_hours_per_run,omitempty" yaml:"idle_hours_per_run,omitempty" hcl:"idle_hours_per_run,optional"`
	IdleMinutes       *float64        `json:"idle_minutes,omitempty" yaml:"idle_minutes,omitempty" hcl:"idle_minutes,optional"`
	DaysPerMonth      *float64        `json:"days_per_month,omitempty" yaml:"days_per_month,omitempty" hcl:"days_per_month,optional"`
	DBUPerNodeHour    *float64        `json:"dbu_per_node_hour,omitempty" yaml:"dbu_per_node_hour,omitempty" hcl:"dbu_per_node_hour,optional"`
	EfficiencyFactor  *float64        `json:"efficiency_factor,omitempty" yaml:"efficiency_factor,omitempty" hcl:"efficiency_factor,optional"`
	Autoscale         *AutoscaleInput `json:"autoscale,omitempty" yaml:"autoscale,omitempty" hcl:"autoscale,block"`
}

// HoursInput holds the fields that resolve monthly runtime hours
type HoursInput struct {
	HoursPerMonth   *float64
	RunsPerDay      *float64
	AvgRunHours     *float64
	IdleHoursPerRun *float64
	IdleMinutes     *float64
	DaysPerMonth    *float64
}

// Strategy is the derivation path selected for a UsageInput.
// Exactly one of Direct, RatePerHour or NodeDerived.
type Strategy interface {
	strategy()
}

// Direct is a monthly DBU figure supplied as-is
type Direct struct {
	DBUPerMonth float64
}

// RatePerHour is an explicit cluster DBU/hour multiplied by runtime hours
type RatePerHour struct {
	ClusterDBUPerHour float64
	Hours             HoursInput
}

// NodeDerived computes DBU/hour from node count and per-node rate
type NodeDerived struct {
	Autoscale      AutoscaleInput
	DBUPerNodeHour *float64
	Hours          HoursInput
}

func (Direct) strategy()      {}
func (RatePerHour) strategy() {}
func (NodeDerived) strategy() {}

// Strategy resolves the derivation path by a single ordered match:
// a finite dbu_per_month wins, then a finite cluster_dbu_per_hour,
// otherwise the node-derived path.
func (u UsageInput) Strategy() Strategy {
	if IsFinite(u.DBUPerMonth) {
		return Direct{DBUPerMonth: *u.DBUPerMonth}
	}
	hours := u.hours()
	if IsFinite(u.ClusterDBUPerHour) {
		return RatePerHour{ClusterDBUPerHour: *u.ClusterDBUPerHour, Hours: hours}
	}
	var autoscale AutoscaleInput
	if u.Autoscale != nil {
		autoscale = *u.Autoscale
	}
	return NodeDerived{Autoscale: autoscale, DBUPerNodeHour: u.DBUPerNodeHour, Hours: hours}
}

func (u UsageInput) hours() HoursInput {
	return HoursInput{
		HoursPerMonth:   u.HoursPerMonth,
		RunsPerDay:      u.RunsPerDay,
		AvgRunHours:     u.AvgRunHours,
		IdleHoursPerRun: u.IdleHoursPerRun,
		IdleMinutes:     u.IdleMinutes,
		DaysPerMonth:    u.DaysPerMonth,
	}
}

// Clone returns a deep copy so callers can adjust fields without aliasing
func (u UsageInput) Clone() UsageInput {
	out := UsageInput{
		DBUPerMonth:       cloneFloat(u.DBUPerMonth),
		ClusterDBUPerHour: cloneFloat(u.ClusterDBUPerHour),
		HoursPerMonth:     cloneFloat(u.HoursPerMonth),
		RunsPerDay:        cloneFloat(u.RunsPerDay),
		AvgRunHours:       cloneFloat(u.AvgRunHours),
		IdleHoursPerRun:   cloneFloat(u.IdleHoursPerRun),
		IdleMinutes:       cloneFloat(u.IdleMinutes),
		DaysPerMonth:      cloneFloat(u.DaysPerMonth),
		DBUPerNodeHour:    cloneFloat(u.DBUPerNodeHour),
		EfficiencyFactor:  cloneFloat(u.EfficiencyFactor),
	}
	if u.Autoscale != nil {
		out.Autoscale = &AutoscaleInput{
			MinNodes: cloneFloat(u.Autoscale.MinNodes),
			MaxNodes: cloneFloat(u.Autoscale.MaxNodes),
			AvgNodes: cloneFloat(u.Autoscale.AvgNodes),
		}
	}
	return out
}

// IsEmpty reports whether no usage field is set
func (u UsageInput) IsEmpty() bool {
	return u.DBUPerMonth == nil && u.ClusterDBUPerHour == nil && u.HoursPerMonth == nil &&
		u.RunsPerDay == nil && u.AvgRunHours == nil && u.IdleHoursPerRun == nil &&
		u.IdleMinutes == nil && u.DaysPerMonth == nil && u.DBUPerNodeHour == nil &&
		u.EfficiencyFactor == nil && u.Autoscale == nil
}

// Float returns a pointer to v, for building inputs literally
func Float(v float64) *float64 {
	return &v
}

// IsFinite reports whether v is present and a finite number
func IsFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
