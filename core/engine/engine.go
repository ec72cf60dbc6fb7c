// Package engine aggregates usage, rate selection and rounding into a
// single estimate. The CLI is a thin wrapper around this package.
//
// Estimate is a pure function: no I/O, no errors and no panics for
// expected conditions. Degraded inputs surface as warning codes on the
// result.
package engine

import (
	"math"
	"strconv"

	"dbu-cost/core/pricing"
	"dbu-cost/core/rounding"
	"dbu-cost/core/types"
	"dbu-cost/core/usage"
)

// UnknownVersion labels results computed without a versioned table
const UnknownVersion = "unknown"

// Estimate computes the monthly cost envelope for scenario against table.
// A nil table or nil rate query yields NO_RATE_MATCH with a zero base rate.
func Estimate(scenario types.Scenario, table *types.PricingTable, opts *types.Options) types.EstimateResult {
	u := usage.CalcUsage(scenario.Usage)
	warnings := newWarningSet(u.Warnings)
	assumptions := append([]string{}, u.Assumptions...)

	var record *types.PricingRecord
	if scenario.RateQuery != nil {
		record, _ = pricing.SelectRate(table, *scenario.RateQuery)
	}

	baseRate := 0.0
	if record == nil {
		warnings.add(types.WarnNoRateMatch)
	} else {
		baseRate = record.UnitRate
		if math.IsNaN(baseRate) || math.IsInf(baseRate, 0) || baseRate < 0 {
			warnings.add(types.WarnNegativeOrNaN)
			baseRate = 0
		}
	}

	var roundingOpts *types.RoundingOptions
	var currencyOpts types.CurrencyOptions
	if opts != nil {
		roundingOpts = opts.Rounding
		if opts.Currency != nil {
			currencyOpts = *opts.Currency
		}
	}

	rate := baseRate
	if fx := currencyOpts.FXRate; types.IsFinite(fx) && *fx > 0 {
		rate = baseRate * *fx
		assumptions = append(assumptions, "Applied FX rate "+strconv.FormatFloat(*fx, 'f', -1, 64))
		if math.IsInf(rate, 0) {
			warnings.add(types.WarnNegativeOrNaN)
			rate = 0
		}
	} else if fx != nil {
		warnings.add(types.WarnNegativeOrNaN)
	}

	cost := rounding.RoundCost(u.Quantity, rate, roundingOpts)
	infra := InfraCost(scenario)

	return types.EstimateResult{
		Usage: types.UsageCost{
			Quantity: u.Quantity,
			Rate:     rate,
			Cost:     cost,
		},
		Infra: infra,
		Total: cost + infra.Cost,
		Meta: types.EstimateMeta{
			Currency:    outputCurrency(currencyOpts, table),
			Version:     tableVersion(table),
			Assumptions: assumptions,
			Warnings:    warnings.list(),
		},
	}
}

// InfraCost is the hook for VM/infrastructure cost. It is not modelled
// and always returns zero.
func InfraCost(types.Scenario) types.InfraCost {
	return types.InfraCost{Cost: 0}
}

func outputCurrency(c types.CurrencyOptions, table *types.PricingTable) types.Currency {
	if c.OutputCurrency != "" {
		return c.OutputCurrency
	}
	if table != nil && table.Currency != "" {
		return table.Currency
	}
	return types.CurrencyUSD
}

func tableVersion(table *types.PricingTable) string {
	if table != nil && table.Version != "" {
		return table.Version
	}
	return UnknownVersion
}

// warningSet keeps first-seen order
type warningSet struct {
	seen  map[types.WarningCode]bool
	codes []types.WarningCode
}

func newWarningSet(initial []types.WarningCode) *warningSet {
	s := &warningSet{seen: make(map[types.WarningCode]bool), codes: []types.WarningCode{}}
	for _, w := range initial {
		s.add(w)
	}
	return s
}

func (s *warningSet) add(code types.WarningCode) {
	if s.seen[code] {
		return
	}
	s.seen[code] = true
	s.codes = append(s.codes, code)
}

func (s *warningSet) list() []types.WarningCode {
	return s.codes
}
