package scenario

import "dbu-cost/core/types"

// Delta is variant minus base for each cost line.
// With CurrencyMismatch set the numeric fields are zero and meaningless.
type Delta struct {
	Total            float64 `json:"total"`
	Usage            float64 `json:"usage"`
	Infra            float64 `json:"infra"`
	CurrencyMismatch bool    `json:"currency_mismatch"`
}

// Compare returns how variant differs from base. Results labelled with
// different currencies are not subtracted.
func Compare(base, variant types.EstimateResult) Delta {
	if base.Meta.Currency != variant.Meta.Currency {
		return Delta{CurrencyMismatch: true}
	}
	return Delta{
		Total: variant.Total - base.Total,
		Usage: variant.Usage.Cost - base.Usage.Cost,
		Infra: variant.Infra.Cost - base.Infra.Cost,
	}
}

// Cheaper reports whether the variant lowers the total
func (d Delta) Cheaper() bool {
	return !d.CurrencyMismatch && d.Total < 0
}
