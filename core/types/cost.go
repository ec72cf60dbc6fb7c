// Package types - Estimate envelope types
package types

// RoundingMode selects how a cost is rounded to its scale
type RoundingMode string

const (
	// RoundHalfUp rounds halves away from zero
	RoundHalfUp RoundingMode = "half-up"

	// RoundBankers rounds halves to the nearest even digit
	RoundBankers RoundingMode = "bankers"
)

// RoundingOptions controls cost rounding
type RoundingOptions struct {
	Mode  RoundingMode `json:"mode" yaml:"mode"`
	Scale int          `json:"scale" yaml:"scale"`
}

// DefaultRounding is half-up to two decimal places
func DefaultRounding() RoundingOptions {
	return RoundingOptions{Mode: RoundHalfUp, Scale: 2}
}

// CurrencyOptions converts the table currency with a caller-supplied multiplier
type CurrencyOptions struct {
	// FXRate multiplies every base rate when set
	FXRate *float64 `json:"fx_rate,omitempty" yaml:"fx_rate,omitempty"`

	// OutputCurrency labels the result currency
	OutputCurrency Currency `json:"output_currency,omitempty" yaml:"output_currency,omitempty"`
}

// Options tunes an estimate
type Options struct {
	Rounding *RoundingOptions `json:"rounding,omitempty" yaml:"rounding,omitempty"`
	Currency *CurrencyOptions `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// Scenario is one estimate request
type Scenario struct {
	// RateQuery selects the pricing record; nil never matches
	RateQuery *RateQuery `json:"rate_query,omitempty" yaml:"rate_query,omitempty"`

	// Usage describes the workload consumption
	Usage UsageInput `json:"usage" yaml:"usage"`
}

// UsageCost is the consumption-unit line of an estimate
type UsageCost struct {
	// Quantity is DBU per month
	Quantity float64 `json:"quantity"`

	// Rate is the effective unit rate after FX
	Rate float64 `json:"rate"`

	// Cost is the rounded Quantity × Rate
	Cost float64 `json:"cost"`
}

// InfraCost is reserved for VM/infrastructure cost and is always zero
type InfraCost struct {
	Cost float64 `json:"cost"`
}

// EstimateMeta carries provenance and the derivation ledger
type EstimateMeta struct {
	Currency    Currency      `json:"currency"`
	Version     string        `json:"version"`
	Assumptions []string      `json:"assumptions"`
	Warnings    []WarningCode `json:"warnings"`
}

// EstimateResult is the immutable result envelope of one estimate
type EstimateResult struct {
	Usage UsageCost    `json:"usage"`
	Infra InfraCost    `json:"infra"`
	Total float64      `json:"total"`
	Meta  EstimateMeta `json:"meta"`
}

// HasWarning reports whether the result carries the given warning
func (r EstimateResult) HasWarning(code WarningCode) bool {
	for _, w := range r.Meta.Warnings {
		if w == code {
			return true
		}
	}
	return false
}
