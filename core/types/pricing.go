// Package types - Pricing types
package types

import "strconv"

// Currency represents an ISO-4217 currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyJPY Currency = "JPY"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// PricingRecord is a single rate-table entry.
// Identity is the (cloud, region, edition, service, serverless) tuple.
type PricingRecord struct {
	// Cloud is the cloud vendor (e.g., "Azure")
	Cloud string `json:"cloud" yaml:"cloud" validate:"required"`

	// Region is the cloud region (e.g., "eastus")
	Region string `json:"region" yaml:"region" validate:"required"`

	// Edition is the platform tier (e.g., "Premium")
	Edition string `json:"edition" yaml:"edition" validate:"required"`

	// Service is the workload type (e.g., "Jobs Compute")
	Service string `json:"service" yaml:"service" validate:"required"`

	// VMSize is only populated for tables converted from the legacy format
	VMSize string `json:"vm_size,omitempty" yaml:"vm_size,omitempty"`

	// Serverless selects serverless vs classic compute pricing
	Serverless bool `json:"serverless" yaml:"serverless"`

	// UnitRate is the price of one DBU in the table currency
	UnitRate float64 `json:"dbu_rate" yaml:"dbu_rate" validate:"gte=0"`

	// Source is the URI the rate was taken from
	Source string `json:"source" yaml:"source" validate:"required,url"`

	// EffectiveFrom is the date (YYYY-MM-DD) the rate applies from
	EffectiveFrom string `json:"effective_from" yaml:"effective_from" validate:"required,datetime=2006-01-02"`

	// Notes is free-form commentary
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Query returns the selection tuple identifying this record
func (r PricingRecord) Query() RateQuery {
	return RateQuery{
		Cloud:      r.Cloud,
		Region:     r.Region,
		Edition:    r.Edition,
		Service:    r.Service,
		Serverless: r.Serverless,
	}
}

// PricingTable is a versioned set of pricing records in one currency
type PricingTable struct {
	// Version identifies the rate table release
	Version string `json:"version" yaml:"version" validate:"required"`

	// Currency is the currency every UnitRate is expressed in
	Currency Currency `json:"currency" yaml:"currency" validate:"required,iso4217"`

	// Records are the rate entries
	Records []PricingRecord `json:"workloads" yaml:"workloads" validate:"required,min=1,dive"`

	// Notes is free-form commentary
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// RateQuery selects exactly one pricing record
type RateQuery struct {
	Cloud      string `json:"cloud" yaml:"cloud" hcl:"cloud"`
	Region     string `json:"region" yaml:"region" hcl:"region"`
	Edition    string `json:"edition" yaml:"edition" hcl:"edition"`
	Service    string `json:"service" yaml:"service" hcl:"service"`
	Serverless bool   `json:"serverless" yaml:"serverless" hcl:"serverless,optional"`
}

// Key returns the canonical workload key used for duplicate detection
func (q RateQuery) Key() string {
	return q.Cloud + "||" + q.Region + "||" + q.Edition + "||" + q.Service + "||" + strconv.FormatBool(q.Serverless)
}

// String returns the key for display
func (q RateQuery) String() string {
	return q.Key()
}
