// Package input - Scenario documents
// A scenario file names the rate, the workload usage and the estimate
// options. HCL, YAML and JSON files all decode into the same Document,
// which Resolve turns into an engine request.
package input

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"dbu-cost/core/rounding"
	"dbu-cost/core/scenario"
	"dbu-cost/core/types"
	"dbu-cost/internal/errors"
)

// Format identifies the syntax of a scenario document
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is the decoded scenario file before defaults are applied
type Document struct {
	Name        string            `yaml:"name,omitempty" hcl:"name,optional"`
	Preset      string            `yaml:"preset,omitempty" hcl:"preset,optional"`
	RateQuery   *types.RateQuery  `yaml:"rate_query,omitempty" hcl:"rate_query,block"`
	Usage       *types.UsageInput `yaml:"usage,omitempty" hcl:"usage,block"`
	Rounding    *RoundingBlock    `yaml:"rounding,omitempty" hcl:"rounding,block"`
	Currency    *CurrencyBlock    `yaml:"currency,omitempty" hcl:"currency,block"`
	Sensitivity *scenario.Band    `yaml:"sensitivity,omitempty" hcl:"sensitivity,block"`
}

// RoundingBlock is the rounding section of a scenario document
type RoundingBlock struct {
	Mode  string `yaml:"mode,omitempty" hcl:"mode,optional"`
	Scale *int   `yaml:"scale,omitempty" hcl:"scale,optional"`
}

// CurrencyBlock is the currency section of a scenario document
type CurrencyBlock struct {
	FXRate         *float64 `yaml:"fx_rate,omitempty" hcl:"fx_rate,optional"`
	OutputCurrency string   `yaml:"output_currency,omitempty" hcl:"output_currency,optional"`
}

// Source records where a request came from
type Source struct {
	Path   string
	Format Format

	// Digest is the sha256 of the raw document
	Digest string
}

// Request is a resolved scenario ready for the engine
type Request struct {
	Name        string
	Source      Source
	Scenario    types.Scenario
	Options     types.Options
	Sensitivity *scenario.Band
}

// Resolve applies the preset and option defaults to doc
func Resolve(doc *Document, src Source) (*Request, error) {
	req := &Request{Name: doc.Name, Source: src, Sensitivity: doc.Sensitivity}

	if doc.RateQuery != nil {
		q := *doc.RateQuery
		req.Scenario.RateQuery = &q
	}
	if doc.Usage != nil {
		req.Scenario.Usage = doc.Usage.Clone()
	}

	if key := strings.TrimSpace(doc.Preset); key != "" {
		p, ok := scenario.Lookup(key)
		if !ok {
			return nil, errors.NotFound("preset", key).WithContext("available", scenario.Keys())
		}
		req.Scenario.Usage = p.Apply(req.Scenario.Usage)
		if req.Name == "" {
			req.Name = p.Label
		}
	}

	if r := doc.Rounding; r != nil {
		mode, err := rounding.ParseMode(r.Mode)
		if err != nil {
			return nil, errors.Wrap(errors.TypeInput, "invalid rounding section", err)
		}
		opts := types.DefaultRounding()
		opts.Mode = mode
		if r.Scale != nil {
			opts.Scale = *r.Scale
		}
		req.Options.Rounding = &opts
	}

	if c := doc.Currency; c != nil {
		req.Options.Currency = &types.CurrencyOptions{
			FXRate:         c.FXRate,
			OutputCurrency: types.Currency(strings.ToUpper(strings.TrimSpace(c.OutputCurrency))),
		}
	}
	return req, nil
}

// Digest returns the hex sha256 of data
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
