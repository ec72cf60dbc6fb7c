// Package output renders estimate reports for people and machines.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dbu-cost/core/scenario"
	"dbu-cost/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatText is a styled terminal report
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report, e.g. for PR comments
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is everything one estimate run produced
type Report struct {
	// ID uniquely identifies this run
	ID uuid.UUID `json:"id"`

	// GeneratedAt is when the estimate was computed
	GeneratedAt time.Time `json:"generated_at"`

	// Name labels the scenario
	Name string `json:"name,omitempty"`

	// Source is the scenario file path and its sha256
	Source       string `json:"source,omitempty"`
	SourceDigest string `json:"source_digest,omitempty"`

	// Query is the rate selection that was requested
	Query *types.RateQuery `json:"rate_query,omitempty"`

	// Result is the expected estimate
	Result types.EstimateResult `json:"result"`

	// Sensitivity is the min/max band, when requested
	Sensitivity *scenario.SensitivityResult `json:"sensitivity,omitempty"`

	// Variant and Delta are set when a variant scenario was compared
	Variant *types.EstimateResult `json:"variant,omitempty"`
	Delta   *scenario.Delta       `json:"delta,omitempty"`

	// Scale is the number of decimals amounts are shown with
	Scale int `json:"scale"`

	// PricingFromCache marks a run priced from the last-known-good table
	PricingFromCache bool     `json:"pricing_from_cache,omitempty"`
	PricingIssues    []string `json:"pricing_issues,omitempty"`

	// HideAssumptions omits the assumption log from human formats
	HideAssumptions bool `json:"-"`
}

// NewReport wraps result with a fresh ID and timestamp
func NewReport(name string, result types.EstimateResult, scale int) *Report {
	if scale < 0 {
		scale = 0
	}
	return &Report{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Name:        name,
		Result:      result,
		Scale:       scale,
	}
}

// Amount renders v with exactly scale decimals
func Amount(v float64, scale int) string {
	return decimal.NewFromFloat(v).StringFixed(int32(scale))
}

// Rate renders a unit rate at full precision
func Rate(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// SignedAmount renders v with an explicit sign
func SignedAmount(v float64, scale int) string {
	d := decimal.NewFromFloat(v).Round(int32(scale))
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(int32(scale))
	}
	return d.StringFixed(int32(scale))
}

// Money renders v followed by the currency code
func Money(v float64, scale int, currency types.Currency) string {
	return Amount(v, scale) + " " + currency.String()
}

// QueryLabel renders a rate query for display
func QueryLabel(q *types.RateQuery) string {
	if q == nil {
		return "(none)"
	}
	compute := "classic"
	if q.Serverless {
		compute = "serverless"
	}
	return fmt.Sprintf("%s / %s / %s / %s (%s)", q.Cloud, q.Region, q.Edition, q.Service, compute)
}

var warningText = map[types.WarningCode]string{
	types.WarnNoRateMatch:           "no pricing record matched the rate query; rate treated as 0",
	types.WarnMissingInput:          "not enough usage inputs to derive DBU; usage treated as 0",
	types.WarnNegativeOrNaN:         "a negative or non-numeric input was clamped to 0",
	types.WarnFallbackAvgNodes:      "avg_nodes missing; midpoint of min/max nodes used",
	types.WarnDBUPerNodeHourAssumed: "dbu_per_node_hour missing; 1 DBU per node-hour assumed",
}

// DescribeWarning returns a one-line explanation of code
func DescribeWarning(code types.WarningCode) string {
	if text, ok := warningText[code]; ok {
		return text
	}
	return strings.ToLower(strings.ReplaceAll(code.String(), "_", " "))
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// DefaultRegistry holds the text, json and markdown formatters
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range []Formatter{NewTextFormatter(), NewJSONFormatter(), NewMarkdownFormatter()} {
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Format()]; exists {
		return fmt.Errorf("formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format type
func (r *Registry) Get(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[format]
	return f, ok
}

// Formats lists registered formats, sorted
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}
