package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbu-cost/core/scenario"
	"dbu-cost/core/types"
)

func sampleReport() *Report {
	report := NewReport("nightly etl", types.EstimateResult{
		Usage: types.UsageCost{Quantity: 648, Rate: 0.15, Cost: 97.2},
		Total: 97.2,
		Meta: types.EstimateMeta{
			Currency:    types.CurrencyUSD,
			Version:     "2024-06",
			Assumptions: []string{"avg_nodes = (2 + 6) / 2 = 4"},
			Warnings:    []types.WarningCode{types.WarnFallbackAvgNodes},
		},
	}, 2)
	report.Query = &types.RateQuery{Cloud: "Azure", Region: "eastus", Edition: "Premium", Service: "Jobs Compute"}
	return report
}

func TestAmount(t *testing.T) {
	tests := []struct {
		v     float64
		scale int
		want  string
	}{
		{180, 2, "180.00"},
		{97.2, 2, "97.20"},
		{12.5, 0, "13"},
		{0, 3, "0.000"},
		{-30, 2, "-30.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Amount(tt.v, tt.scale))
	}

	assert.Equal(t, "+0.00", SignedAmount(0, 2))
	assert.Equal(t, "+4.50", SignedAmount(4.5, 2))
	assert.Equal(t, "-30.00", SignedAmount(-30, 2))
	assert.Equal(t, "97.20 EUR", Money(97.2, 2, types.CurrencyEUR))
}

func TestRateKeepsFullPrecision(t *testing.T) {
	assert.Equal(t, "0.055", Rate(0.055))
	assert.Equal(t, "0.138", Rate(0.15*0.92))
	assert.Equal(t, "2", Rate(2))

	report := sampleReport()
	report.Result.Usage = types.UsageCost{Quantity: 1000, Rate: 0.055, Cost: 55}
	report.Result.Total = 55

	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Render(&buf, report))
	assert.Contains(t, buf.String(), "1,000 DBU/month × 0.055 USD = 55.00 USD")

	buf.Reset()
	require.NoError(t, NewMarkdownFormatter().Render(&buf, report))
	assert.Contains(t, buf.String(), "| Usage | 1,000 | 0.055 | 55.00 USD |")
}

func TestNewReport(t *testing.T) {
	r := NewReport("x", types.EstimateResult{}, -1)
	assert.Equal(t, 0, r.Scale)
	assert.NotEqual(t, NewReport("x", types.EstimateResult{}, 2).ID, r.ID)
	assert.False(t, r.GeneratedAt.IsZero())
}

func TestQueryLabel(t *testing.T) {
	assert.Equal(t, "(none)", QueryLabel(nil))
	assert.Equal(t, "AWS / us-east-1 / Premium / SQL (serverless)",
		QueryLabel(&types.RateQuery{Cloud: "AWS", Region: "us-east-1", Edition: "Premium", Service: "SQL", Serverless: true}))
}

func TestDescribeWarning(t *testing.T) {
	assert.Contains(t, DescribeWarning(types.WarnNoRateMatch), "no pricing record")
	assert.Equal(t, "something new", DescribeWarning(types.WarningCode("SOMETHING_NEW")))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"json", "markdown", "text"}, r.Formats())

	f, ok := r.Get(FormatJSON)
	require.True(t, ok)
	assert.Equal(t, FormatJSON, f.Format())

	_, ok = r.Get(Format("html"))
	assert.False(t, ok)

	assert.Error(t, r.Register(NewTextFormatter()))
}

func TestTextFormatter(t *testing.T) {
	report := sampleReport()
	report.Sensitivity = &scenario.SensitivityResult{
		Min:      types.EstimateResult{Total: 80},
		Expected: report.Result,
		Max:      types.EstimateResult{Total: 120.5},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Render(&buf, report))
	out := buf.String()

	assert.Contains(t, out, "DBU cost estimate · nightly etl")
	assert.Contains(t, out, "Azure / eastus / Premium / Jobs Compute (classic)")
	assert.Contains(t, out, "648 DBU/month × 0.15 USD = 97.20 USD")
	assert.Contains(t, out, "0.00 USD")
	assert.Contains(t, out, "version 2024-06")
	assert.Contains(t, out, "min 80.00 USD · expected 97.20 USD · max 120.50 USD")
	assert.Contains(t, out, "FALLBACK_AVG_NODES")
	assert.Contains(t, out, "avg_nodes = (2 + 6) / 2 = 4")

	report.HideAssumptions = true
	buf.Reset()
	require.NoError(t, NewTextFormatter().Render(&buf, report))
	assert.NotContains(t, buf.String(), "Assumptions")
}

func TestTextFormatterDelta(t *testing.T) {
	report := sampleReport()
	variant := report.Result
	variant.Total = 67.2
	report.Variant = &variant
	report.Delta = &scenario.Delta{Total: -30, Usage: -30}
	report.PricingFromCache = true
	report.PricingIssues = []string{"/workloads must contain at least 1 item"}

	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Render(&buf, report))
	out := buf.String()
	assert.Contains(t, out, "67.20 USD")
	assert.Contains(t, out, "-30.00 USD (usage -30.00 · infra +0.00)")
	assert.Contains(t, out, "last known good")
	assert.Contains(t, out, "/workloads must contain at least 1 item")

	report.Delta = &scenario.Delta{CurrencyMismatch: true}
	buf.Reset()
	require.NoError(t, NewTextFormatter().Render(&buf, report))
	assert.Contains(t, buf.String(), "currencies differ")
}

func TestJSONFormatter(t *testing.T) {
	report := sampleReport()
	report.HideAssumptions = true

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Render(&buf, report))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.ID.String(), decoded["id"])
	assert.Equal(t, "nightly etl", decoded["name"])

	result := decoded["result"].(map[string]any)
	assert.Equal(t, 97.2, result["total"])
	meta := result["meta"].(map[string]any)
	assert.Equal(t, []any{"FALLBACK_AVG_NODES"}, meta["warnings"])
	assert.Len(t, meta["assumptions"], 1)
	assert.NotContains(t, decoded, "sensitivity")
}

func TestMarkdownFormatter(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter().Render(&buf, report))
	out := buf.String()

	assert.Contains(t, out, "## DBU cost estimate: nightly etl")
	assert.Contains(t, out, "| Usage | 648 | 0.15 | 97.20 USD |")
	assert.Contains(t, out, "| **Total** | | | **97.20 USD** |")
	assert.Contains(t, out, "- `FALLBACK_AVG_NODES`")
	assert.Contains(t, out, "<details><summary>Assumptions</summary>")
}
