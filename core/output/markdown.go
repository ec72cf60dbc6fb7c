package output

import (
	"fmt"
	"io"
	"strings"

	"dbu-cost/core/usage"
)

// MarkdownFormatter renders a report as a markdown table
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// Render writes the report
func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	res := report.Result
	cur := res.Meta.Currency
	scale := report.Scale

	var b strings.Builder
	title := "DBU cost estimate"
	if report.Name != "" {
		title += ": " + report.Name
	}
	fmt.Fprintf(&b, "## %s\n\n", title)
	fmt.Fprintf(&b, "Rate: `%s` · pricing version `%s`", QueryLabel(report.Query), res.Meta.Version)
	if report.PricingFromCache {
		b.WriteString(" (last known good)")
	}
	b.WriteString("\n\n")

	b.WriteString("| Line | DBU/month | Rate | Cost |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| Usage | %s | %s | %s |\n",
		usage.FormatNumber(res.Usage.Quantity), Rate(res.Usage.Rate), Money(res.Usage.Cost, scale, cur))
	fmt.Fprintf(&b, "| Infra | | | %s |\n", Money(res.Infra.Cost, scale, cur))
	fmt.Fprintf(&b, "| **Total** | | | **%s** |\n", Money(res.Total, scale, cur))

	if sens := report.Sensitivity; sens != nil {
		b.WriteString("\n| Sensitivity | Total |\n|---|---:|\n")
		fmt.Fprintf(&b, "| Min | %s |\n", Money(sens.Min.Total, scale, cur))
		fmt.Fprintf(&b, "| Expected | %s |\n", Money(sens.Expected.Total, scale, cur))
		fmt.Fprintf(&b, "| Max | %s |\n", Money(sens.Max.Total, scale, cur))
	}

	if report.Variant != nil && report.Delta != nil {
		b.WriteString("\n")
		if report.Delta.CurrencyMismatch {
			b.WriteString("Variant is not comparable: currencies differ.\n")
		} else {
			fmt.Fprintf(&b, "Variant total %s (%s %s)\n",
				Money(report.Variant.Total, scale, report.Variant.Meta.Currency), SignedAmount(report.Delta.Total, scale), cur)
		}
	}

	if len(res.Meta.Warnings) > 0 {
		b.WriteString("\n**Warnings**\n\n")
		for _, code := range res.Meta.Warnings {
			fmt.Fprintf(&b, "- `%s` %s\n", code, DescribeWarning(code))
		}
	}

	if !report.HideAssumptions && len(res.Meta.Assumptions) > 0 {
		b.WriteString("\n<details><summary>Assumptions</summary>\n\n")
		for _, a := range res.Meta.Assumptions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n</details>\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
