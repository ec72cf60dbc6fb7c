package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dbu-cost/core/usage"
)

var (
	colorTitle   = lipgloss.Color("#00d4ff")
	colorLabel   = lipgloss.Color("#0099cc")
	colorWarning = lipgloss.Color("#f97316")
	colorMuted   = lipgloss.Color("#8b8b8b")
)

// TextFormatter renders a styled terminal report. Styling degrades to
// plain text when the writer is not a terminal.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format returns the format type
func (f *TextFormatter) Format() Format {
	return FormatText
}

type textStyles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	total   lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:   r.NewStyle().Bold(true).Foreground(colorTitle),
		label:   r.NewStyle().Foreground(colorLabel).Width(13),
		total:   r.NewStyle().Bold(true),
		warning: r.NewStyle().Bold(true).Foreground(colorWarning),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// Render writes the report
func (f *TextFormatter) Render(w io.Writer, report *Report) error {
	s := newTextStyles(w)
	res := report.Result
	cur := res.Meta.Currency
	scale := report.Scale

	var b strings.Builder
	title := "DBU cost estimate"
	if report.Name != "" {
		title += " · " + report.Name
	}
	b.WriteString(s.title.Render(title) + "\n")

	line := func(label, value string) {
		b.WriteString(s.label.Render(label) + value + "\n")
	}
	line("Rate", QueryLabel(report.Query))
	line("Usage", fmt.Sprintf("%s DBU/month × %s %s = %s",
		usage.FormatNumber(res.Usage.Quantity), Rate(res.Usage.Rate), cur, Money(res.Usage.Cost, scale, cur)))
	line("Infra", Money(res.Infra.Cost, scale, cur))
	line("Total", s.total.Render(Money(res.Total, scale, cur)))

	pricing := "version " + res.Meta.Version
	if report.PricingFromCache {
		pricing += s.warning.Render(" (last known good)")
	}
	line("Pricing", pricing)

	if sens := report.Sensitivity; sens != nil {
		line("Sensitivity", fmt.Sprintf("min %s · expected %s · max %s",
			Money(sens.Min.Total, scale, cur), Money(sens.Expected.Total, scale, cur), Money(sens.Max.Total, scale, cur)))
	}

	if report.Variant != nil {
		vcur := report.Variant.Meta.Currency
		line("Variant", Money(report.Variant.Total, scale, vcur))
		if d := report.Delta; d != nil {
			if d.CurrencyMismatch {
				line("Delta", s.muted.Render("not comparable: currencies differ"))
			} else {
				line("Delta", fmt.Sprintf("%s %s (usage %s · infra %s)",
					SignedAmount(d.Total, scale), cur, SignedAmount(d.Usage, scale), SignedAmount(d.Infra, scale)))
			}
		}
	}

	if len(report.PricingIssues) > 0 {
		b.WriteString("\n" + s.warning.Render("Pricing issues") + "\n")
		for _, issue := range report.PricingIssues {
			b.WriteString("  - " + issue + "\n")
		}
	}

	if len(res.Meta.Warnings) > 0 {
		b.WriteString("\n" + s.warning.Render("Warnings") + "\n")
		for _, code := range res.Meta.Warnings {
			b.WriteString(fmt.Sprintf("  ! %s %s\n", s.warning.Render(code.String()), DescribeWarning(code)))
		}
	}

	if !report.HideAssumptions && len(res.Meta.Assumptions) > 0 {
		b.WriteString("\n" + s.title.Render("Assumptions") + "\n")
		for _, a := range res.Meta.Assumptions {
			b.WriteString("  - " + a + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
