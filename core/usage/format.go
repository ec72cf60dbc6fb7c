package usage

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// printer is shared by every call; message.Printer pools its buffers.
var printer = message.NewPrinter(language.AmericanEnglish)

// FormatNumber renders v the way assumption strings show numbers:
// en-US grouping, at most two fraction digits, halves rounded away
// from zero on the shortest decimal form, non-finite as "0".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	rounded := decimal.NewFromFloat(v).Round(2)
	if rounded.IsZero() {
		return "0"
	}
	return printer.Sprintf("%v", number.Decimal(rounded.InexactFloat64(), number.MaxFractionDigits(2)))
}
