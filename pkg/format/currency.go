// Package format renders amounts for display fields.
package format

import (
	"math"

	"github.com/iwvelando/blind-quote/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	amount = mathutil.Round(mathutil.Finite(amount))
	if amount < 0 {
		return "-$" + printer.Sprintf("%.2f", math.Abs(amount))
	}
	return "$" + printer.Sprintf("%.2f", amount)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return printer.Sprintf("%.2f", mathutil.Round(mathutil.Finite(amount)))
}

// Quantity renders a whole-unit count; fractional input is truncated toward zero.
func Quantity(qty float64) string {
	return printer.Sprintf("%d", int64(mathutil.Finite(qty)))
}

// Percent renders a percentage input the way it was typed, dropping a trailing ".00".
func Percent(pct float64) string {
	pct = mathutil.Round(mathutil.Finite(pct))
	if pct == math.Trunc(pct) {
		return printer.Sprintf("%d%%", int64(pct))
	}
	return printer.Sprintf("%.2f%%", pct)
}
