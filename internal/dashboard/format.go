package dashboard

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Money renders v with thousands grouping, e.g. 5000 -> "5,000".
func Money(v decimal.Decimal) string {
	return printer.Sprintf("%v", number.Decimal(v.InexactFloat64(), number.MaxFractionDigits(2)))
}

// CompactCurrency is the calendar cell label: "" for zero, "$1.5k" from a
// thousand up, "$850" below.
func CompactCurrency(v decimal.Decimal) string {
	if v.IsZero() {
		return ""
	}
	if v.GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		return fmt.Sprintf("$%sk", v.Div(decimal.NewFromInt(1000)).StringFixed(1))
	}
	return "$" + v.String()
}

// truncate keeps the first n runes. Multi-byte characters are never split.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
