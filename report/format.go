// Package report renders a simulation ResultSet for people: a summary of the
// final row, a table of every sampled row and two chart series keyed by the
// same price labels.
package report

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formats money and positions for one locale.
type Formatter struct {
	p        *message.Printer
	Currency string
}

// NewFormatter returns a Formatter printing grouped integers for tag with
// currency appended to money values.
func NewFormatter(tag language.Tag, currency string) *Formatter {
	return &Formatter{p: message.NewPrinter(tag), Currency: currency}
}

// Japanese formats like the yen calculator: 41,150円.
func Japanese() *Formatter {
	return NewFormatter(language.Japanese, "円")
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// Number rounds x and groups thousands.
func (f *Formatter) Number(x float64) string {
	return f.p.Sprintf("%d", roundHalfUp(x))
}

// Money is Number followed by the currency suffix.
func (f *Formatter) Money(x float64) string {
	return f.Number(x) + f.Currency
}

// Position prints a position with exactly one decimal.
func (f *Formatter) Position(d decimal.Decimal) string {
	return d.StringFixed(1)
}

// ProfitClass is the style class of a P/L value.
func ProfitClass(pl float64) string {
	if pl >= 0 {
		return "profit-positive"
	}
	return "profit-negative"
}
