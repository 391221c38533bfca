// Package journal serializes bookings and balance assertions to the
// plain-text ledger format and writes the root include index.
package journal

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledgerimport/record"
)

const (
	// Indentation is the leading spacing of a posting line.
	Indentation = "  "

	// AccountAmountSpacing separates an account from its amount clause.
	AccountAmountSpacing = "  "

	// baseCommodityDecimals is the minimum fraction-digit count for the
	// base cash commodity. Other commodities default to none.
	baseCommodityDecimals = 2

	// PriceDecimals is the minimum fraction-digit count for price lines.
	PriceDecimals = 4
)

// UseDefaultDecimals selects the per-commodity minimum fraction digits
// (baseCommodityDecimals for the base cash commodity, 0 otherwise).
const UseDefaultDecimals = -1

// Format carries the output formatting configuration.
type Format struct {
	// DecimalSeparator replaces the decimal point in rendered numbers.
	DecimalSeparator string

	// BaseCommodity is the cash commodity rendered with at least two
	// fraction digits.
	BaseCommodity string
}

// DefaultFormat renders with a comma separator and EUR as base commodity.
var DefaultFormat = Format{DecimalSeparator: ",", BaseCommodity: "EUR"}

var plainCommodity = regexp.MustCompile(`^[A-Za-z]*$`)

// Number renders d exactly as a fixed-point decimal string, padded to at
// least minDecimal fraction digits. No rounding ever occurs; padding only
// adds zeros.
func (f Format) Number(d decimal.Decimal, minDecimal int) string {
	places := -d.Exponent()
	if places < 0 {
		places = 0
	}
	if int(places) < minDecimal {
		places = int32(minDecimal)
	}
	s := d.StringFixed(places)
	if f.DecimalSeparator != "." {
		s = strings.Replace(s, ".", f.DecimalSeparator, 1)
	}
	return s
}

// Exact renders an amount with its commodity, using the commodity's default
// minimum fraction digits.
func (f Format) Exact(amount decimal.Decimal, c record.Commodity) string {
	return f.ExactMin(amount, c, UseDefaultDecimals)
}

// ExactMin renders an amount with its commodity and an explicit minimum
// fraction-digit count (UseDefaultDecimals selects the per-commodity
// default). A priced commodity renders its cost-basis clause recursively:
//
//	3 VGWL @@ 1234,00 EUR
func (f Format) ExactMin(amount decimal.Decimal, c record.Commodity, minDecimal int) string {
	if c.Exchange != nil {
		base := record.Commodity{Symbol: c.Symbol}
		return f.ExactMin(amount, base, minDecimal) +
			" @@ " +
			f.ExactMin(c.Exchange.Value, c.Exchange.Commodity, minDecimal)
	}

	if minDecimal == UseDefaultDecimals {
		if c.Symbol == f.BaseCommodity {
			minDecimal = baseCommodityDecimals
		} else {
			minDecimal = 0
		}
	}

	return f.Number(amount, minDecimal) + " " + EscapeCommodity(c.Symbol)
}

// EscapeCommodity quotes commodity names containing anything outside
// [A-Za-z], per the hledger commodity grammar.
func EscapeCommodity(symbol string) string {
	if plainCommodity.MatchString(symbol) {
		return symbol
	}
	return `"` + symbol + `"`
}

var newlines = strings.NewReplacer("\r\n", " | ", "\r", " | ", "\n", " | ")

// Sanitize folds line breaks in a description into " | " so the
// description stays on a single journal line.
func Sanitize(text string) string {
	return newlines.Replace(text)
}
