// Package money centralizes monetary rounding and rendering. Every amount
// that is compared, summed or rendered must pass through Quantize first.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Quantize rounds an amount to 2 fractional digits, half up with ties away
// from zero: 0.005 rounds to 0.01, not to the nearest even digit.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with exactly 2 fractional digits and a dot
// separator, e.g. "59.90". Used for machine-readable fields.
func Format(d decimal.Decimal) string {
	return Quantize(d).StringFixed(2)
}

// FormatBRL renders an amount with exactly 2 fractional digits and a comma
// separator, e.g. "159,80". Used only for the customer-facing message.
func FormatBRL(d decimal.Decimal) string {
	return strings.Replace(Format(d), ".", ",", 1)
}
