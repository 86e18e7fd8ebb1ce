// Package money holds the decimal helpers shared by the pricing engine and
// the approval gate. All monetary arithmetic in the service goes through
// shopspring/decimal; float64 money is not allowed anywhere.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round applies the display/final rounding policy: round-half-up to the
// currency's exponent (0 for zero-decimal currencies, 2 for minor-unit
// currencies). Intermediate arithmetic is never rounded.
func Round(amount decimal.Decimal, exponent int32) decimal.Decimal {
	return amount.Round(exponent)
}

// Percent returns base × pct / 100 without rounding.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// Convert applies an exchange rate without rounding.
func Convert(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate)
}

// ToBase undoes a rate conversion, returning the base-currency amount.
func ToBase(converted, rate decimal.Decimal) decimal.Decimal {
	return converted.Div(rate)
}

// FromUnits builds a decimal from whole currency units (config values).
func FromUnits(units int64) decimal.Decimal {
	return decimal.NewFromInt(units)
}
