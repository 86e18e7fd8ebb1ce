// Package pricing computes checkout totals. Price is a pure function over
// its input: no clock, no randomness, no I/O, so the same input always
// produces byte-identical output. All arithmetic runs on shopspring
// decimals; rounding happens once per output field, never between steps.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/bolajon/bolajon-backend/internal/catalog"
	"github.com/bolajon/bolajon-backend/pkg/money"
)

// Input carries everything the engine needs. Subtotal and ShippingBase are
// base-currency amounts; Method and DiscountPercent are optional.
type Input struct {
	Subtotal        decimal.Decimal
	Currency        catalog.Currency
	Method          *catalog.PaymentMethod
	DiscountPercent decimal.Decimal
	ShippingBase    decimal.Decimal
}

// Result is the pricing breakdown in the display currency. Every field is
// rounded to the currency exponent; GrandTotal is rounded from the exact
// intermediate sum, so it may differ from the sum of the rounded components
// by at most one minor unit.
type Result struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Currency       string          `json:"currency"`
}

// Price converts the subtotal into the display currency, applies the promo
// discount, adds shipping, then charges the method fee on the discounted
// total including shipping.
func Price(in Input) Result {
	converted := money.Convert(in.Subtotal, in.Currency.RateToBase)
	discount := money.Percent(converted, in.DiscountPercent)
	shipping := money.Convert(in.ShippingBase, in.Currency.RateToBase)

	feeBase := converted.Sub(discount).Add(shipping)
	fee := decimal.Zero
	if in.Method != nil {
		fee = money.Percent(feeBase, in.Method.FeePercent)
	}
	grand := feeBase.Add(fee)

	exp := in.Currency.Exponent
	return Result{
		Subtotal:       money.Round(converted, exp),
		DiscountAmount: money.Round(discount, exp),
		ShippingAmount: money.Round(shipping, exp),
		FeeAmount:      money.Round(fee, exp),
		GrandTotal:     money.Round(grand, exp),
		Currency:       in.Currency.Code,
	}
}

// GrandTotalBase converts a display-currency grand total back into the base
// currency. The approval gate compares against a base-currency threshold, so
// the comparison is stable when the shopper flips display currency.
func GrandTotalBase(grandTotal decimal.Decimal, currency catalog.Currency) decimal.Decimal {
	return money.ToBase(grandTotal, currency.RateToBase)
}
