// Package catalog holds the static reference data the checkout core reads:
// currencies with exchange rates, payment-method fee schedules, and the
// approved promo table. Everything here is immutable after init and safe for
// unsynchronized concurrent reads.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

// Currency describes a display/settlement currency. Converting a base-currency
// amount into this currency multiplies by RateToBase; converting back divides.
// The base currency (UZS) carries rate 1 and no minor units.
type Currency struct {
	Code       string
	Symbol     string
	RateToBase decimal.Decimal
	Exponent   int32
	IsDefault  bool
}

var currencies = []Currency{
	{Code: "UZS", Symbol: "so'm", RateToBase: decimal.NewFromInt(1), Exponent: 0, IsDefault: true},
	{Code: "USD", Symbol: "$", RateToBase: decimal.RequireFromString("0.000079"), Exponent: 2},
	{Code: "EUR", Symbol: "€", RateToBase: decimal.RequireFromString("0.000073"), Exponent: 2},
}

// Currencies returns the supported currency table.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// DefaultCurrency returns the settlement/display currency used absent a
// shopper selection.
func DefaultCurrency() Currency {
	for _, c := range currencies {
		if c.IsDefault {
			return c
		}
	}
	return currencies[0]
}

// CurrencyByCode resolves a currency code, case-insensitively.
func CurrencyByCode(code string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == normalized {
			return c, nil
		}
	}
	return Currency{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency").WithDetails(map[string]any{"currency": code})
}
