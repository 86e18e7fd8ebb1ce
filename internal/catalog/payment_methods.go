package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

// PaymentMethod describes one entry of the fee schedule. Min/Max bound the
// converted grand total in the method's own currency terms; FeePercent is
// applied by the pricing engine on top of the discounted subtotal.
type PaymentMethod struct {
	ID                  string
	Label               string
	SupportedCurrencies map[string]struct{}
	FeePercent          decimal.Decimal
	MinAmount           decimal.Decimal
	MaxAmount           decimal.Decimal
}

var paymentMethods = []PaymentMethod{
	{
		ID:                  "payme",
		Label:               "Payme",
		SupportedCurrencies: currencySet("UZS"),
		FeePercent:          decimal.Zero,
		MinAmount:           decimal.NewFromInt(1000),
		MaxAmount:           decimal.NewFromInt(50000000),
	},
	{
		ID:                  "click",
		Label:               "Click",
		SupportedCurrencies: currencySet("UZS"),
		FeePercent:          decimal.RequireFromString("0.5"),
		MinAmount:           decimal.NewFromInt(1000),
		MaxAmount:           decimal.NewFromInt(20000000),
	},
	{
		ID:                  "card",
		Label:               "Bank card",
		SupportedCurrencies: currencySet("UZS", "USD", "EUR"),
		FeePercent:          decimal.RequireFromString("1.5"),
		MinAmount:           decimal.Zero,
		MaxAmount:           decimal.NewFromInt(100000000),
	},
	{
		ID:                  "cash_on_delivery",
		Label:               "Cash on delivery",
		SupportedCurrencies: currencySet("UZS"),
		FeePercent:          decimal.Zero,
		MinAmount:           decimal.Zero,
		MaxAmount:           decimal.NewFromInt(3000000),
	},
}

// PaymentMethods returns the fee schedule.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// MethodByID resolves a payment method identifier.
func MethodByID(id string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(id))
	for _, m := range paymentMethods {
		if m.ID == normalized {
			return m, nil
		}
	}
	return PaymentMethod{}, pkgerrors.New(pkgerrors.CodeNotFound, "unknown payment method")
}

// EnsureEligible rejects a method whose supported-currency set excludes the
// active currency, or whose [MinAmount, MaxAmount] bounds exclude the
// converted total. Both block advancement past the payment step.
func EnsureEligible(method PaymentMethod, currency Currency, convertedTotal decimal.Decimal) error {
	if _, ok := method.SupportedCurrencies[currency.Code]; !ok {
		return pkgerrors.New(pkgerrors.CodeMethodIneligible, "payment method does not support the selected currency").
			WithDetails(map[string]any{"method": method.ID, "currency": currency.Code})
	}
	if convertedTotal.LessThan(method.MinAmount) {
		return pkgerrors.New(pkgerrors.CodeMethodIneligible, "order total below the method minimum").
			WithDetails(map[string]any{"method": method.ID, "min": method.MinAmount.String()})
	}
	if method.MaxAmount.IsPositive() && convertedTotal.GreaterThan(method.MaxAmount) {
		return pkgerrors.New(pkgerrors.CodeMethodIneligible, "order total above the method maximum").
			WithDetails(map[string]any{"method": method.ID, "max": method.MaxAmount.String()})
	}
	return nil
}

func currencySet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}
