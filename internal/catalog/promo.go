package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

// Promo is one entry of the approved promo table. DiscountPercent applies to
// the converted subtotal; at most one promo is active per cart.
type Promo struct {
	Code            string
	DiscountPercent decimal.Decimal
}

// Static table today; ValidatePromo is the seam a remote lookup would replace.
var promos = map[string]Promo{
	"SAFE20":    {Code: "SAFE20", DiscountPercent: decimal.NewFromInt(20)},
	"WELCOME10": {Code: "WELCOME10", DiscountPercent: decimal.NewFromInt(10)},
	"BOLAJON5":  {Code: "BOLAJON5", DiscountPercent: decimal.NewFromInt(5)},
}

// ValidatePromo resolves a promo code or fails with PROMO_INVALID.
func ValidatePromo(code string) (Promo, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return Promo{}, pkgerrors.New(pkgerrors.CodePromoInvalid, "promo code is required")
	}
	promo, ok := promos[normalized]
	if !ok {
		return Promo{}, pkgerrors.New(pkgerrors.CodePromoInvalid, "promo code is not valid").WithDetails(map[string]any{"code": normalized})
	}
	return promo, nil
}
