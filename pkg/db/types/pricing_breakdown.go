package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingBreakdown is the frozen pricing result persisted with an order.
// Amounts are decimal strings in the order's currency.
type PricingBreakdown struct {
	Currency       string          `json:"currency"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

func (p PricingBreakdown) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PricingBreakdown) Scan(value any) error {
	if value == nil {
		*p = PricingBreakdown{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("pricing breakdown: unsupported scan type %T", value)
	}
}
