// Package orders sends a finished checkout to the order boundary and keeps
// the local record of what was accepted.
package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	"github.com/bolajon/bolajon-backend/pkg/types"
)

// SubmissionItem is a frozen cart line carried into the submission.
type SubmissionItem struct {
	ProductID uuid.UUID               `json:"product_id"`
	Quantity  int                     `json:"quantity"`
	UnitPrice decimal.Decimal         `json:"unit_price"`
	LineTotal decimal.Decimal         `json:"line_total"`
	Snapshot  dbtypes.ProductSnapshot `json:"snapshot"`
}

// SubmissionPayload is the immutable order request built when the session
// reaches Review. Retries reuse it as-is, idempotency key included.
type SubmissionPayload struct {
	ShopperID       uuid.UUID                `json:"shopper_id"`
	CartID          uuid.UUID                `json:"cart_id"`
	IdempotencyKey  string                   `json:"idempotency_key"`
	Items           []SubmissionItem         `json:"items"`
	ShippingAddress types.Address            `json:"shipping_address"`
	PaymentMethodID string                   `json:"payment_method_id"`
	PromoCode       string                   `json:"promo_code,omitempty"`
	Pricing         dbtypes.PricingBreakdown `json:"pricing"`
	ApprovalStatus  enums.ApprovalStatus     `json:"approval_status"`
}

// OrderPlacedEvent is the outbox payload published after a submission lands.
type OrderPlacedEvent struct {
	OrderID         uuid.UUID       `json:"orderId"`
	ShopperID       uuid.UUID       `json:"shopperId"`
	BoundaryOrderID string          `json:"boundaryOrderId"`
	GrandTotal      decimal.Decimal `json:"grandTotal"`
	Currency        string          `json:"currency"`
	ItemCount       int             `json:"itemCount"`
	PlacedAt        time.Time       `json:"placedAt"`
}
