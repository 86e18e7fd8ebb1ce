package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	"github.com/bolajon/bolajon-backend/pkg/types"
)

// Order is the local record of a submission accepted by the order boundary.
// IdempotencyKey is unique so a replayed submission can never insert twice.
type Order struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopperID       uuid.UUID                `gorm:"column:shopper_id;type:uuid;not null"`
	CartID          *uuid.UUID               `gorm:"column:cart_id;type:uuid"`
	BoundaryOrderID string                   `gorm:"column:boundary_order_id;not null"`
	IdempotencyKey  string                   `gorm:"column:idempotency_key;not null;uniqueIndex:ux_orders_idempotency_key"`
	Status          enums.OrderStatus        `gorm:"column:status;type:order_status;not null"`
	PaymentMethodID string                   `gorm:"column:payment_method_id;not null"`
	ApprovalStatus  enums.ApprovalStatus     `gorm:"column:approval_status;type:approval_status;not null"`
	ShippingAddress types.Address            `gorm:"column:shipping_address;type:jsonb"`
	Pricing         dbtypes.PricingBreakdown `gorm:"column:pricing;type:jsonb;not null"`
	LineItems       []OrderLineItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
