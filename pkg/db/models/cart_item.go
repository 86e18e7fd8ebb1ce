package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
)

// CartItem is one product-quantity pair in a persisted cart. UnitPrice is
// the base-currency snapshot taken when the item was first added.
type CartItem struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID                `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product"`
	ProductID       uuid.UUID                `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product"`
	Quantity        int                      `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal          `gorm:"column:unit_price;type:numeric(18,4);not null"`
	ProductSnapshot dbtypes.ProductSnapshot  `gorm:"column:product_snapshot;type:jsonb"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
