package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
)

// OrderLineItem is an immutable copy of a cart line at submission time.
type OrderLineItem struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID               `gorm:"column:order_id;type:uuid;not null"`
	ProductID       uuid.UUID               `gorm:"column:product_id;type:uuid;not null"`
	Quantity        int                     `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal         `gorm:"column:unit_price;type:numeric(18,4);not null"`
	LineTotal       decimal.Decimal         `gorm:"column:line_total;type:numeric(18,4);not null"`
	ProductSnapshot dbtypes.ProductSnapshot `gorm:"column:product_snapshot;type:jsonb"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
}
