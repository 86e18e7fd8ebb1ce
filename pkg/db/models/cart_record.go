package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bolajon/bolajon-backend/pkg/enums"
)

// CartRecord is the server-held (remote mode) cart for one shopper.
// Totals are never written independently; they are recomputed from Items.
type CartRecord struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopperID uuid.UUID        `gorm:"column:shopper_id;type:uuid;not null"`
	Status    enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'active'"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
