package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajon/bolajon-backend/pkg/db/models"
	"github.com/bolajon/bolajon-backend/pkg/enums"
)

// CartRepository defines the persistence surface required for shopper carts.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByShopper(ctx context.Context, shopperID uuid.UUID) (*models.CartRecord, error)
	Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
	UpdateStatus(ctx context.Context, id, shopperID uuid.UUID, status enums.CartStatus) error
	DeleteByShopper(ctx context.Context, shopperID uuid.UUID) error
}

// GuestStore holds local-mode carts keyed by guest token.
type GuestStore interface {
	Load(ctx context.Context, guestToken string) (*Cart, error)
	Save(ctx context.Context, guestToken string, c *Cart) error
	Delete(ctx context.Context, guestToken string) error
}
