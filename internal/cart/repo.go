package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajon/bolajon-backend/pkg/db/models"
	"github.com/bolajon/bolajon-backend/pkg/enums"
)

// Repository exposes persistence operations for remote-mode carts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new CartRecord.
func (r *Repository) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindActiveByShopper loads the latest active CartRecord for the shopper.
func (r *Repository) FindActiveByShopper(ctx context.Context, shopperID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("shopper_id = ? AND status = ?", shopperID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ReplaceItems atomically replaces cart items for the provided cart.
func (r *Repository) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = cartID
	}
	return tx.Create(&items).Error
}

// UpdateStatus updates the status of a CartRecord owned by the shopper.
func (r *Repository) UpdateStatus(ctx context.Context, id, shopperID uuid.UUID, status enums.CartStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ? AND shopper_id = ?", id, shopperID).
		Update("status", status).Error
}

// DeleteByShopper removes all CartRecords for the shopper.
func (r *Repository) DeleteByShopper(ctx context.Context, shopperID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("shopper_id = ?", shopperID).
		Delete(&models.CartRecord{}).Error
}
