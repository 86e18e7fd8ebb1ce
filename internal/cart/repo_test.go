package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bolajon/bolajon-backend/pkg/db/models"
	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
	"github.com/bolajon/bolajon-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  shopper_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  product_snapshot TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

func newCartRecord(t *testing.T, db *gorm.DB, shopperID uuid.UUID, status enums.CartStatus) *models.CartRecord {
	t.Helper()

	record := &models.CartRecord{
		ID:        uuid.New(),
		ShopperID: shopperID,
		Status:    status,
	}
	require.NoError(t, db.Create(record).Error)
	return record
}

func newCartItemRow(cartID, productID uuid.UUID, qty int, price int64) models.CartItem {
	return models.CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(price),
		ProductSnapshot: dbtypes.ProductSnapshot{
			Title: "Wooden Blocks",
		},
	}
}

func TestRepositoryFindActiveByShopper(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	shopperID := uuid.New()

	newCartRecord(t, db, shopperID, enums.CartStatusConverted)
	active := newCartRecord(t, db, shopperID, enums.CartStatusActive)
	require.NoError(t, db.Create(&[]models.CartItem{
		newCartItemRow(active.ID, uuid.New(), 2, 45000),
	}).Error)

	found, err := repo.FindActiveByShopper(ctx, shopperID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)
	assert.Len(t, found.Items, 1)

	_, err = repo.FindActiveByShopper(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateDefaultsStatus(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	record, err := repo.Create(context.Background(), &models.CartRecord{
		ID:        uuid.New(),
		ShopperID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusActive, record.Status)
}

func TestRepositoryReplaceItems(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	record := newCartRecord(t, db, uuid.New(), enums.CartStatusActive)
	original := newCartItemRow(record.ID, uuid.New(), 1, 10000)
	require.NoError(t, db.Create(&original).Error)

	next := []models.CartItem{
		newCartItemRow(uuid.Nil, uuid.New(), 3, 25000),
		newCartItemRow(uuid.Nil, uuid.New(), 1, 99000),
	}
	require.NoError(t, repo.ReplaceItems(ctx, record.ID, next))

	var rows []models.CartItem
	require.NoError(t, db.Where("cart_id = ?", record.ID).Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, record.ID, row.CartID)
		assert.NotEqual(t, original.ProductID, row.ProductID)
	}

	require.NoError(t, repo.ReplaceItems(ctx, record.ID, nil))
	require.NoError(t, db.Where("cart_id = ?", record.ID).Find(&rows).Error)
	assert.Empty(t, rows)
}

func TestRepositoryUpdateStatusScopedToShopper(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	shopperID := uuid.New()

	record := newCartRecord(t, db, shopperID, enums.CartStatusActive)

	require.NoError(t, repo.UpdateStatus(ctx, record.ID, uuid.New(), enums.CartStatusConverted))
	var unchanged models.CartRecord
	require.NoError(t, db.First(&unchanged, "id = ?", record.ID).Error)
	assert.Equal(t, enums.CartStatusActive, unchanged.Status)

	require.NoError(t, repo.UpdateStatus(ctx, record.ID, shopperID, enums.CartStatusConverted))
	var updated models.CartRecord
	require.NoError(t, db.First(&updated, "id = ?", record.ID).Error)
	assert.Equal(t, enums.CartStatusConverted, updated.Status)
}

func TestRepositoryDeleteByShopper(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	shopperID := uuid.New()

	newCartRecord(t, db, shopperID, enums.CartStatusActive)
	other := newCartRecord(t, db, uuid.New(), enums.CartStatusActive)

	require.NoError(t, repo.DeleteByShopper(ctx, shopperID))

	var rows []models.CartRecord
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, other.ID, rows[0].ID)
}
