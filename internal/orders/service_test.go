package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	cartpkg "github.com/bolajon/bolajon-backend/internal/cart"
	"github.com/bolajon/bolajon-backend/pkg/db/models"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/logger"
	"github.com/bolajon/bolajon-backend/pkg/outbox"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  shopper_id TEXT NOT NULL,
  cart_id TEXT,
  boundary_order_id TEXT NOT NULL,
  idempotency_key TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL,
  payment_method_id TEXT NOT NULL,
  approval_status TEXT NOT NULL,
  shipping_address TEXT,
  pricing TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  line_total TEXT NOT NULL,
  product_snapshot TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  shopper_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  product_snapshot TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT,
  UNIQUE (event_type, aggregate_type, aggregate_id)
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type dbTxRunner struct {
	db *gorm.DB
}

func (r dbTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

type scriptedBoundary struct {
	calls    int
	failures int
	err      error
	result   BoundaryResult
}

func (b *scriptedBoundary) Submit(ctx context.Context, payload SubmissionPayload) (*BoundaryResult, error) {
	b.calls++
	if b.calls <= b.failures {
		return nil, b.err
	}
	result := b.result
	return &result, nil
}

func newOrdersTestService(t *testing.T, db *gorm.DB, boundary Boundary) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	publisher := outbox.NewService(outbox.NewRepository(db), logg)
	svc, err := NewService(
		dbTxRunner{db: db},
		NewRepository(db),
		cartpkg.NewRepository(db),
		boundary,
		publisher,
		nil,
		logg,
		3,
		time.Second,
	)
	require.NoError(t, err)
	return svc
}

func seedCart(t *testing.T, db *gorm.DB, payload SubmissionPayload) {
	t.Helper()

	record := &models.CartRecord{
		ID:        payload.CartID,
		ShopperID: payload.ShopperID,
		Status:    enums.CartStatusActive,
	}
	require.NoError(t, db.Create(record).Error)
	item := models.CartItem{
		ID:        payload.Items[0].ProductID,
		CartID:    payload.CartID,
		ProductID: payload.Items[0].ProductID,
		Quantity:  payload.Items[0].Quantity,
		UnitPrice: payload.Items[0].UnitPrice,
	}
	require.NoError(t, db.Create(&item).Error)
}

func TestPlaceRetriesThenRecordsExactlyOneOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	payload := testPayload()
	seedCart(t, db, payload)

	boundary := &scriptedBoundary{
		failures: 2,
		err:      &BoundaryError{Code: "TRANSPORT", Message: "connection reset", Retryable: true},
		result:   BoundaryResult{OrderID: "ord-777"},
	}
	svc := newOrdersTestService(t, db, boundary)

	order, err := svc.Place(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, 3, boundary.calls)
	require.Equal(t, "ord-777", order.BoundaryOrderID)
	require.Equal(t, enums.OrderStatusPlaced, order.Status)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.EqualValues(t, 1, orderCount)

	var eventCount int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&eventCount).Error)
	require.EqualValues(t, 1, eventCount)

	var cartRecord models.CartRecord
	require.NoError(t, db.First(&cartRecord, "id = ?", payload.CartID).Error)
	require.Equal(t, enums.CartStatusConverted, cartRecord.Status)

	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", payload.CartID).Count(&itemCount).Error)
	require.EqualValues(t, 0, itemCount)

	// A replay with the same idempotency key returns the recorded order
	// without touching the boundary again.
	again, err := svc.Place(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, order.ID, again.ID)
	require.Equal(t, 3, boundary.calls)

	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.EqualValues(t, 1, orderCount)
}

func TestPlaceExhaustsRetriesWithoutPersisting(t *testing.T) {
	db := setupOrdersTestDB(t)
	payload := testPayload()
	seedCart(t, db, payload)

	boundary := &scriptedBoundary{
		failures: 10,
		err:      &BoundaryError{Code: "HTTP_502", Message: "bad gateway", Retryable: true},
	}
	svc := newOrdersTestService(t, db, boundary)

	_, err := svc.Place(context.Background(), payload)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeSubmissionFailed, typed.Code())
	require.Equal(t, 3, boundary.calls)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.EqualValues(t, 0, orderCount)

	var cartRecord models.CartRecord
	require.NoError(t, db.First(&cartRecord, "id = ?", payload.CartID).Error)
	require.Equal(t, enums.CartStatusActive, cartRecord.Status)
}

func TestPlaceStopsOnTerminalRejection(t *testing.T) {
	db := setupOrdersTestDB(t)
	payload := testPayload()
	seedCart(t, db, payload)

	boundary := &scriptedBoundary{
		failures: 10,
		err:      &BoundaryError{Code: "OUT_OF_STOCK", Message: "gone", Retryable: false},
	}
	svc := newOrdersTestService(t, db, boundary)

	_, err := svc.Place(context.Background(), payload)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeSubmissionFailed, typed.Code())
	require.Equal(t, 1, boundary.calls)
}

func TestPlaceValidatesPayload(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db, &scriptedBoundary{result: BoundaryResult{OrderID: "x"}})

	payload := testPayload()
	payload.IdempotencyKey = ""

	_, err := svc.Place(context.Background(), payload)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
