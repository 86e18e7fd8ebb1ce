package cart

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajon/bolajon-backend/pkg/db/models"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/logger"
)

type stubCartRepo struct {
	record   *models.CartRecord
	items    map[uuid.UUID][]models.CartItem
	replaced int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{items: map[uuid.UUID][]models.CartItem{}}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) FindActiveByShopper(ctx context.Context, shopperID uuid.UUID) (*models.CartRecord, error) {
	if s.record == nil || s.record.ShopperID != shopperID {
		return nil, gorm.ErrRecordNotFound
	}
	record := *s.record
	record.Items = s.items[record.ID]
	return &record, nil
}

func (s *stubCartRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	s.record = record
	return record, nil
}

func (s *stubCartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	s.items[cartID] = items
	s.replaced++
	return nil
}

func (s *stubCartRepo) UpdateStatus(ctx context.Context, id, shopperID uuid.UUID, status enums.CartStatus) error {
	if s.record != nil && s.record.ID == id && s.record.ShopperID == shopperID {
		s.record.Status = status
	}
	return nil
}

func (s *stubCartRepo) DeleteByShopper(ctx context.Context, shopperID uuid.UUID) error {
	if s.record != nil && s.record.ShopperID == shopperID {
		s.record = nil
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubGuestStore struct {
	carts   map[string]*Cart
	deleted []string
}

func newStubGuestStore() *stubGuestStore {
	return &stubGuestStore{carts: map[string]*Cart{}}
}

func (s *stubGuestStore) Load(ctx context.Context, guestToken string) (*Cart, error) {
	if c, ok := s.carts[guestToken]; ok {
		return c, nil
	}
	return New(enums.CartModeLocal), nil
}

func (s *stubGuestStore) Save(ctx context.Context, guestToken string, c *Cart) error {
	s.carts[guestToken] = c
	return nil
}

func (s *stubGuestStore) Delete(ctx context.Context, guestToken string) error {
	delete(s.carts, guestToken)
	s.deleted = append(s.deleted, guestToken)
	return nil
}

type stubFlagStore struct {
	seen map[string]bool
}

func newStubFlagStore() *stubFlagStore {
	return &stubFlagStore{seen: map[string]bool{}}
}

func (s *stubFlagStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubFlagStore) ReconcileFlagKey(shopperID, loginSessionID string) string {
	return fmt.Sprintf("reconciled:%s:%s", shopperID, loginSessionID)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo CartRepository, guests GuestStore, flags reconcileFlagStore) Service {
	t.Helper()

	svc, err := NewService(repo, guests, stubTxRunner{}, flags, nil, testLogger(), DefaultMaxItemQuantity, time.Hour)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestServiceRequiresOwner(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubCartRepo(), newStubGuestStore(), newStubFlagStore())

	_, err := svc.Get(context.Background(), Owner{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceGuestMutationsPersistToStore(t *testing.T) {
	t.Parallel()

	guests := newStubGuestStore()
	svc := newTestService(t, newStubCartRepo(), guests, newStubFlagStore())
	owner := Owner{GuestToken: "tok-1"}
	product := testProduct(15000)

	got, err := svc.AddItem(context.Background(), owner, product, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ItemCount != 2 || got.Mode != enums.CartModeLocal {
		t.Fatalf("unexpected cart: %+v", got)
	}
	if stored := guests.carts["tok-1"]; stored == nil || stored.ItemCount != 2 {
		t.Fatal("expected guest cart to be saved")
	}

	got, err = svc.UpdateQuantity(context.Background(), owner, product.ID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ItemCount != 5 {
		t.Fatalf("expected quantity 5, got %d", got.ItemCount)
	}

	got, err = svc.RemoveItem(context.Background(), owner, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatal("expected empty cart after removal")
	}
}

func TestServiceShopperMutationsCreateAndReplace(t *testing.T) {
	t.Parallel()

	repo := newStubCartRepo()
	svc := newTestService(t, repo, newStubGuestStore(), newStubFlagStore())
	owner := Owner{ShopperID: uuid.New()}

	got, err := svc.AddItem(context.Background(), owner, testProduct(30000), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Mode != enums.CartModeRemote {
		t.Fatalf("expected remote mode, got %s", got.Mode)
	}
	if repo.record == nil || repo.record.ShopperID != owner.ShopperID {
		t.Fatal("expected cart record to be created")
	}
	if repo.replaced != 1 {
		t.Fatalf("expected one ReplaceItems call, got %d", repo.replaced)
	}
	if len(repo.items[repo.record.ID]) != 1 {
		t.Fatal("expected persisted items")
	}
}

func TestServiceAddItemRejectsBadQuantity(t *testing.T) {
	t.Parallel()

	repo := newStubCartRepo()
	svc := newTestService(t, repo, newStubGuestStore(), newStubFlagStore())

	_, err := svc.AddItem(context.Background(), Owner{ShopperID: uuid.New()}, testProduct(1000), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidQuantity {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.replaced != 0 {
		t.Fatal("rejected mutation must not persist")
	}
}

func TestServiceReconcileMergesOnce(t *testing.T) {
	t.Parallel()

	repo := newStubCartRepo()
	guests := newStubGuestStore()
	svc := newTestService(t, repo, guests, newStubFlagStore())

	shopperID := uuid.New()
	shared := testProduct(20000)

	local := New(enums.CartModeLocal)
	if err := local.AddItem(shared, 3); err != nil {
		t.Fatalf("seeding local cart: %v", err)
	}
	guests.carts["tok-9"] = local

	if _, err := svc.AddItem(context.Background(), Owner{ShopperID: shopperID}, shared, 2); err != nil {
		t.Fatalf("seeding remote cart: %v", err)
	}

	merged, err := svc.Reconcile(context.Background(), "tok-9", shopperID, "login-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.ItemCount != 5 {
		t.Fatalf("expected merged quantity 5, got %d", merged.ItemCount)
	}
	if len(guests.deleted) != 1 || guests.deleted[0] != "tok-9" {
		t.Fatal("expected guest cart deleted after merge")
	}

	// Replay with the same login session returns the canonical cart untouched.
	guests.carts["tok-9"] = local
	again, err := svc.Reconcile(context.Background(), "tok-9", shopperID, "login-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ItemCount != 5 {
		t.Fatalf("replay must not re-merge, got %d", again.ItemCount)
	}
	if len(guests.deleted) != 1 {
		t.Fatal("replay must not delete the guest cart again")
	}
}

func TestServiceReconcileValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubCartRepo(), newStubGuestStore(), newStubFlagStore())

	_, err := svc.Reconcile(context.Background(), "tok", uuid.Nil, "login-1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Reconcile(context.Background(), "tok", uuid.New(), "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}
