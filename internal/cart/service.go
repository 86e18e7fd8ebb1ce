package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajon/bolajon-backend/pkg/db/models"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/logger"
	"github.com/bolajon/bolajon-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reconcileFlagStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReconcileFlagKey(shopperID, loginSessionID string) string
}

// Owner identifies whose cart an operation targets: a signed-in shopper by
// id, or a guest by the opaque token the client holds.
type Owner struct {
	ShopperID  uuid.UUID
	GuestToken string
}

// IsGuest reports whether the owner is an anonymous guest.
func (o Owner) IsGuest() bool {
	return o.ShopperID == uuid.Nil
}

func (o Owner) validate() error {
	if o.ShopperID == uuid.Nil && o.GuestToken == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a shopper id or guest token is required")
	}
	return nil
}

// Service exposes mode-dispatching cart operations.
type Service interface {
	Get(ctx context.Context, owner Owner) (*Cart, error)
	AddItem(ctx context.Context, owner Owner, product Product, quantity int) (*Cart, error)
	UpdateQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, owner Owner) (*Cart, error)
	Reconcile(ctx context.Context, guestToken string, shopperID uuid.UUID, loginSessionID string) (*Cart, error)
}

type service struct {
	repo         CartRepository
	guests       GuestStore
	tx           txRunner
	flags        reconcileFlagStore
	metrics      *metrics.CheckoutMetrics
	logg         *logger.Logger
	maxQty       int
	reconcileTTL time.Duration
}

// NewService builds a cart service backed by the provided stack. The
// reconcile TTL bounds how long a login session's merge flag is remembered
// and should match the server-side session lifetime.
func NewService(
	repo CartRepository,
	guests GuestStore,
	tx txRunner,
	flags reconcileFlagStore,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
	maxQty int,
	reconcileTTL time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if guests == nil {
		return nil, fmt.Errorf("guest store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if flags == nil {
		return nil, fmt.Errorf("reconcile flag store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxQty <= 0 {
		maxQty = DefaultMaxItemQuantity
	}
	if reconcileTTL <= 0 {
		return nil, fmt.Errorf("reconcile ttl must be positive")
	}
	return &service{
		repo:         repo,
		guests:       guests,
		tx:           tx,
		flags:        flags,
		metrics:      m,
		logg:         logg,
		maxQty:       maxQty,
		reconcileTTL: reconcileTTL,
	}, nil
}

// Get returns the owner's cart, empty if nothing has been added yet.
func (s *service) Get(ctx context.Context, owner Owner) (*Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if owner.IsGuest() {
		return s.loadGuest(ctx, owner.GuestToken)
	}
	record, err := s.repo.FindActiveByShopper(ctx, owner.ShopperID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c := New(enums.CartModeRemote)
		c.MaxQty = s.maxQty
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	c := fromRecord(record)
	c.MaxQty = s.maxQty
	return c, nil
}

// AddItem merges the product into the owner's cart and persists the result.
func (s *service) AddItem(ctx context.Context, owner Owner, product Product, quantity int) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		return c.AddItem(product, quantity)
	})
}

// UpdateQuantity sets the line quantity; zero or below removes the line.
func (s *service) UpdateQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		return c.UpdateQuantity(productID, quantity)
	})
}

// RemoveItem drops the line; removing an absent product succeeds.
func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

// Clear empties the owner's cart.
func (s *service) Clear(ctx context.Context, owner Owner) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

func (s *service) mutate(ctx context.Context, owner Owner, fn func(c *Cart) error) (*Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if owner.IsGuest() {
		return s.mutateGuest(ctx, owner.GuestToken, fn)
	}
	return s.mutateRemote(ctx, owner.ShopperID, fn)
}

func (s *service) mutateGuest(ctx context.Context, guestToken string, fn func(c *Cart) error) (*Cart, error) {
	c, err := s.loadGuest(ctx, guestToken)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.guests.Save(ctx, guestToken, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) mutateRemote(ctx context.Context, shopperID uuid.UUID, fn func(c *Cart) error) (*Cart, error) {
	var result *Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		c, err := s.loadOrCreateRemote(ctx, repo, shopperID)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		if err := repo.ReplaceItems(ctx, c.ID, toItems(c)); err != nil {
			return fmt.Errorf("persisting cart items: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) loadOrCreateRemote(ctx context.Context, repo CartRepository, shopperID uuid.UUID) (*Cart, error) {
	record, err := repo.FindActiveByShopper(ctx, shopperID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record, err = repo.Create(ctx, &models.CartRecord{ShopperID: shopperID})
		if err != nil {
			return nil, fmt.Errorf("creating cart: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	c := fromRecord(record)
	c.MaxQty = s.maxQty
	return c, nil
}

func (s *service) loadGuest(ctx context.Context, guestToken string) (*Cart, error) {
	c, err := s.guests.Load(ctx, guestToken)
	if err != nil {
		return nil, err
	}
	c.MaxQty = s.maxQty
	return c, nil
}

// Reconcile merges the guest cart into the shopper's cart at login. The merge
// runs at most once per login session: a redis SetNX flag keyed by shopper
// and login session ids makes replays return the canonical cart untouched.
func (s *service) Reconcile(ctx context.Context, guestToken string, shopperID uuid.UUID, loginSessionID string) (*Cart, error) {
	if shopperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopper id is required")
	}
	if loginSessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "login session id is required")
	}

	first, err := s.flags.SetNX(ctx, s.flags.ReconcileFlagKey(shopperID.String(), loginSessionID), "1", s.reconcileTTL)
	if err != nil {
		return nil, fmt.Errorf("marking reconcile: %w", err)
	}
	if !first {
		return s.Get(ctx, Owner{ShopperID: shopperID})
	}

	var local *Cart
	if guestToken != "" {
		local, err = s.loadGuest(ctx, guestToken)
		if err != nil {
			return nil, err
		}
	}

	var merged *Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		remote, err := s.loadOrCreateRemote(ctx, repo, shopperID)
		if err != nil {
			return err
		}
		merged = Reconcile(local, remote)
		merged.MaxQty = s.maxQty
		if err := repo.ReplaceItems(ctx, merged.ID, toItems(merged)); err != nil {
			return fmt.Errorf("persisting merged cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if guestToken != "" {
		if err := s.guests.Delete(ctx, guestToken); err != nil {
			s.logg.Warn(s.logg.WithShopperID(ctx, shopperID.String()), "failed to clear guest cart after reconcile")
		}
	}
	if s.metrics != nil {
		s.metrics.IncReconcile()
	}
	s.logg.Info(s.logg.WithCartID(ctx, merged.ID.String()), "guest cart reconciled into shopper cart")
	return merged, nil
}
