package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

type guestCartBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	GuestCartKey(guestToken string) string
}

// RedisGuestStore keeps local-mode carts as JSON blobs in Redis so a guest
// can keep shopping across requests without an account.
type RedisGuestStore struct {
	store guestCartBackend
	ttl   time.Duration
}

// NewRedisGuestStore constructs a guest cart store with the provided TTL.
func NewRedisGuestStore(store guestCartBackend, ttl time.Duration) (*RedisGuestStore, error) {
	if store == nil {
		return nil, errors.New("redis store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("guest cart ttl must be positive")
	}
	return &RedisGuestStore{store: store, ttl: ttl}, nil
}

// Load returns the guest cart, or an empty local cart when none is stored.
func (s *RedisGuestStore) Load(ctx context.Context, guestToken string) (*Cart, error) {
	if guestToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest token is required")
	}
	raw, err := s.store.Get(ctx, s.store.GuestCartKey(guestToken))
	if errors.Is(err, redislib.Nil) {
		return New(enums.CartModeLocal), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading guest cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decoding guest cart: %w", err)
	}
	c.Mode = enums.CartModeLocal
	c.MaxQty = DefaultMaxItemQuantity
	c.recount()
	return &c, nil
}

// Save serializes and stores the guest cart, refreshing its TTL.
func (s *RedisGuestStore) Save(ctx context.Context, guestToken string, c *Cart) error {
	if guestToken == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "guest token is required")
	}
	if c == nil {
		return errors.New("cart is required")
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding guest cart: %w", err)
	}
	if err := s.store.Set(ctx, s.store.GuestCartKey(guestToken), payload, s.ttl); err != nil {
		return fmt.Errorf("storing guest cart: %w", err)
	}
	return nil
}

// Delete removes the guest cart. Missing keys are not an error.
func (s *RedisGuestStore) Delete(ctx context.Context, guestToken string) error {
	if guestToken == "" {
		return nil
	}
	if err := s.store.Del(ctx, s.store.GuestCartKey(guestToken)); err != nil {
		return fmt.Errorf("deleting guest cart: %w", err)
	}
	return nil
}
