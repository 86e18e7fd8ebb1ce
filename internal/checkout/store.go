package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

type sessionBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutSessionKey(shopperID string) string
	SubmitLockKey(shopperID string) string
}

// RedisStore persists checkout sessions with a sliding TTL. A session that
// outlives the TTL is implicitly abandoned.
type RedisStore struct {
	store   sessionBackend
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore constructs the session store. lockTTL bounds how long a
// submission may hold the per-shopper lock.
func NewRedisStore(store sessionBackend, ttl, lockTTL time.Duration) (*RedisStore, error) {
	if store == nil {
		return nil, errors.New("redis store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	if lockTTL <= 0 {
		return nil, errors.New("submit lock ttl must be positive")
	}
	return &RedisStore{store: store, ttl: ttl, lockTTL: lockTTL}, nil
}

// Load returns the shopper's session or NOT_FOUND when none is active.
func (s *RedisStore) Load(ctx context.Context, shopperID string) (*Session, error) {
	raw, err := s.store.Get(ctx, s.store.CheckoutSessionKey(shopperID))
	if errors.Is(err, redislib.Nil) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active checkout session")
	}
	if err != nil {
		return nil, fmt.Errorf("loading checkout session: %w", err)
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decoding checkout session: %w", err)
	}
	return &session, nil
}

// Save serializes the session and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("session is required")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding checkout session: %w", err)
	}
	key := s.store.CheckoutSessionKey(session.ShopperID.String())
	if err := s.store.Set(ctx, key, payload, s.ttl); err != nil {
		return fmt.Errorf("storing checkout session: %w", err)
	}
	return nil
}

// Delete discards the shopper's session.
func (s *RedisStore) Delete(ctx context.Context, shopperID string) error {
	if err := s.store.Del(ctx, s.store.CheckoutSessionKey(shopperID)); err != nil {
		return fmt.Errorf("deleting checkout session: %w", err)
	}
	return nil
}

// AcquireSubmitLock takes the per-shopper submission lock. A false return
// means another submission is in flight.
func (s *RedisStore) AcquireSubmitLock(ctx context.Context, shopperID string) (bool, error) {
	ok, err := s.store.SetNX(ctx, s.store.SubmitLockKey(shopperID), "1", s.lockTTL)
	if err != nil {
		return false, fmt.Errorf("acquiring submit lock: %w", err)
	}
	return ok, nil
}

// ReleaseSubmitLock frees the submission lock.
func (s *RedisStore) ReleaseSubmitLock(ctx context.Context, shopperID string) error {
	if err := s.store.Del(ctx, s.store.SubmitLockKey(shopperID)); err != nil {
		return fmt.Errorf("releasing submit lock: %w", err)
	}
	return nil
}
