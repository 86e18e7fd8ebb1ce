package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bolajon/bolajon-backend/pkg/config"
	redisclient "github.com/bolajon/bolajon-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Manager tracks server-side login sessions so tokens can be revoked before expiry.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// ActiveSessionChecker exposes the read-only surface needed by middleware.
type ActiveSessionChecker interface {
	Active(ctx context.Context, loginSessionID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("session ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Start records a login session marker for the provided session ID.
func (m *Manager) Start(ctx context.Context, loginSessionID string) error {
	if strings.TrimSpace(loginSessionID) == "" {
		return fmt.Errorf("login session id is required")
	}
	return m.store.Set(ctx, m.keyer.AccessSessionKey(loginSessionID), "1", m.ttl)
}

// Active reports whether the login session is still present server-side.
func (m *Manager) Active(ctx context.Context, loginSessionID string) (bool, error) {
	if strings.TrimSpace(loginSessionID) == "" {
		return false, fmt.Errorf("login session id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(loginSessionID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Revoke deletes the login session marker, invalidating outstanding tokens.
func (m *Manager) Revoke(ctx context.Context, loginSessionID string) error {
	if strings.TrimSpace(loginSessionID) == "" {
		return fmt.Errorf("login session id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(loginSessionID))
}
