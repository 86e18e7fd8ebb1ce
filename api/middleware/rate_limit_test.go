package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeLimiterStore struct {
	counts map[string]int64
	err    error
}

func newFakeLimiterStore() *fakeLimiterStore {
	return &fakeLimiterStore{counts: make(map[string]int64)}
}

func (f *fakeLimiterStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func pinRequest(shopperID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/approve", nil)
	if shopperID != "" {
		req = req.WithContext(WithShopperID(req.Context(), shopperID))
	}
	return req
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func TestPINRateLimitBlocksAfterLimit(t *testing.T) {
	t.Parallel()

	store := newFakeLimiterStore()
	var calls int
	handler := PINRateLimit(PINRateLimitPolicy{Limit: 3, Window: time.Minute}, store, nil)(okHandler(&calls))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, pinRequest("shopper-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: status %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, pinRequest("shopper-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("fourth attempt: status %d", rec.Code)
	}
	if calls != 3 {
		t.Fatalf("handler ran %d times", calls)
	}
}

func TestPINRateLimitScopesPerShopper(t *testing.T) {
	t.Parallel()

	store := newFakeLimiterStore()
	var calls int
	handler := PINRateLimit(PINRateLimitPolicy{Limit: 1, Window: time.Minute}, store, nil)(okHandler(&calls))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, pinRequest("shopper-a"))
	if rec.Code != http.StatusOK {
		t.Fatalf("shopper-a: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, pinRequest("shopper-b"))
	if rec.Code != http.StatusOK {
		t.Fatalf("shopper-b must have its own counter: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, pinRequest("shopper-a"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("shopper-a second attempt: status %d", rec.Code)
	}
}

func TestPINRateLimitFailsClosedOnStoreError(t *testing.T) {
	t.Parallel()

	store := newFakeLimiterStore()
	store.err = errors.New("redis down")
	var calls int
	handler := PINRateLimit(PINRateLimitPolicy{Limit: 5, Window: time.Minute}, store, nil)(okHandler(&calls))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, pinRequest("shopper-1"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
	if calls != 0 {
		t.Fatal("handler must not run when the counter store fails")
	}
}

func TestPINRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	t.Parallel()

	var calls int
	handler := PINRateLimit(PINRateLimitPolicy{}, newFakeLimiterStore(), nil)(okHandler(&calls))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, pinRequest("shopper-1"))
	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("disabled policy must pass through: status %d calls %d", rec.Code, calls)
	}
}
