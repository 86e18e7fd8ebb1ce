// Package checkout drives the cart-to-order flow as an explicit state
// machine. The Session is the sole source of truth: it serializes to redis
// as JSON, so a page reload or a second API node picks up exactly where the
// shopper left off.
package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/bolajon/bolajon-backend/internal/approval"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	"github.com/bolajon/bolajon-backend/pkg/types"
)

// Session is one shopper's checkout in progress. Fields entered at a step
// survive backward navigation; only Reset discards them.
type Session struct {
	ID              uuid.UUID         `json:"id"`
	ShopperID       uuid.UUID         `json:"shopper_id"`
	Step            enums.CheckoutStep `json:"step"`
	ShippingAddress types.Address     `json:"shipping_address"`
	PaymentMethodID string            `json:"payment_method_id,omitempty"`
	CurrencyCode    string            `json:"currency_code"`
	PromoCode       string            `json:"promo_code,omitempty"`
	TermsAccepted   bool              `json:"terms_accepted"`
	Approval        approval.Decision `json:"approval"`
	IdempotencyKey  string            `json:"idempotency_key,omitempty"`
	SubmitAttempts  int               `json:"submit_attempts"`
	InFlight        bool              `json:"in_flight"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewSession starts a session at the Cart step in the given display currency.
func NewSession(shopperID uuid.UUID, currencyCode string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           uuid.New(),
		ShopperID:    shopperID,
		Step:         enums.StepCart,
		CurrencyCode: currencyCode,
		Approval:     approval.NotRequired(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Touch bumps the session's modification time.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// EnsureIdempotencyKey mints the submission key on first entry into Review.
// Later entries and retries keep the original key.
func (s *Session) EnsureIdempotencyKey() {
	if s.IdempotencyKey == "" {
		s.IdempotencyKey = uuid.NewString()
	}
}
