package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bolajon/bolajon-backend/internal/approval"
	cartpkg "github.com/bolajon/bolajon-backend/internal/cart"
	"github.com/bolajon/bolajon-backend/internal/catalog"
	"github.com/bolajon/bolajon-backend/internal/orders"
	"github.com/bolajon/bolajon-backend/internal/pricing"
	"github.com/bolajon/bolajon-backend/pkg/db/models"
	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/logger"
	"github.com/bolajon/bolajon-backend/pkg/metrics"
	"github.com/bolajon/bolajon-backend/pkg/types"
)

type sessionStore interface {
	Load(ctx context.Context, shopperID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, shopperID string) error
	AcquireSubmitLock(ctx context.Context, shopperID string) (bool, error)
	ReleaseSubmitLock(ctx context.Context, shopperID string) error
}

type cartReader interface {
	Get(ctx context.Context, owner cartpkg.Owner) (*cartpkg.Cart, error)
}

type orderPlacer interface {
	Place(ctx context.Context, payload orders.SubmissionPayload) (*models.Order, error)
}

// Policy carries the checkout knobs loaded from configuration.
type Policy struct {
	ApprovalThresholdBase decimal.Decimal
	ShippingFlatBase      decimal.Decimal
	ParentPINHash         string
}

// Service orchestrates a shopper's checkout session.
type Service interface {
	Begin(ctx context.Context, shopperID uuid.UUID) (*Session, error)
	Get(ctx context.Context, shopperID uuid.UUID) (*Session, error)
	SetShippingAddress(ctx context.Context, shopperID uuid.UUID, address types.Address) (*Session, error)
	SelectPaymentMethod(ctx context.Context, shopperID uuid.UUID, methodID string) (*Session, error)
	SelectCurrency(ctx context.Context, shopperID uuid.UUID, currencyCode string) (*Session, error)
	ApplyPromo(ctx context.Context, shopperID uuid.UUID, promoCode string) (*Session, error)
	Approve(ctx context.Context, shopperID uuid.UUID, pin string) (*Session, error)
	SetTermsAccepted(ctx context.Context, shopperID uuid.UUID, accepted bool) (*Session, error)
	Advance(ctx context.Context, shopperID uuid.UUID) (*Session, error)
	Back(ctx context.Context, shopperID uuid.UUID, target enums.CheckoutStep) (*Session, error)
	Reset(ctx context.Context, shopperID uuid.UUID) error
	Quote(ctx context.Context, shopperID uuid.UUID) (*pricing.Result, error)
	Submit(ctx context.Context, shopperID uuid.UUID) (*models.Order, *Session, error)
}

type service struct {
	sessions sessionStore
	carts    cartReader
	orders   orderPlacer
	policy   Policy
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService builds the checkout orchestrator.
func NewService(
	sessions sessionStore,
	carts cartReader,
	placer orderPlacer,
	policy Policy,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if placer == nil {
		return nil, fmt.Errorf("order placer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if policy.ApprovalThresholdBase.IsZero() || policy.ApprovalThresholdBase.IsNegative() {
		return nil, fmt.Errorf("approval threshold must be positive")
	}
	return &service{
		sessions: sessions,
		carts:    carts,
		orders:   placer,
		policy:   policy,
		metrics:  m,
		logg:     logg,
	}, nil
}

// Begin returns the shopper's active session, creating one at the Cart step
// if none exists.
func (s *service) Begin(ctx context.Context, shopperID uuid.UUID) (*Session, error) {
	if shopperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopper id is required")
	}
	existing, err := s.sessions.Load(ctx, shopperID.String())
	if err == nil {
		return existing, nil
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	session := NewSession(shopperID, catalog.DefaultCurrency().Code)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithSessionID(ctx, session.ID.String()), "checkout session started")
	return session, nil
}

// Get returns the active session.
func (s *service) Get(ctx context.Context, shopperID uuid.UUID) (*Session, error) {
	return s.sessions.Load(ctx, shopperID.String())
}

// SetShippingAddress stores the shipping destination on the session.
func (s *service) SetShippingAddress(ctx context.Context, shopperID uuid.UUID, address types.Address) (*Session, error) {
	if address.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	return s.update(ctx, shopperID, func(session *Session, c *cartpkg.Cart) error {
		session.ShippingAddress = address
		return nil
	})
}

// SelectPaymentMethod validates eligibility against the current quote and
// refreshes the approval decision, which only stabilizes once fees are known.
func (s *service) SelectPaymentMethod(ctx context.Context, shopperID uuid.UUID, methodID string) (*Session, error) {
	method, err := catalog.MethodByID(methodID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, shopperID, func(session *Session, c *cartpkg.Cart) error {
		currency, err := s.sessionCurrency(session)
		if err != nil {
			return err
		}
		result, err := s.priceFor(session, c, currency, &method)
		if err != nil {
			return err
		}
		if err := catalog.EnsureEligible(method, currency, result.GrandTotal); err != nil {
			return err
		}
		session.PaymentMethodID = method.ID
		s.refreshApproval(session, result, currency)
		return nil
	})
}

// SelectCurrency switches the display currency and re-prices.
func (s *service) SelectCurrency(ctx context.Context, shopperID uuid.UUID, currencyCode string) (*Session, error) {
	currency, err := catalog.CurrencyByCode(currencyCode)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, shopperID, func(session *Session, c *cartpkg.Cart) error {
		session.CurrencyCode = currency.Code
		return s.repriceIfMethodChosen(session, c)
	})
}

// ApplyPromo attaches a promo code to the session. A session holds at most
// one code; applying another replaces it.
func (s *service) ApplyPromo(ctx context.Context, shopperID uuid.UUID, promoCode string) (*Session, error) {
	promo, err := catalog.ValidatePromo(promoCode)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, shopperID, func(session *Session, c *cartpkg.Cart) error {
		session.PromoCode = promo.Code
		return s.repriceIfMethodChosen(session, c)
	})
}

// Approve performs the parent PIN confirmation.
func (s *service) Approve(ctx context.Context, shopperID uuid.UUID, pin string) (*Session, error) {
	updated, err := s.update(ctx, shopperID, func(session *Session, c *cartpkg.Cart) error {
		decision, err := approval.Approve(session.Approval, s.policy.ParentPINHash, pin)
		if err != nil {
			return err
		}
		session.Approval = decision
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncApproval(string(updated.Approval.Status))
	}
	return updated, nil
}

// SetTermsAccepted records the explicit terms acceptance required at Review.
func (s *service) SetTermsAccepted(ctx context.Context, shopperID uuid.UUID, accepted bool) (*Session, error) {
	return s.update(ctx, shopperID, func(session *Session, c *cartpkg.Cart) error {
		session.TermsAccepted = accepted
		return nil
	})
}

// Advance moves the session one step forward when its guard passes. The quote
// and approval gate are recomputed from the live cart first, so a cart edited
// via Back cannot carry a stale decision past the guard. Entering Review mints
// the submission idempotency key exactly once.
func (s *service) Advance(ctx context.Context, shopperID uuid.UUID) (*Session, error) {
	session, err := s.sessions.Load(ctx, shopperID.String())
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Get(ctx, cartpkg.Owner{ShopperID: shopperID})
	if err != nil {
		return nil, err
	}
	if err := s.repriceIfMethodChosen(session, c); err != nil {
		return nil, err
	}
	if err := GuardAdvance(session, c); err != nil {
		// The step stays put but the refreshed approval decision must stick.
		session.Touch()
		if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
			s.logg.Error(ctx, "failed to persist session after rejected advance", saveErr)
		}
		return nil, err
	}
	session.Step = session.Step.Next()
	if session.Step == enums.StepReview {
		session.EnsureIdempotencyKey()
	}
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Back navigates to an earlier step without clearing anything.
func (s *service) Back(ctx context.Context, shopperID uuid.UUID, target enums.CheckoutStep) (*Session, error) {
	return s.update(ctx, shopperID, func(session *Session, c *cartpkg.Cart) error {
		if err := GuardBack(session, target); err != nil {
			return err
		}
		session.Step = target
		return nil
	})
}

// Reset discards the session entirely. This is the only path that clears a
// sticky approval requirement.
func (s *service) Reset(ctx context.Context, shopperID uuid.UUID) error {
	return s.sessions.Delete(ctx, shopperID.String())
}

// Quote prices the current cart under the session's selections.
func (s *service) Quote(ctx context.Context, shopperID uuid.UUID) (*pricing.Result, error) {
	session, err := s.sessions.Load(ctx, shopperID.String())
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Get(ctx, cartpkg.Owner{ShopperID: shopperID})
	if err != nil {
		return nil, err
	}
	currency, err := s.sessionCurrency(session)
	if err != nil {
		return nil, err
	}
	var method *catalog.PaymentMethod
	if session.PaymentMethodID != "" {
		m, err := catalog.MethodByID(session.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		method = &m
	}
	result, err := s.priceFor(session, c, currency, method)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Submit places the order. The session must sit at Review with its guard
// satisfied; a concurrent submission is rejected via the in-flight flag and
// a redis lock. On success the session completes; on failure it stays at
// Review with the same idempotency key for the next attempt.
func (s *service) Submit(ctx context.Context, shopperID uuid.UUID) (*models.Order, *Session, error) {
	session, err := s.sessions.Load(ctx, shopperID.String())
	if err != nil {
		return nil, nil, err
	}
	if session.Step != enums.StepReview {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "submission is only allowed at review")
	}
	c, err := s.carts.Get(ctx, cartpkg.Owner{ShopperID: shopperID})
	if err != nil {
		return nil, nil, err
	}
	if err := s.repriceIfMethodChosen(session, c); err != nil {
		return nil, nil, err
	}
	if err := GuardAdvance(session, c); err != nil {
		session.Touch()
		if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
			s.logg.Error(ctx, "failed to persist session after rejected submission", saveErr)
		}
		return nil, nil, err
	}
	if session.InFlight {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a submission is already in flight")
	}

	locked, err := s.sessions.AcquireSubmitLock(ctx, shopperID.String())
	if err != nil {
		return nil, nil, err
	}
	if !locked {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a submission is already in flight")
	}
	defer func() {
		if err := s.sessions.ReleaseSubmitLock(ctx, shopperID.String()); err != nil {
			s.logg.Warn(ctx, "failed to release submit lock")
		}
	}()

	payload, err := s.buildPayload(session, c)
	if err != nil {
		return nil, nil, err
	}

	session.InFlight = true
	session.SubmitAttempts++
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, err
	}

	order, placeErr := s.orders.Place(ctx, payload)

	session.InFlight = false
	if placeErr != nil {
		session.Touch()
		if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
			s.logg.Error(ctx, "failed to persist session after submission failure", saveErr)
		}
		return nil, session, placeErr
	}

	session.Step = enums.StepComplete
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, err
	}
	s.logg.Info(s.logg.WithSessionID(ctx, session.ID.String()), "checkout complete")
	return order, session, nil
}

func (s *service) update(ctx context.Context, shopperID uuid.UUID, fn func(session *Session, c *cartpkg.Cart) error) (*Session, error) {
	session, err := s.sessions.Load(ctx, shopperID.String())
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Get(ctx, cartpkg.Owner{ShopperID: shopperID})
	if err != nil {
		return nil, err
	}
	if err := fn(session, c); err != nil {
		return nil, err
	}
	session.Touch()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) sessionCurrency(session *Session) (catalog.Currency, error) {
	if session.CurrencyCode == "" {
		return catalog.DefaultCurrency(), nil
	}
	return catalog.CurrencyByCode(session.CurrencyCode)
}

func (s *service) priceFor(session *Session, c *cartpkg.Cart, currency catalog.Currency, method *catalog.PaymentMethod) (pricing.Result, error) {
	discount := decimal.Zero
	if session.PromoCode != "" {
		promo, err := catalog.ValidatePromo(session.PromoCode)
		if err != nil {
			return pricing.Result{}, err
		}
		discount = promo.DiscountPercent
	}
	return pricing.Price(pricing.Input{
		Subtotal:        c.Subtotal,
		Currency:        currency,
		Method:          method,
		DiscountPercent: discount,
		ShippingBase:    s.policy.ShippingFlatBase,
	}), nil
}

func (s *service) refreshApproval(session *Session, result pricing.Result, currency catalog.Currency) {
	next := approval.Evaluate(result.GrandTotal, currency, s.policy.ApprovalThresholdBase)
	session.Approval = approval.Merge(session.Approval, next)
}

// repriceIfMethodChosen re-runs eligibility and the approval gate after a
// change that moves the total. Before a method is chosen there is no stable
// total, so nothing to refresh.
func (s *service) repriceIfMethodChosen(session *Session, c *cartpkg.Cart) error {
	if session.PaymentMethodID == "" {
		return nil
	}
	method, err := catalog.MethodByID(session.PaymentMethodID)
	if err != nil {
		return err
	}
	currency, err := s.sessionCurrency(session)
	if err != nil {
		return err
	}
	result, err := s.priceFor(session, c, currency, &method)
	if err != nil {
		return err
	}
	if err := catalog.EnsureEligible(method, currency, result.GrandTotal); err != nil {
		return err
	}
	s.refreshApproval(session, result, currency)
	return nil
}

func (s *service) buildPayload(session *Session, c *cartpkg.Cart) (orders.SubmissionPayload, error) {
	if c.ID == uuid.Nil {
		return orders.SubmissionPayload{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is not persisted")
	}
	currency, err := s.sessionCurrency(session)
	if err != nil {
		return orders.SubmissionPayload{}, err
	}
	var method *catalog.PaymentMethod
	if session.PaymentMethodID != "" {
		m, err := catalog.MethodByID(session.PaymentMethodID)
		if err != nil {
			return orders.SubmissionPayload{}, err
		}
		method = &m
	}
	result, err := s.priceFor(session, c, currency, method)
	if err != nil {
		return orders.SubmissionPayload{}, err
	}

	session.EnsureIdempotencyKey()
	items := make([]orders.SubmissionItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, orders.SubmissionItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			Snapshot:  line.Snapshot,
		})
	}
	return orders.SubmissionPayload{
		ShopperID:       session.ShopperID,
		CartID:          c.ID,
		IdempotencyKey:  session.IdempotencyKey,
		Items:           items,
		ShippingAddress: session.ShippingAddress,
		PaymentMethodID: session.PaymentMethodID,
		PromoCode:       session.PromoCode,
		Pricing: dbtypes.PricingBreakdown{
			Currency:       result.Currency,
			Subtotal:       result.Subtotal,
			DiscountAmount: result.DiscountAmount,
			ShippingAmount: result.ShippingAmount,
			FeeAmount:      result.FeeAmount,
			GrandTotal:     result.GrandTotal,
		},
		ApprovalStatus: session.Approval.Status,
	}, nil
}
