package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajon/bolajon-backend/internal/cart"
	dbpkg "github.com/bolajon/bolajon-backend/pkg/db"
	"github.com/bolajon/bolajon-backend/pkg/db/models"
	"github.com/bolajon/bolajon-backend/pkg/enums"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/logger"
	"github.com/bolajon/bolajon-backend/pkg/metrics"
	"github.com/bolajon/bolajon-backend/pkg/outbox"
)

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service places a finished checkout with the order boundary.
type Service interface {
	Place(ctx context.Context, payload SubmissionPayload) (*models.Order, error)
	Get(ctx context.Context, id, shopperID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, shopperID uuid.UUID) ([]models.Order, error)
}

type service struct {
	tx             txRunner
	repo           *Repository
	cartRepo       cart.CartRepository
	boundary       Boundary
	outbox         outboxPublisher
	metrics        *metrics.CheckoutMetrics
	logg           *logger.Logger
	maxAttempts    int
	attemptTimeout time.Duration
}

// NewService builds the order submission service.
func NewService(
	tx txRunner,
	repo *Repository,
	cartRepo cart.CartRepository,
	boundary Boundary,
	publisher outboxPublisher,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
	maxAttempts int,
	attemptTimeout time.Duration,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if boundary == nil {
		return nil, fmt.Errorf("order boundary required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if attemptTimeout <= 0 {
		attemptTimeout = 30 * time.Second
	}
	return &service{
		tx:             tx,
		repo:           repo,
		cartRepo:       cartRepo,
		boundary:       boundary,
		outbox:         publisher,
		metrics:        m,
		logg:           logg,
		maxAttempts:    maxAttempts,
		attemptTimeout: attemptTimeout,
	}, nil
}

// Place submits the payload to the boundary with bounded retries, then
// records the accepted order, emits the order-placed event, and clears the
// remote cart inside one transaction. Replays with the same idempotency key
// return the already-recorded order.
func (s *service) Place(ctx context.Context, payload SubmissionPayload) (*models.Order, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByIdempotencyKey(ctx, payload.IdempotencyKey); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking submission: %w", err)
	}

	started := time.Now()
	result, err := s.submitWithRetry(ctx, payload)
	if err != nil {
		s.observe(outcomeFailed, started)
		return nil, err
	}

	order, err := s.recordPlacement(ctx, payload, result)
	if err != nil {
		s.observe(outcomeFailed, started)
		return nil, err
	}
	s.observe(outcomeSuccess, started)
	if s.metrics != nil {
		s.metrics.IncApproval(string(payload.ApprovalStatus))
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":          order.ID.String(),
		"boundary_order_id": order.BoundaryOrderID,
	})
	s.logg.Info(logCtx, "order placed")
	return order, nil
}

func (s *service) submitWithRetry(ctx context.Context, payload SubmissionPayload) (*BoundaryResult, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		result, err := s.boundary.Submit(attemptCtx, payload)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err

		var boundaryErr *BoundaryError
		if errors.As(err, &boundaryErr) && !boundaryErr.Retryable {
			return nil, pkgerrors.Wrap(pkgerrors.CodeSubmissionFailed, err, "order boundary rejected the submission").
				WithDetails(map[string]any{"code": boundaryErr.Code, "terminal": true})
		}
		s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "order submission attempt failed")
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeSubmissionFailed, lastErr, "order submission failed").
		WithDetails(map[string]any{"attempts": s.maxAttempts})
}

func (s *service) recordPlacement(ctx context.Context, payload SubmissionPayload, result *BoundaryResult) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		created, err := repo.Create(ctx, buildOrder(payload, result))
		if dbpkg.IsUniqueViolation(err, "ux_orders_idempotency_key") {
			created, err = repo.FindByIdempotencyKey(ctx, payload.IdempotencyKey)
		}
		if err != nil {
			return fmt.Errorf("recording order: %w", err)
		}

		event := OrderPlacedEvent{
			OrderID:         created.ID,
			ShopperID:       payload.ShopperID,
			BoundaryOrderID: created.BoundaryOrderID,
			GrandTotal:      payload.Pricing.GrandTotal,
			Currency:        payload.Pricing.Currency,
			ItemCount:       len(payload.Items),
			PlacedAt:        created.CreatedAt,
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{ShopperID: payload.ShopperID},
			Data:          event,
			Version:       1,
		}); err != nil {
			return fmt.Errorf("emitting order event: %w", err)
		}

		cartRepo := s.cartRepo.WithTx(tx)
		if err := cartRepo.ReplaceItems(ctx, payload.CartID, nil); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}
		if err := cartRepo.UpdateStatus(ctx, payload.CartID, payload.ShopperID, enums.CartStatusConverted); err != nil {
			return fmt.Errorf("converting cart: %w", err)
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns one of the shopper's orders.
func (s *service) Get(ctx context.Context, id, shopperID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDAndShopper(ctx, id, shopperID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("loading order: %w", err)
	}
	return order, nil
}

// List returns the shopper's orders, newest first.
func (s *service) List(ctx context.Context, shopperID uuid.UUID) ([]models.Order, error) {
	rows, err := s.repo.ListByShopper(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return rows, nil
}

func (s *service) observe(outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSubmission(outcome)
	s.metrics.ObserveSubmit(outcome, time.Since(started))
}

func validatePayload(payload SubmissionPayload) error {
	if payload.ShopperID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shopper id is required")
	}
	if payload.IdempotencyKey == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	if len(payload.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission must contain at least one item")
	}
	if payload.ShippingAddress.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	if payload.PaymentMethodID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	return nil
}

func buildOrder(payload SubmissionPayload, result *BoundaryResult) *models.Order {
	lineItems := make([]models.OrderLineItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		lineItems = append(lineItems, models.OrderLineItem{
			ID:              uuid.New(),
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			LineTotal:       item.LineTotal,
			ProductSnapshot: item.Snapshot,
		})
	}
	cartID := payload.CartID
	return &models.Order{
		ID:              uuid.New(),
		ShopperID:       payload.ShopperID,
		CartID:          &cartID,
		BoundaryOrderID: result.OrderID,
		IdempotencyKey:  payload.IdempotencyKey,
		Status:          enums.OrderStatusPlaced,
		PaymentMethodID: payload.PaymentMethodID,
		ApprovalStatus:  payload.ApprovalStatus,
		ShippingAddress: payload.ShippingAddress,
		Pricing:         payload.Pricing,
		LineItems:       lineItems,
	}
}
