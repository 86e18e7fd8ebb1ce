package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bolajon/bolajon-backend/api/middleware"
	"github.com/bolajon/bolajon-backend/api/responses"
	ordersvc "github.com/bolajon/bolajon-backend/internal/orders"
	"github.com/bolajon/bolajon-backend/pkg/db/models"
	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/logger"
	"github.com/bolajon/bolajon-backend/pkg/types"
)

type orderLineItemResponse struct {
	ProductID uuid.UUID               `json:"product_id"`
	Quantity  int                     `json:"quantity"`
	UnitPrice decimal.Decimal         `json:"unit_price"`
	LineTotal decimal.Decimal         `json:"line_total"`
	Snapshot  dbtypes.ProductSnapshot `json:"snapshot"`
}

type orderResponse struct {
	ID              uuid.UUID                `json:"id"`
	BoundaryOrderID string                   `json:"boundary_order_id"`
	Status          string                   `json:"status"`
	PaymentMethodID string                   `json:"payment_method_id"`
	ApprovalStatus  string                   `json:"approval_status"`
	ShippingAddress types.Address            `json:"shipping_address"`
	Pricing         dbtypes.PricingBreakdown `json:"pricing"`
	Items           []orderLineItemResponse  `json:"items"`
	CreatedAt       time.Time                `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderLineItemResponse, len(order.LineItems))
	for i, line := range order.LineItems {
		items[i] = orderLineItemResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
			Snapshot:  line.ProductSnapshot,
		}
	}
	return orderResponse{
		ID:              order.ID,
		BoundaryOrderID: order.BoundaryOrderID,
		Status:          string(order.Status),
		PaymentMethodID: order.PaymentMethodID,
		ApprovalStatus:  string(order.ApprovalStatus),
		ShippingAddress: order.ShippingAddress,
		Pricing:         order.Pricing,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}

// OrdersList returns the shopper's placed orders, newest first.
func OrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		shopperID, err := uuid.Parse(middleware.ShopperIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid shopper id"))
			return
		}

		orders, err := svc.List(r.Context(), shopperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, len(orders))
		for i := range orders {
			out[i] = newOrderResponse(&orders[i])
		}
		responses.WriteSuccess(w, out)
	}
}

// OrdersDetail returns one order, scoped to the calling shopper.
func OrdersDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		shopperID, err := uuid.Parse(middleware.ShopperIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid shopper id"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.Get(r.Context(), orderID, shopperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
