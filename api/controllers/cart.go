package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bolajon/bolajon-backend/api/middleware"
	"github.com/bolajon/bolajon-backend/api/responses"
	"github.com/bolajon/bolajon-backend/api/validators"
	"github.com/bolajon/bolajon-backend/internal/catalog"
	cartsvc "github.com/bolajon/bolajon-backend/internal/cart"
	"github.com/bolajon/bolajon-backend/internal/pricing"
	dbtypes "github.com/bolajon/bolajon-backend/pkg/db/types"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/logger"
)

// cartOwnerFromContext resolves the acting cart owner: an authenticated
// shopper when the auth middleware put one on the context, otherwise the
// guest token.
func cartOwnerFromContext(r *http.Request) (cartsvc.Owner, error) {
	shopperID := middleware.ShopperIDFromContext(r.Context())
	if shopperID != "" {
		parsed, err := uuid.Parse(shopperID)
		if err != nil {
			return cartsvc.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid shopper id")
		}
		return cartsvc.Owner{ShopperID: parsed}, nil
	}

	guestToken := middleware.GuestTokenFromContext(r.Context())
	if guestToken == "" {
		return cartsvc.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "a shopper session or guest token is required")
	}
	return cartsvc.Owner{GuestToken: guestToken}, nil
}

// CartGet returns the owner's current cart, empty if none exists yet.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.Get(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, c)
	}
}

type addCartItemRequest struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	Title       string          `json:"title" validate:"required,min=1,max=256"`
	Images      []string        `json:"images" validate:"omitempty,dive,url"`
	SellerLabel string          `json:"seller_label" validate:"omitempty,max=128"`
	AgeRange    string          `json:"age_range" validate:"omitempty,max=32"`
}

func (req addCartItemRequest) toProduct() cartsvc.Product {
	return cartsvc.Product{
		ID:        req.ProductID,
		UnitPrice: req.UnitPrice,
		Snapshot: dbtypes.ProductSnapshot{
			Title:       req.Title,
			Images:      req.Images,
			SellerLabel: req.SellerLabel,
			AgeRange:    req.AgeRange,
		},
	}
}

// CartAddItem adds a product to the cart, snapshotting price and title.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.AddItem(r.Context(), owner, payload.toProduct(), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, c)
	}
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

// CartUpdateItem sets a line item's quantity; zero removes the line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.UpdateQuantity(r.Context(), owner, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, c)
	}
}

// CartRemoveItem deletes one line item.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		c, err := svc.RemoveItem(r.Context(), owner, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, c)
	}
}

// CartClear empties the cart without destroying it.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.Clear(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, c)
	}
}

// CartReconcile folds the caller's guest cart into their shopper cart. It
// requires an authenticated shopper and reads the guest token from the same
// header guests shop with.
func CartReconcile(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		shopperID, err := uuid.Parse(middleware.ShopperIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid shopper id"))
			return
		}

		guestToken := middleware.GuestTokenFromContext(r.Context())
		loginSessionID := middleware.LoginSessionIDFromContext(r.Context())

		c, err := svc.Reconcile(r.Context(), guestToken, shopperID, loginSessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, c)
	}
}

// CartQuote prices the current cart for an ad-hoc currency, payment method
// and promo combination without touching checkout state. Absent parameters
// fall back to the defaults a fresh checkout would use.
func CartQuote(svc cartsvc.Service, shippingFlatBase decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency := catalog.DefaultCurrency()
		if code := r.URL.Query().Get("currency"); code != "" {
			currency, err = catalog.CurrencyByCode(code)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var method *catalog.PaymentMethod
		if id := r.URL.Query().Get("payment_method"); id != "" {
			m, err := catalog.MethodByID(id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			method = &m
		}

		discount := decimal.Zero
		if code := r.URL.Query().Get("promo"); code != "" {
			promo, err := catalog.ValidatePromo(code)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			discount = promo.DiscountPercent
		}

		c, err := svc.Get(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := pricing.Price(pricing.Input{
			Subtotal:        c.Subtotal,
			Currency:        currency,
			Method:          method,
			DiscountPercent: discount,
			ShippingBase:    shippingFlatBase,
		})
		if method != nil {
			if err := catalog.EnsureEligible(*method, currency, result.GrandTotal); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, result)
	}
}
