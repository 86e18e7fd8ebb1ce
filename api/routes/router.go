package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bolajon/bolajon-backend/api/controllers"
	"github.com/bolajon/bolajon-backend/api/middleware"
	cartsvc "github.com/bolajon/bolajon-backend/internal/cart"
	checkoutsvc "github.com/bolajon/bolajon-backend/internal/checkout"
	ordersvc "github.com/bolajon/bolajon-backend/internal/orders"
	"github.com/bolajon/bolajon-backend/pkg/auth/session"
	"github.com/bolajon/bolajon-backend/pkg/config"
	"github.com/bolajon/bolajon-backend/pkg/db"
	"github.com/bolajon/bolajon-backend/pkg/logger"
	"github.com/bolajon/bolajon-backend/pkg/money"
	pkgredis "github.com/bolajon/bolajon-backend/pkg/redis"
)

// NewRouter wires the HTTP surface. Cart routes accept either an
// authenticated shopper or a guest token; checkout and orders routes require
// a shopper.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	sessionChecker session.ActiveSessionChecker,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService ordersvc.Service,
	promRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger pkgredis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	shippingFlat := money.FromUnits(cfg.Checkout.ShippingFlat)

	var idemStore pkgredis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	pinLimiter := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		pinLimiter = middleware.PINRateLimit(middleware.PINRateLimitPolicy{
			Limit:  cfg.Checkout.PINAttemptLimit,
			Window: cfg.Checkout.PINAttemptWindow,
		}, redisClient, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, sessionChecker, logg),
			middleware.Idempotency(idemStore, logg),
		)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Get("/quote", controllers.CartQuote(cartService, shippingFlat, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items/{productID}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(cartService, logg))
			r.With(middleware.RequireShopper(logg)).Post("/reconcile", controllers.CartReconcile(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.RequireShopper(logg))

			r.Post("/", controllers.CheckoutBegin(checkoutService, logg))
			r.Get("/", controllers.CheckoutGet(checkoutService, logg))
			r.Delete("/", controllers.CheckoutReset(checkoutService, logg))
			r.Get("/quote", controllers.CheckoutQuote(checkoutService, logg))
			r.Put("/shipping-address", controllers.CheckoutShippingAddress(checkoutService, logg))
			r.Put("/payment-method", controllers.CheckoutPaymentMethod(checkoutService, logg))
			r.Put("/currency", controllers.CheckoutCurrency(checkoutService, logg))
			r.Post("/promo", controllers.CheckoutPromo(checkoutService, logg))
			r.With(pinLimiter).Post("/approve", controllers.CheckoutApprove(checkoutService, logg))
			r.Post("/terms", controllers.CheckoutTerms(checkoutService, logg))
			r.Post("/advance", controllers.CheckoutAdvance(checkoutService, logg))
			r.Post("/back", controllers.CheckoutBack(checkoutService, logg))
			r.Post("/submit", controllers.CheckoutSubmit(checkoutService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireShopper(logg))

			r.Get("/", controllers.OrdersList(ordersService, logg))
			r.Get("/{orderID}", controllers.OrdersDetail(ordersService, logg))
		})
	})

	return r
}
