package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bolajon/bolajon-backend/api/routes"
	cartsvc "github.com/bolajon/bolajon-backend/internal/cart"
	checkoutsvc "github.com/bolajon/bolajon-backend/internal/checkout"
	ordersvc "github.com/bolajon/bolajon-backend/internal/orders"
	"github.com/bolajon/bolajon-backend/pkg/auth/session"
	"github.com/bolajon/bolajon-backend/pkg/config"
	"github.com/bolajon/bolajon-backend/pkg/db"
	"github.com/bolajon/bolajon-backend/pkg/instance"
	"github.com/bolajon/bolajon-backend/pkg/logger"
	"github.com/bolajon/bolajon-backend/pkg/metrics"
	"github.com/bolajon/bolajon-backend/pkg/migrate"
	"github.com/bolajon/bolajon-backend/pkg/money"
	"github.com/bolajon/bolajon-backend/pkg/outbox"
	"github.com/bolajon/bolajon-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(promRegistry)

	guestStore, err := cartsvc.NewRedisGuestStore(redisClient, cfg.Checkout.GuestCartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create guest cart store", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(
		cartsvc.NewRepository(dbClient.DB()),
		guestStore,
		dbClient,
		redisClient,
		checkoutMetrics,
		logg,
		cfg.Checkout.MaxItemQty,
		cfg.JWT.SessionTTL(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	boundary, err := ordersvc.NewHTTPBoundary(
		cfg.Boundary.OrderServiceURL,
		ordersvc.WithHTTPClient(&http.Client{Timeout: cfg.Boundary.RequestTimeout}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order boundary", err)
		os.Exit(1)
	}

	ordersService, err := ordersvc.NewService(
		dbClient,
		ordersvc.NewRepository(dbClient.DB()),
		cartsvc.NewRepository(dbClient.DB()),
		boundary,
		outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		checkoutMetrics,
		logg,
		cfg.Checkout.SubmitRetries,
		cfg.Checkout.SubmitTimeout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	sessionStore, err := checkoutsvc.NewRedisStore(redisClient, cfg.Checkout.SessionTTL, cfg.Checkout.SubmitTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout session store", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		sessionStore,
		cartService,
		ordersService,
		checkoutsvc.Policy{
			ApprovalThresholdBase: money.FromUnits(cfg.Checkout.ApprovalThreshold),
			ShippingFlatBase:      money.FromUnits(cfg.Checkout.ShippingFlat),
			ParentPINHash:         cfg.Checkout.ParentPINHash,
		},
		checkoutMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			cartService,
			checkoutService,
			ordersService,
			promRegistry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
