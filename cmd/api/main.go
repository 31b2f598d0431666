package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lumencart/storefront-backend/api/controllers"
	"github.com/lumencart/storefront-backend/api/routes"
	"github.com/lumencart/storefront-backend/internal/cart"
	checkoutsvc "github.com/lumencart/storefront-backend/internal/checkout"
	"github.com/lumencart/storefront-backend/internal/orders"
	"github.com/lumencart/storefront-backend/internal/products"
	"github.com/lumencart/storefront-backend/internal/sessionlists"
	"github.com/lumencart/storefront-backend/internal/wishlist"
	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/db"
	"github.com/lumencart/storefront-backend/pkg/logger"
	"github.com/lumencart/storefront-backend/pkg/metrics"
	"github.com/lumencart/storefront-backend/pkg/migrate"
	"github.com/lumencart/storefront-backend/pkg/outbox"
	"github.com/lumencart/storefront-backend/pkg/payment"
	pkgredis "github.com/lumencart/storefront-backend/pkg/redis"
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

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	paymentClient, err := payment.NewClient(context.Background(), cfg.Payment, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap payment client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	cartRepo := cart.NewRepository(gormDB)
	couponRepo := cart.NewCouponRepository(gormDB)
	productRepo := products.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	checkoutRepo := checkoutsvc.NewRepository(gormDB)
	wishlistRepo := wishlist.NewRepository(gormDB)
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	productSvc, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartSvc, err := cart.NewService(cartRepo, dbClient, productRepo, couponRepo, cfg.Shipping, cfg.Tax)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutSvc, err := checkoutsvc.NewService(
		cartRepo,
		checkoutRepo,
		orderRepo,
		paymentClient,
		outboxSvc,
		couponRepo,
		dbClient,
		cfg.Shipping,
		cfg.Tax,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderSvc, err := orders.NewService(orderRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	wishlistSvc, err := wishlist.NewService(wishlistRepo, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	listsSvc, err := sessionlists.NewService(redisClient, redisClient, productRepo, cfg.Lists)
	if err != nil {
		logg.Error(context.Background(), "failed to create session list service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, redisClient,
			map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			httpMetrics,
			routes.Services{
				Products: productSvc,
				Cart:     cartSvc,
				Checkout: checkoutSvc,
				Orders:   orderSvc,
				Wishlist: wishlistSvc,
				Lists:    listsSvc,
			}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
