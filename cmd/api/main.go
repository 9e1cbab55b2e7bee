package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kelechio/storefront-backend/api/controllers"
	"github.com/kelechio/storefront-backend/api/routes"
	cartsvc "github.com/kelechio/storefront-backend/internal/cart"
	checkoutsvc "github.com/kelechio/storefront-backend/internal/checkout"
	"github.com/kelechio/storefront-backend/internal/coupons"
	"github.com/kelechio/storefront-backend/internal/notifications"
	ordersvc "github.com/kelechio/storefront-backend/internal/orders"
	"github.com/kelechio/storefront-backend/internal/payments"
	"github.com/kelechio/storefront-backend/internal/products"
	"github.com/kelechio/storefront-backend/internal/shipping"
	"github.com/kelechio/storefront-backend/internal/stock"
	"github.com/kelechio/storefront-backend/internal/webhooks"
	paypalwebhook "github.com/kelechio/storefront-backend/internal/webhooks/paypal"
	paystackwebhook "github.com/kelechio/storefront-backend/internal/webhooks/paystack"
	"github.com/kelechio/storefront-backend/pkg/config"
	"github.com/kelechio/storefront-backend/pkg/db"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/migrate"
	"github.com/kelechio/storefront-backend/pkg/paypal"
	"github.com/kelechio/storefront-backend/pkg/redis"
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

	conn := dbClient.DB()
	cartRepo := cartsvc.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	ordersRepo := ordersvc.NewRepository(conn)

	cartService, err := cartsvc.NewService(cartRepo, productsRepo, logg)
	requireService(logg, "cart service", err)

	couponService, err := coupons.NewService(coupons.NewRepository(conn), ordersRepo)
	requireService(logg, "coupon service", err)

	shippingService, err := shipping.NewService(shipping.NewRepository(conn), logg)
	requireService(logg, "shipping service", err)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Options{
		Tx:            dbClient,
		Carts:         cartRepo,
		Orders:        ordersRepo,
		Coupons:       couponService,
		Shipping:      shippingService,
		Logger:        logg,
		ShippingFee:   cfg.Checkout.ShippingFee,
		TxRefAttempts: cfg.Checkout.TxRefAttempts,
	})
	requireService(logg, "checkout service", err)

	ordersService, err := ordersvc.NewService(ordersRepo, cfg.Checkout.ShippingFee)
	requireService(logg, "orders service", err)

	notifier, err := notifications.NewService(notifications.NewLogSender(logg), logg)
	requireService(logg, "notifications service", err)

	reconciler, err := payments.NewReconciler(payments.Options{
		Tx:          dbClient,
		Orders:      ordersRepo,
		Stock:       stock.NewDecrementer(),
		Notifier:    notifier,
		Logger:      logg,
		ShippingFee: cfg.Checkout.ShippingFee,
	})
	requireService(logg, "payment reconciler", err)

	guard := webhooks.NewGuard(redisClient, cfg.Webhooks.IdempotencyTTL, logg)

	paystackService, err := paystackwebhook.NewService(reconciler, notifier, guard, logg)
	requireService(logg, "paystack webhook service", err)

	paypalService, err := paypalwebhook.NewService(reconciler, guard, logg)
	requireService(logg, "paypal webhook service", err)

	paypalClient, err := paypal.NewClient(cfg.PayPal)
	requireService(logg, "paypal client", err)

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
		Handler: routes.NewRouter(cfg, logg, routes.Services{
			Cart:            cartService,
			Checkout:        checkoutService,
			Orders:          ordersService,
			Shipping:        shippingService,
			PaystackWebhook: paystackService,
			PayPalWebhook:   paypalService,
			PayPalVerifier:  paypalClient,
			HealthDeps: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name, err)
	os.Exit(1)
}
