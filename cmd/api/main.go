package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/attarhouse/attarhouse-backend/api/routes"
	cartsvc "github.com/attarhouse/attarhouse-backend/internal/cart"
	checkoutsvc "github.com/attarhouse/attarhouse-backend/internal/checkout"
	ordersvc "github.com/attarhouse/attarhouse-backend/internal/orders"
	"github.com/attarhouse/attarhouse-backend/internal/pricing"
	productsvc "github.com/attarhouse/attarhouse-backend/internal/products"
	reviewsvc "github.com/attarhouse/attarhouse-backend/internal/reviews"
	wishlistsvc "github.com/attarhouse/attarhouse-backend/internal/wishlist"
	"github.com/attarhouse/attarhouse-backend/pkg/config"
	"github.com/attarhouse/attarhouse-backend/pkg/db"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
	"github.com/attarhouse/attarhouse-backend/pkg/metrics"
	"github.com/attarhouse/attarhouse-backend/pkg/migrate"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox"
	"github.com/attarhouse/attarhouse-backend/pkg/pubsub"
	"github.com/attarhouse/attarhouse-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis)
	requireResource(ctx, logg, "redis", err)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)

	defer func() {
		closeErr := multierr.Combine(dbClient.Close(), redisClient.Close(), pubsubClient.Close())
		if closeErr != nil {
			logg.Error(ctx, "error closing clients", closeErr)
		}
	}()

	engine, err := pricing.NewEngine(cfg.Pricing)
	requireResource(ctx, logg, "pricing engine", err)

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	productRepo := productsvc.NewRepository(dbClient.DB())
	productService, err := productsvc.NewService(productRepo)
	requireResource(ctx, logg, "product service", err)

	reviewService, err := reviewsvc.NewService(reviewsvc.NewRepository(dbClient.DB()), productRepo)
	requireResource(ctx, logg, "review service", err)

	wishlistService, err := wishlistsvc.NewService(wishlistsvc.NewRepository(dbClient.DB()), productRepo)
	requireResource(ctx, logg, "wishlist service", err)

	cartStore, err := cartsvc.NewStore(redisClient, cfg.Session.CartTTL)
	requireResource(ctx, logg, "cart store", err)

	cartService, err := cartsvc.NewService(cartStore, productRepo, engine, logg)
	requireResource(ctx, logg, "cart service", err)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	orderService, err := ordersvc.NewService(dbClient, ordersvc.NewRepository(dbClient.DB()), productRepo, outboxService, logg)
	requireResource(ctx, logg, "order service", err)

	checkoutService, err := checkoutsvc.NewService(cartService, orderService, redisClient, engine, cfg.Checkout, checkoutMetrics, logg)
	requireResource(ctx, logg, "checkout service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Services{
			Products: productService,
			Reviews:  reviewService,
			Wishlist: wishlistService,
			Cart:     cartService,
			Checkout: checkoutService,
			Orders:   orderService,
		}, routes.Readiness{
			DB:     dbClient,
			Redis:  redisClient,
			PubSub: pubsubClient,
		}),
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(runCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "api server shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
