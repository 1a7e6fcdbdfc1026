package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Alioune4002/boutique-caisse/api/routes"
	"github.com/Alioune4002/boutique-caisse/internal/cart"
	"github.com/Alioune4002/boutique-caisse/internal/catalog"
	"github.com/Alioune4002/boutique-caisse/internal/checkout"
	"github.com/Alioune4002/boutique-caisse/internal/discounts"
	"github.com/Alioune4002/boutique-caisse/internal/pricing"
	"github.com/Alioune4002/boutique-caisse/internal/reporting"
	"github.com/Alioune4002/boutique-caisse/internal/restock"
	"github.com/Alioune4002/boutique-caisse/pkg/config"
	"github.com/Alioune4002/boutique-caisse/pkg/db"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
	"github.com/Alioune4002/boutique-caisse/pkg/metrics"
	"github.com/Alioune4002/boutique-caisse/pkg/migrate"
	"github.com/Alioune4002/boutique-caisse/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "caisse-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "caisse-api",
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

	registerMetrics := metrics.NewRegisterMetrics(prometheus.DefaultRegisterer)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	discountRepo := discounts.NewRepository(dbClient.DB())

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	calculator, err := pricing.NewCalculator(catalogRepo, discountRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing calculator", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(cartStore, catalogRepo, discountRepo, calculator, dbClient, registerMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	restockService, err := restock.NewService(catalogRepo, dbClient, cfg.Restock, registerMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create restock service", err)
		os.Exit(1)
	}

	reportingService, err := reporting.NewService(dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reporting service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting register api")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			catalogService,
			checkoutService,
			restockService,
			reportingService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "register api stopped unexpectedly", err)
		os.Exit(1)
	}
}
