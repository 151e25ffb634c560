package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tanush1852/FreshMart/internal/cart"
	"github.com/tanush1852/FreshMart/internal/checkout"
	"github.com/tanush1852/FreshMart/internal/checkout/checkoutlog"
	checkoutsqlite "github.com/tanush1852/FreshMart/internal/checkout/checkoutlog/sqlite"
	"github.com/tanush1852/FreshMart/internal/config"
	"github.com/tanush1852/FreshMart/internal/estimator"
	"github.com/tanush1852/FreshMart/internal/events"
	"github.com/tanush1852/FreshMart/internal/httpx"
	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
	"github.com/tanush1852/FreshMart/internal/orders"
	"github.com/tanush1852/FreshMart/internal/pkg/cache"
	"github.com/tanush1852/FreshMart/internal/pkg/metrics"
	"github.com/tanush1852/FreshMart/internal/pkg/telemetry"
	"github.com/tanush1852/FreshMart/internal/storage/memory"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	var checkoutLog checkoutlog.Repository
	if cfg.CheckoutLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.CheckoutLogPath), 0o755); err != nil {
			slog.Error("failed to create checkout log directory", "error", err)
			os.Exit(1)
		}
		repo, err := checkoutsqlite.Open(cfg.CheckoutLogPath)
		if err != nil {
			slog.Error("failed to open checkout log", "path", cfg.CheckoutLogPath, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		checkoutLog = repo
	}

	var est ports.DeliveryEstimator
	if cfg.EstimatorBaseURL != "" {
		est = estimator.New(estimator.Config{
			BaseURL: cfg.EstimatorBaseURL,
			APIKey:  cfg.EstimatorAPIKey,
			Timeout: cfg.EstimatorTimeout,
		})
		if cfg.RedisAddr != "" {
			est = estimator.WithCache(est, cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName))
		}
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()
	if publisher.Enabled() {
		slog.Info("order event publishing enabled", "brokers", cfg.KafkaBrokers)
	}

	products := memory.NewProductStore()
	carts := memory.NewCartStore()
	orderStore := memory.NewOrderStore()

	if cfg.SeedDemoData {
		seedDemoProducts(ctx, products)
	}

	engine := checkout.NewEngine(products, carts, orderStore, est, checkoutLog, checkout.Config{
		EstimateTimeout: cfg.EstimatorTimeout,
		Publisher:       publisher,
		Metrics:         metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer),
	})

	handler := httpx.NewHandler(
		cart.NewService(products, carts),
		engine,
		orders.NewService(orderStore),
		checkoutLog,
	)
	router := httpx.NewRouter(handler, metrics.NewServerMetrics(prometheus.DefaultRegisterer))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(router, "marketplace-http"),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("marketplace service running", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

// seedDemoProducts loads a small catalog for local runs. Production stock
// comes from the (out of scope) product CRUD surface.
func seedDemoProducts(ctx context.Context, products *memory.ProductStore) {
	demo := []*domain.Product{
		{ID: uuid.NewString(), Name: "Alphonso Mangoes 1kg", Price: 6.50, Stock: 40, StoreOwner: "store-amrut", StoreAddress: "12 Orchard Lane"},
		{ID: uuid.NewString(), Name: "Basmati Rice 5kg", Price: 11.00, Stock: 25, StoreOwner: "store-amrut", StoreAddress: "12 Orchard Lane"},
		{ID: uuid.NewString(), Name: "Cold-Pressed Groundnut Oil 1L", Price: 4.75, Stock: 60, StoreOwner: "store-veda", StoreAddress: "3 Mill Road"},
	}
	for _, p := range demo {
		if err := products.Put(ctx, p); err != nil {
			slog.Warn("failed to seed product", "name", p.Name, "error", err)
			continue
		}
		slog.Info("seeded demo product", "id", p.ID, "name", p.Name, "stock", p.Stock)
	}
}
