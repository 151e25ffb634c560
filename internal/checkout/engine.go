// Package checkout implements the cart-to-order conversion core: validation,
// the atomic commit of {create order, decrement stock, delete cart}, and the
// best-effort delivery estimate.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tanush1852/FreshMart/internal/checkout/checkoutlog"
	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
	"github.com/tanush1852/FreshMart/internal/pkg/metrics"
)

// Fallback window used whenever a real estimate cannot be obtained.
const (
	fallbackEstimateMin = 15 * time.Minute
	fallbackEstimateMax = 45 * time.Minute
)

const (
	maxEstimateHours = 72.0

	defaultEstimateTimeout = 3 * time.Second
)

// Checkout outcome labels.
const (
	outcomeSucceeded         = "succeeded"
	outcomeEmptyCart         = "empty_cart"
	outcomeProductNotFound   = "product_not_found"
	outcomeInsufficientStock = "insufficient_stock"
	outcomeTxFailed          = "tx_failed"
)

// EventPublisher receives a best-effort notification after a successful
// commit. Failures are logged, never surfaced.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
}

// Config carries the engine's tunables. The zero value is usable: default
// estimate timeout, time-seeded randomness, no publisher, no metrics.
type Config struct {
	// EstimateTimeout bounds the delivery estimator call so a slow
	// collaborator cannot stretch checkout latency.
	EstimateTimeout time.Duration

	// Rand drives the fallback estimate. Tests seed it for determinism.
	Rand *rand.Rand

	Publisher EventPublisher
	Metrics   *metrics.CheckoutMetrics
}

// Engine orchestrates checkout against the store collaborators.
type Engine struct {
	products  ports.ProductStore
	carts     ports.CartStore
	orders    ports.OrderStore
	estimator ports.DeliveryEstimator // nil: fallback estimates only
	log       checkoutlog.Repository  // nil-safe

	publisher       EventPublisher
	metrics         *metrics.CheckoutMetrics
	estimateTimeout time.Duration

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewEngine(
	products ports.ProductStore,
	carts ports.CartStore,
	orders ports.OrderStore,
	estimator ports.DeliveryEstimator,
	log checkoutlog.Repository,
	cfg Config,
) *Engine {
	timeout := cfg.EstimateTimeout
	if timeout <= 0 {
		timeout = defaultEstimateTimeout
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		products:        products,
		carts:           carts,
		orders:          orders,
		estimator:       estimator,
		log:             log,
		publisher:       cfg.Publisher,
		metrics:         cfg.Metrics,
		estimateTimeout: timeout,
		rng:             rng,
	}
}

// Result is a successful checkout: the committed order and a delivery
// estimate, which is always present (real or fallback).
type Result struct {
	Order             *domain.Order
	EstimatedDelivery time.Duration
}

// ItemRequest is one requested line of a direct order placement.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// Checkout converts the customer's cart into an order.
//
// The validation pass re-fetches every product so stale cart data is never
// trusted, and collects every stock violation before reporting. The commit
// runs as one logical transaction: if any step fails, completed steps are
// compensated and no partial state survives. The cart is only gone once the
// order exists, so a failed checkout can simply be retried.
func (e *Engine) Checkout(ctx context.Context, customerID, deliveryAddress string) (*Result, error) {
	start := time.Now()

	cart, err := e.carts.GetByCustomer(ctx, customerID)
	if errors.Is(err, domain.ErrCartNotFound) {
		e.observe(outcomeEmptyCart, start)
		return nil, domain.ErrEmptyCart
	}
	if err != nil {
		e.observe(outcomeTxFailed, start)
		return nil, &domain.TransactionError{Err: err}
	}
	if len(cart.Items) == 0 {
		e.observe(outcomeEmptyCart, start)
		return nil, domain.ErrEmptyCart
	}

	lineItems, storeAddresses, err := e.validate(ctx, cart.Items)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			e.observe(outcomeInsufficientStock, start)
		} else {
			e.observe(outcomeProductNotFound, start)
		}
		return nil, err
	}

	order := newOrder(customerID, lineItems)

	steps := make([]step, 0, len(lineItems)+2)
	steps = append(steps, newCreateOrderStep(e.orders, order))
	for _, it := range lineItems {
		steps = append(steps, newDecrementStockStep(e.products, it.ProductID, it.Quantity))
	}
	steps = append(steps, newDeleteCartStep(e.carts, cart))

	if err := e.commit(ctx, order, steps); err != nil {
		e.observeCommitFailure(err, start)
		return nil, err
	}

	estimate := e.resolveEstimate(ctx, storeAddresses, deliveryAddress)

	e.publishOrderCreated(ctx, order)
	e.observe(outcomeSucceeded, start)

	slog.InfoContext(ctx, "checkout completed",
		"order_id", order.ID, "customer_id", customerID, "total", order.Total)

	return &Result{Order: order, EstimatedDelivery: estimate}, nil
}

// PlaceOrder creates an order directly from an items list, bypassing the
// cart. It shares the validation and atomic commit path with Checkout.
func (e *Engine) PlaceOrder(ctx context.Context, customerID string, items []ItemRequest) (*domain.Order, error) {
	start := time.Now()

	if len(items) == 0 {
		e.observe(outcomeEmptyCart, start)
		return nil, domain.ErrEmptyCart
	}

	cartItems := make([]domain.CartItem, len(items))
	for i, it := range items {
		cartItems[i] = domain.CartItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	lineItems, _, err := e.validate(ctx, cartItems)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			e.observe(outcomeInsufficientStock, start)
		} else {
			e.observe(outcomeProductNotFound, start)
		}
		return nil, err
	}

	order := newOrder(customerID, lineItems)

	steps := make([]step, 0, len(lineItems)+1)
	steps = append(steps, newCreateOrderStep(e.orders, order))
	for _, it := range lineItems {
		steps = append(steps, newDecrementStockStep(e.products, it.ProductID, it.Quantity))
	}

	if err := e.commit(ctx, order, steps); err != nil {
		e.observeCommitFailure(err, start)
		return nil, err
	}

	e.publishOrderCreated(ctx, order)
	e.observe(outcomeSucceeded, start)
	return order, nil
}

// validate re-fetches every product and checks stock, collecting all
// violations instead of failing on the first. On success it returns the
// price-snapshotted line items and the distinct store addresses for the
// delivery estimate.
func (e *Engine) validate(ctx context.Context, items []domain.CartItem) ([]domain.OrderLineItem, []string, error) {
	lineItems := make([]domain.OrderLineItem, 0, len(items))
	var violations []domain.StockViolation

	seen := make(map[string]struct{})
	var storeAddresses []string

	for _, it := range items {
		p, err := e.products.Get(ctx, it.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, nil, domain.ErrProductNotFound
		}
		if err != nil {
			return nil, nil, &domain.TransactionError{Err: err}
		}

		if p.Stock < it.Quantity {
			violations = append(violations, domain.StockViolation{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: it.Quantity,
				Available: p.Stock,
			})
			continue
		}

		lineItems = append(lineItems, domain.OrderLineItem{
			ProductID:  p.ID,
			Name:       p.Name,
			Quantity:   it.Quantity,
			Price:      p.Price,
			StoreOwner: p.StoreOwner,
		})
		if p.StoreAddress != "" {
			if _, ok := seen[p.StoreAddress]; !ok {
				seen[p.StoreAddress] = struct{}{}
				storeAddresses = append(storeAddresses, p.StoreAddress)
			}
		}
	}

	if len(violations) > 0 {
		return nil, nil, &domain.InsufficientStockError{Violations: violations}
	}
	return lineItems, storeAddresses, nil
}

// commit runs the step pipeline through the orchestrator and translates its
// failure: a conditional-decrement shortfall means stock was depleted by a
// concurrent checkout and is reported as an InsufficientStockError; anything
// else is a TransactionError. Either way the rollback already ran.
func (e *Engine) commit(ctx context.Context, order *domain.Order, steps []step) error {
	payload, _ := json.Marshal(struct {
		Customer string                 `json:"customer"`
		Products []domain.OrderLineItem `json:"products"`
		Total    float64                `json:"total"`
	}{order.Customer, order.Products, order.Total})

	orch := newOrchestrator(order.ID, steps, e.log)
	err := orch.run(ctx, string(payload))
	if err == nil {
		return nil
	}

	if errors.Is(err, domain.ErrInsufficientStock) {
		if e.metrics != nil {
			e.metrics.StockConflicts.Inc()
		}
		return &domain.InsufficientStockError{Violations: e.concurrentViolations(ctx, order)}
	}
	return &domain.TransactionError{Err: err}
}

// concurrentViolations re-checks current availability after a commit-time
// stock conflict so the caller still gets per-product detail.
func (e *Engine) concurrentViolations(ctx context.Context, order *domain.Order) []domain.StockViolation {
	var violations []domain.StockViolation
	for _, it := range order.Products {
		p, err := e.products.Get(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if p.Stock < it.Quantity {
			violations = append(violations, domain.StockViolation{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: it.Quantity,
				Available: p.Stock,
			})
		}
	}
	if len(violations) == 0 {
		// The competing checkout may have been rolled back since; report
		// the conflict generically rather than an empty list.
		for _, it := range order.Products {
			violations = append(violations, domain.StockViolation{
				ProductID: it.ProductID,
				Name:      it.Name,
				Requested: it.Quantity,
				Available: -1,
			})
			break
		}
	}
	return violations
}

// resolveEstimate runs after the commit and must never fail past this point:
// any estimator problem degrades to the random fallback window.
func (e *Engine) resolveEstimate(ctx context.Context, storeAddresses []string, customerAddress string) time.Duration {
	if e.estimator == nil || customerAddress == "" || len(storeAddresses) == 0 {
		return e.fallbackEstimate()
	}

	ctx, cancel := context.WithTimeout(ctx, e.estimateTimeout)
	defer cancel()

	hours, err := e.estimator.Estimate(ctx, storeAddresses, customerAddress)
	if err != nil || hours <= 0 || hours > maxEstimateHours {
		slog.WarnContext(ctx, "delivery estimate unavailable, using fallback",
			"hours", hours, "error", err)
		return e.fallbackEstimate()
	}
	return time.Duration(hours * float64(time.Hour))
}

func (e *Engine) fallbackEstimate() time.Duration {
	e.randMu.Lock()
	defer e.randMu.Unlock()
	span := int64(fallbackEstimateMax - fallbackEstimateMin)
	return fallbackEstimateMin + time.Duration(e.rng.Int63n(span+1))
}

func (e *Engine) publishOrderCreated(ctx context.Context, order *domain.Order) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.OrderCreated(ctx, order); err != nil {
		slog.WarnContext(ctx, "failed to publish order event",
			"order_id", order.ID, "error", err)
	}
}

func (e *Engine) observe(outcome string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.Outcomes.WithLabelValues(outcome).Inc()
	e.metrics.Duration.Observe(time.Since(start).Seconds())
}

func (e *Engine) observeCommitFailure(err error, start time.Time) {
	if errors.Is(err, domain.ErrInsufficientStock) {
		e.observe(outcomeInsufficientStock, start)
		return
	}
	e.observe(outcomeTxFailed, start)
}

func newOrder(customerID string, lineItems []domain.OrderLineItem) *domain.Order {
	var total float64
	for _, it := range lineItems {
		total += it.Subtotal()
	}
	return &domain.Order{
		ID:        uuid.NewString(),
		Customer:  customerID,
		Products:  lineItems,
		Total:     total,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
