package checkout_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanush1852/FreshMart/internal/checkout"
	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
	"github.com/tanush1852/FreshMart/internal/storage/memory"
)

type stubEstimator struct {
	hours float64
	err   error
	calls int
}

func (s *stubEstimator) Estimate(ctx context.Context, storeAddresses []string, customerAddress string) (float64, error) {
	s.calls++
	return s.hours, s.err
}

// failingCartStore breaks the commit inside the transaction scope.
type failingCartStore struct {
	ports.CartStore
}

func (s *failingCartStore) DeleteByID(ctx context.Context, cartID string) error {
	return errors.New("cart store is down")
}

type fixture struct {
	products *memory.ProductStore
	carts    *memory.CartStore
	orders   *memory.OrderStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		products: memory.NewProductStore(),
		carts:    memory.NewCartStore(),
		orders:   memory.NewOrderStore(),
	}
}

func (f *fixture) engine(est ports.DeliveryEstimator, cfg checkout.Config) *checkout.Engine {
	return checkout.NewEngine(f.products, f.carts, f.orders, est, nil, cfg)
}

func (f *fixture) addProduct(t *testing.T, name string, price float64, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:           uuid.NewString(),
		Name:         name,
		Price:        price,
		Stock:        stock,
		StoreOwner:   "store-1",
		StoreAddress: "1 Market St",
	}
	require.NoError(t, f.products.Put(context.Background(), p))
	return p
}

func (f *fixture) addCart(t *testing.T, customerID string, items ...domain.CartItem) *domain.Cart {
	t.Helper()
	var total float64
	for _, it := range items {
		p, err := f.products.Get(context.Background(), it.ProductID)
		require.NoError(t, err)
		total += p.Price * float64(it.Quantity)
	}
	c := &domain.Cart{ID: uuid.NewString(), Customer: customerID, Items: items, Total: total}
	require.NoError(t, f.carts.Save(context.Background(), c))
	return c
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.products.Get(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestCheckoutSuccess(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "Product A", 10, 5)
	b := f.addProduct(t, "Product B", 5, 5)
	f.addCart(t, "cust-1",
		domain.CartItem{ProductID: a.ID, Quantity: 2},
		domain.CartItem{ProductID: b.ID, Quantity: 1},
	)

	engine := f.engine(nil, checkout.Config{})
	result, err := engine.Checkout(context.Background(), "cust-1", "")

	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Equal(t, 25.0, result.Order.Total)
	assert.Equal(t, domain.StatusPending, result.Order.Status)
	assert.Equal(t, "cust-1", result.Order.Customer)
	require.Len(t, result.Order.Products, 2)

	// Total always equals the sum of line subtotals.
	var sum float64
	for _, it := range result.Order.Products {
		sum += it.Subtotal()
	}
	assert.Equal(t, result.Order.Total, sum)

	// Stock decremented by the ordered quantities.
	assert.Equal(t, 3, f.stock(t, a.ID))
	assert.Equal(t, 4, f.stock(t, b.ID))

	// The cart no longer exists.
	_, err = f.carts.GetByCustomer(context.Background(), "cust-1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	// Order persisted.
	stored, err := f.orders.GetByID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Order.Total, stored.Total)

	// No estimator wired, so the fallback window applies.
	assert.GreaterOrEqual(t, result.EstimatedDelivery, 15*time.Minute)
	assert.LessOrEqual(t, result.EstimatedDelivery, 45*time.Minute)
}

func TestCheckoutSnapshotsCurrentPriceNotCartPrice(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Product", 10, 5)
	c := f.addCart(t, "cust-1", domain.CartItem{ProductID: p.ID, Quantity: 2})
	assert.Equal(t, 20.0, c.Total)

	// Price changes after the cart was populated.
	p.Price = 12
	require.NoError(t, f.products.Put(context.Background(), p))

	engine := f.engine(nil, checkout.Config{})
	result, err := engine.Checkout(context.Background(), "cust-1", "")

	require.NoError(t, err)
	assert.Equal(t, 24.0, result.Order.Total)
	assert.Equal(t, 12.0, result.Order.Products[0].Price)
}

func TestCheckoutNoCart(t *testing.T) {
	f := newFixture(t)
	engine := f.engine(nil, checkout.Config{})

	_, err := engine.Checkout(context.Background(), "cust-1", "")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckoutInsufficientStockListsEveryViolation(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "Product A", 10, 1)
	b := f.addProduct(t, "Product B", 5, 0)
	ok := f.addProduct(t, "Product OK", 3, 10)
	f.addCart(t, "cust-1",
		domain.CartItem{ProductID: a.ID, Quantity: 3},
		domain.CartItem{ProductID: b.ID, Quantity: 2},
		domain.CartItem{ProductID: ok.ID, Quantity: 1},
	)

	engine := f.engine(nil, checkout.Config{})
	_, err := engine.Checkout(context.Background(), "cust-1", "")

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Violations, 2)

	assert.Equal(t, "Product A", stockErr.Violations[0].Name)
	assert.Equal(t, 3, stockErr.Violations[0].Requested)
	assert.Equal(t, 1, stockErr.Violations[0].Available)
	assert.Equal(t, "Product B", stockErr.Violations[1].Name)

	// No partial effects: stock untouched, cart intact, no order.
	assert.Equal(t, 1, f.stock(t, a.ID))
	assert.Equal(t, 0, f.stock(t, b.ID))
	assert.Equal(t, 10, f.stock(t, ok.ID))

	cart, err := f.carts.GetByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 3)

	list, err := f.orders.ListByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCheckoutSingleViolationDetail(t *testing.T) {
	f := newFixture(t)
	c := f.addProduct(t, "Product C", 7, 3)
	f.addCart(t, "cust-1", domain.CartItem{ProductID: c.ID, Quantity: 5})

	engine := f.engine(nil, checkout.Config{})
	_, err := engine.Checkout(context.Background(), "cust-1", "")

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Violations, 1)
	assert.Equal(t, "Product C", stockErr.Violations[0].Name)
	assert.Equal(t, 5, stockErr.Violations[0].Requested)
	assert.Equal(t, 3, stockErr.Violations[0].Available)

	assert.Equal(t, 3, f.stock(t, c.ID))
}

func TestCheckoutCommitFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Product", 10, 5)
	f.addCart(t, "cust-1", domain.CartItem{ProductID: p.ID, Quantity: 2})

	engine := checkout.NewEngine(
		f.products,
		&failingCartStore{CartStore: f.carts},
		f.orders,
		nil, nil, checkout.Config{},
	)

	_, err := engine.Checkout(context.Background(), "cust-1", "")

	var txErr *domain.TransactionError
	require.ErrorAs(t, err, &txErr)

	// Stock restored, order gone, cart still there.
	assert.Equal(t, 5, f.stock(t, p.ID))

	list, listErr := f.orders.ListByCustomer(context.Background(), "cust-1")
	require.NoError(t, listErr)
	assert.Empty(t, list)

	cart, cartErr := f.carts.GetByCustomer(context.Background(), "cust-1")
	require.NoError(t, cartErr)
	assert.Len(t, cart.Items, 1)
}

func TestCheckoutConcurrentDepletion(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Scarce", 10, 3)
	f.addCart(t, "cust-1", domain.CartItem{ProductID: p.ID, Quantity: 2})
	f.addCart(t, "cust-2", domain.CartItem{ProductID: p.ID, Quantity: 2})

	engine := f.engine(nil, checkout.Config{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, customer := range []string{"cust-1", "cust-2"} {
		wg.Add(1)
		go func(i int, customer string) {
			defer wg.Done()
			_, errs[i] = engine.Checkout(context.Background(), customer, "")
		}(i, customer)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one checkout must win")
	assert.Equal(t, 1, failed)

	// Never oversold: 3 - 2 = 1, not -1.
	assert.Equal(t, 1, f.stock(t, p.ID))
}

func TestCheckoutUsesEstimatorResult(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Product", 10, 5)
	f.addCart(t, "cust-1", domain.CartItem{ProductID: p.ID, Quantity: 1})

	est := &stubEstimator{hours: 2.5}
	engine := f.engine(est, checkout.Config{})

	result, err := engine.Checkout(context.Background(), "cust-1", "42 Home Ave")
	require.NoError(t, err)
	assert.Equal(t, 1, est.calls)
	assert.Equal(t, 150*time.Minute, result.EstimatedDelivery)
}

func TestCheckoutEstimatorFailureFallsBack(t *testing.T) {
	for name, est := range map[string]*stubEstimator{
		"error":        {err: errors.New("estimator down")},
		"zero":         {hours: 0},
		"negative":     {hours: -1},
		"out of range": {hours: 100},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			p := f.addProduct(t, "Product", 10, 5)
			f.addCart(t, "cust-1", domain.CartItem{ProductID: p.ID, Quantity: 1})

			// Seeded source makes the fallback deterministic.
			engine := f.engine(est, checkout.Config{Rand: rand.New(rand.NewSource(42))})

			result, err := engine.Checkout(context.Background(), "cust-1", "42 Home Ave")
			require.NoError(t, err, "estimator trouble must never fail a committed checkout")

			span := int64(30 * time.Minute)
			want := 15*time.Minute + time.Duration(rand.New(rand.NewSource(42)).Int63n(span+1))
			assert.Equal(t, want, result.EstimatedDelivery)
			assert.GreaterOrEqual(t, result.EstimatedDelivery, 15*time.Minute)
			assert.LessOrEqual(t, result.EstimatedDelivery, 45*time.Minute)
		})
	}
}

func TestCheckoutWithoutDeliveryAddressSkipsEstimator(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Product", 10, 5)
	f.addCart(t, "cust-1", domain.CartItem{ProductID: p.ID, Quantity: 1})

	est := &stubEstimator{hours: 2}
	engine := f.engine(est, checkout.Config{})

	result, err := engine.Checkout(context.Background(), "cust-1", "")
	require.NoError(t, err)
	assert.Zero(t, est.calls)
	assert.GreaterOrEqual(t, result.EstimatedDelivery, 15*time.Minute)
	assert.LessOrEqual(t, result.EstimatedDelivery, 45*time.Minute)
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Product", 4, 10)
	engine := f.engine(nil, checkout.Config{})

	order, err := engine.PlaceOrder(context.Background(), "cust-1", []checkout.ItemRequest{
		{ProductID: p.ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 12.0, order.Total)
	assert.Equal(t, 7, f.stock(t, p.ID))

	t.Run("unknown product", func(t *testing.T) {
		_, err := engine.PlaceOrder(context.Background(), "cust-1", []checkout.ItemRequest{
			{ProductID: "missing", Quantity: 1},
		})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("no items", func(t *testing.T) {
		_, err := engine.PlaceOrder(context.Background(), "cust-1", nil)
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})
}
