package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
)

// --- createOrderStep ---

type createOrderStep struct {
	orders ports.OrderStore
	order  *domain.Order
}

func newCreateOrderStep(orders ports.OrderStore, order *domain.Order) *createOrderStep {
	return &createOrderStep{orders: orders, order: order}
}

func (s *createOrderStep) Name() string { return "Create_Order_Step" }

func (s *createOrderStep) Execute(ctx context.Context) error {
	if err := s.orders.Create(ctx, s.order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *createOrderStep) Compensate(ctx context.Context) error {
	return s.orders.DeleteByID(ctx, s.order.ID)
}

// --- decrementStockStep ---

// decrementStockStep covers one line item, so the orchestrator can compensate
// exactly the decrements that went through when a later one fails.
type decrementStockStep struct {
	products  ports.ProductStore
	productID string
	quantity  int
}

func newDecrementStockStep(products ports.ProductStore, productID string, quantity int) *decrementStockStep {
	return &decrementStockStep{products: products, productID: productID, quantity: quantity}
}

func (s *decrementStockStep) Name() string { return "Decrement_Stock_Step:" + s.productID }

func (s *decrementStockStep) Execute(ctx context.Context) error {
	_, err := s.products.DecrementIfAvailable(ctx, s.productID, s.quantity)
	if errors.Is(err, domain.ErrInsufficientStock) {
		// Stock was depleted between validation and commit. Keep the
		// sentinel so the engine can report it as a stock problem rather
		// than a generic transaction failure.
		return fmt.Errorf("product %s: %w", s.productID, domain.ErrInsufficientStock)
	}
	if err != nil {
		return fmt.Errorf("failed to decrement stock for %s: %w", s.productID, err)
	}
	return nil
}

func (s *decrementStockStep) Compensate(ctx context.Context) error {
	return s.products.IncrementStock(ctx, s.productID, s.quantity)
}

// --- deleteCartStep ---

type deleteCartStep struct {
	carts ports.CartStore
	cart  *domain.Cart // snapshot kept for compensation
}

func newDeleteCartStep(carts ports.CartStore, cart *domain.Cart) *deleteCartStep {
	return &deleteCartStep{carts: carts, cart: cart}
}

func (s *deleteCartStep) Name() string { return "Delete_Cart_Step" }

func (s *deleteCartStep) Execute(ctx context.Context) error {
	if err := s.carts.DeleteByID(ctx, s.cart.ID); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", s.cart.ID, err)
	}
	return nil
}

func (s *deleteCartStep) Compensate(ctx context.Context) error {
	return s.carts.Save(ctx, s.cart)
}
