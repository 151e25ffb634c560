// Package cart implements the cart mutation operations. The cached cart
// total is maintained incrementally here as a convenience value; checkout
// recomputes the authoritative total from current prices.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
)

type Service struct {
	products ports.ProductStore
	carts    ports.CartStore
}

func NewService(products ports.ProductStore, carts ports.CartStore) *Service {
	return &Service{products: products, carts: carts}
}

// Get returns the customer's cart, or an empty cart value when none exists.
func (s *Service) Get(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if err == domain.ErrCartNotFound {
		return &domain.Cart{Customer: customerID, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart for %s: %w", customerID, err)
	}
	return cart, nil
}

// Add puts quantity units of a product into the cart, creating the cart if
// needed and merging into an existing line item otherwise. The stock check
// here is point-in-time only; checkout re-validates.
func (s *Service) Add(ctx context.Context, customerID, productID string, quantity int) (*domain.Cart, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock < quantity {
		return nil, &domain.InsufficientStockError{Violations: []domain.StockViolation{{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: quantity,
			Available: p.Stock,
		}}}
	}

	cart, err := s.carts.GetByCustomer(ctx, customerID)
	switch {
	case err == domain.ErrCartNotFound:
		cart = &domain.Cart{
			ID:       uuid.NewString(),
			Customer: customerID,
			Items:    []domain.CartItem{{ProductID: productID, Quantity: quantity}},
			Total:    p.Price * float64(quantity),
		}
	case err != nil:
		return nil, fmt.Errorf("load cart for %s: %w", customerID, err)
	default:
		if i := cart.Find(productID); i >= 0 {
			cart.Items[i].Quantity += quantity
		} else {
			cart.Items = append(cart.Items, domain.CartItem{ProductID: productID, Quantity: quantity})
		}
		cart.Total += p.Price * float64(quantity)
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	return cart, nil
}

// Remove drops a line item. Removing the last item deletes the cart entirely
// and returns nil; an empty cart is never persisted.
func (s *Service) Remove(ctx context.Context, customerID, productID string) (*domain.Cart, error) {
	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	i := cart.Find(productID)
	if i < 0 {
		return nil, domain.ErrProductNotInCart
	}

	// Subtract the line's contribution from the cached total. A product
	// deleted from the catalog contributes zero; the cached total is a
	// convenience value, never authoritative.
	if p, err := s.products.Get(ctx, productID); err == nil {
		cart.Total -= p.Price * float64(cart.Items[i].Quantity)
		if cart.Total < 0 {
			cart.Total = 0
		}
	}

	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	if len(cart.Items) == 0 {
		if err := s.carts.DeleteByID(ctx, cart.ID); err != nil {
			return nil, fmt.Errorf("delete emptied cart %s: %w", cart.ID, err)
		}
		return nil, nil
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	return cart, nil
}

// Clear deletes the cart wholesale.
func (s *Service) Clear(ctx context.Context, customerID string) error {
	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return s.carts.DeleteByID(ctx, cart.ID)
}
