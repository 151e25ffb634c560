package ports

import (
	"context"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
)

// ProductStore is the product collaborator consumed by the checkout engine
// and the cart service.
type ProductStore interface {
	// Get returns the authoritative current product record.
	// Returns domain.ErrProductNotFound if no such product exists.
	Get(ctx context.Context, id string) (*domain.Product, error)

	// DecrementIfAvailable atomically checks stock >= qty and decrements.
	// The check-and-decrement is a single operation: two concurrent callers
	// can never both pass against the same stale stock value.
	// Returns domain.ErrInsufficientStock when the condition fails and
	// domain.ErrProductNotFound when the product is gone.
	DecrementIfAvailable(ctx context.Context, id string, qty int) (*domain.Product, error)

	// IncrementStock restores qty units. Used to compensate a decrement when
	// a later commit step fails.
	IncrementStock(ctx context.Context, id string, qty int) error

	// Put creates or replaces a product record.
	Put(ctx context.Context, p *domain.Product) error
}

type CartStore interface {
	// GetByCustomer returns the customer's live cart, or domain.ErrCartNotFound.
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)

	// Save creates or replaces the cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// DeleteByID removes the cart. Returns domain.ErrCartNotFound if absent.
	DeleteByID(ctx context.Context, cartID string) error
}

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
	DeleteByID(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}
