package memory

import (
	"context"
	"sync"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
)

var _ ports.CartStore = (*CartStore)(nil)

type CartStore struct {
	mu         sync.Mutex
	byID       map[string]*domain.Cart
	byCustomer map[string]string // customer -> cart ID, at most one live cart
}

func NewCartStore() *CartStore {
	return &CartStore{
		byID:       make(map[string]*domain.Cart),
		byCustomer: make(map[string]string),
	}
}

func (s *CartStore) GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCustomer[customerID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return copyCart(s.byID[id]), nil
}

func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[cart.ID] = copyCart(cart)
	s.byCustomer[cart.Customer] = cart.ID
	return nil
}

func (s *CartStore) DeleteByID(ctx context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.byID[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	delete(s.byID, cartID)
	delete(s.byCustomer, cart.Customer)
	return nil
}

func copyCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Items = make([]domain.CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
