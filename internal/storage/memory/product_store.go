// Package memory provides mutex-guarded in-memory implementations of the
// marketplace store ports. The product store's conditional decrement is
// atomic, which is all the checkout engine needs to stay oversell-free
// without in-process locks of its own.
package memory

import (
	"context"
	"sync"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
)

var _ ports.ProductStore = (*ProductStore)(nil)

type ProductStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]*domain.Product)}
}

func (s *ProductStore) Get(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *ProductStore) DecrementIfAvailable(ctx context.Context, id string, qty int) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if p.Stock < qty {
		return nil, domain.ErrInsufficientStock
	}
	p.Stock -= qty
	cp := *p
	return &cp, nil
}

func (s *ProductStore) IncrementStock(ctx context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += qty
	return nil
}

func (s *ProductStore) Put(ctx context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.products[p.ID] = &cp
	return nil
}
