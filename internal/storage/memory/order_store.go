package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
)

var _ ports.OrderStore = (*OrderStore)(nil)

type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*domain.Order)}
}

func (s *OrderStore) Create(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = copyOrder(order)
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (s *OrderStore) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Order
	for _, order := range s.orders {
		if order.Customer == customerID {
			out = append(out, copyOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *OrderStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Products = make([]domain.OrderLineItem, len(o.Products))
	copy(cp.Products, o.Products)
	return &cp
}
