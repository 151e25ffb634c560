// Package orders covers the order lifecycle outside the checkout commit:
// lookup, the monotonic pending -> completed transition, and owner-only
// deletion of pending orders.
package orders

import (
	"context"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
)

type Service struct {
	store ports.OrderStore
}

func NewService(store ports.OrderStore) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

// Complete transitions an order from pending to completed. Completed orders
// never transition again.
func (s *Service) Complete(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusPending {
		return nil, domain.ErrOrderNotPending
	}
	if err := s.store.UpdateStatus(ctx, id, domain.StatusCompleted); err != nil {
		return nil, err
	}
	order.Status = domain.StatusCompleted
	return order, nil
}

// Delete removes a pending order. Only the owning customer may delete, and
// completed orders are kept forever.
func (s *Service) Delete(ctx context.Context, customerID, id string) error {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Customer != customerID {
		return domain.ErrNotOrderOwner
	}
	if order.Status != domain.StatusPending {
		return domain.ErrOrderNotPending
	}
	return s.store.DeleteByID(ctx, id)
}
