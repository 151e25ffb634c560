package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCartNotFound      = errors.New("cart not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductNotInCart  = errors.New("product not found in cart")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrNotOrderOwner     = errors.New("order does not belong to customer")
	ErrOrderNotPending   = errors.New("order is not pending")
)

// StockViolation describes one under-stocked line item found during checkout
// validation.
type StockViolation struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (v StockViolation) String() string {
	return fmt.Sprintf("%s does not have enough stock. Requested: %d, Available: %d",
		v.Name, v.Requested, v.Available)
}

// InsufficientStockError carries every shortfall, not just the first, so the
// caller can fix the whole cart in one pass.
type InsufficientStockError struct {
	Violations []StockViolation
}

func (e *InsufficientStockError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "insufficient stock: " + strings.Join(msgs, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// TransactionError wraps any failure inside the atomic commit scope. The
// commit was rolled back in full; the caller may safely retry.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string { return "checkout transaction failed: " + e.Err.Error() }

func (e *TransactionError) Unwrap() error { return e.Err }
