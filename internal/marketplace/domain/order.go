package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
)

// OrderLineItem snapshots a product at commit time. Price is frozen here:
// later catalog price changes never alter an existing order.
type OrderLineItem struct {
	ProductID  string
	Name       string
	Quantity   int
	Price      float64
	StoreOwner string
}

func (i OrderLineItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

// Order is the immutable result of a checkout. Only the status may change,
// and only pending -> completed.
type Order struct {
	ID        string
	Customer  string
	Products  []OrderLineItem
	Total     float64
	Status    OrderStatus
	CreatedAt time.Time
}
