package events

import "time"

// OrderCreated is emitted after a checkout commit succeeds. Consumers
// (fulfillment, notifications) key on the order ID.
type OrderCreated struct {
	EventID    string    `json:"event_id"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}
