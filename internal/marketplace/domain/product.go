package domain

import "time"

// Product is a store owner's listing. Stock is the remaining purchasable
// quantity and must never go negative.
type Product struct {
	ID           string
	Name         string
	Price        float64
	Stock        int
	StoreOwner   string
	StoreAddress string
	CreatedAt    time.Time
}
