package domain

// CartItem is a product selection inside a cart. Quantity is always positive;
// removing an item drops the whole line.
type CartItem struct {
	ProductID string
	Quantity  int
}

// Cart is a customer's in-progress selection. A customer holds at most one
// live cart; an emptied cart is deleted rather than persisted.
//
// Total is an incrementally maintained convenience value. Checkout never
// trusts it: the order total is recomputed from authoritative product prices
// at commit time.
type Cart struct {
	ID       string
	Customer string
	Items    []CartItem
	Total    float64
}

// Find returns the index of the line item for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
