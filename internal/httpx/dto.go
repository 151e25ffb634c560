package httpx

import (
	"fmt"
	"math"
	"time"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
)

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCartRequest struct {
	ProductID string `json:"productId"`
}

type CheckoutRequest struct {
	DeliveryAddress string `json:"deliveryAddress,omitempty"`
}

type PlaceOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CartItemResponse struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type CartResponse struct {
	ID       string             `json:"_id,omitempty"`
	Customer string             `json:"customer"`
	Products []CartItemResponse `json:"products"`
	Total    float64            `json:"total"`
}

type OrderLineItemResponse struct {
	Product    string  `json:"product"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	StoreOwner string  `json:"storeOwner"`
}

type OrderResponse struct {
	ID        string                  `json:"_id"`
	Customer  string                  `json:"customer"`
	Products  []OrderLineItemResponse `json:"products"`
	Total     float64                 `json:"total"`
	Status    string                  `json:"status"`
	CreatedAt string                  `json:"createdAt"`
}

type CheckoutResponse struct {
	Message               string        `json:"message"`
	Order                 OrderResponse `json:"order"`
	EstimatedDeliveryTime string        `json:"estimatedDeliveryTime"`
}

type PlaceOrderResponse struct {
	Message string        `json:"message"`
	Order   OrderResponse `json:"order"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type CheckoutLogResponse struct {
	CheckoutID  string `json:"checkoutId"`
	Status      string `json:"status"`
	CurrentStep string `json:"currentStep,omitempty"`
	TraceID     string `json:"traceId,omitempty"`
	UpdatedAt   string `json:"updatedAt"`
}

func mapCartToResponse(cart *domain.Cart) CartResponse {
	items := make([]CartItemResponse, len(cart.Items))
	for i, it := range cart.Items {
		items[i] = CartItemResponse{Product: it.ProductID, Quantity: it.Quantity}
	}
	return CartResponse{
		ID:       cart.ID,
		Customer: cart.Customer,
		Products: items,
		Total:    cart.Total,
	}
}

func mapOrderToResponse(order *domain.Order) OrderResponse {
	items := make([]OrderLineItemResponse, len(order.Products))
	for i, it := range order.Products {
		items[i] = OrderLineItemResponse{
			Product:    it.ProductID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      it.Price,
			StoreOwner: it.StoreOwner,
		}
	}
	return OrderResponse{
		ID:        order.ID,
		Customer:  order.Customer,
		Products:  items,
		Total:     order.Total,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt.Format(time.RFC3339),
	}
}

// formatEstimate renders a delivery estimate in the documented
// "<minutes> minutes" contract.
func formatEstimate(d time.Duration) string {
	return fmt.Sprintf("%d minutes", int(math.Round(d.Minutes())))
}
