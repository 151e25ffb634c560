package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tanush1852/FreshMart/internal/cart"
	"github.com/tanush1852/FreshMart/internal/checkout"
	"github.com/tanush1852/FreshMart/internal/checkout/checkoutlog"
	"github.com/tanush1852/FreshMart/internal/httpx/middlewares"
	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
	"github.com/tanush1852/FreshMart/internal/orders"
)

// Handler serves the cart and order API. The checkout log is nil-safe: the
// status endpoint just reports not found when no log is wired.
type Handler struct {
	carts       *cart.Service
	engine      *checkout.Engine
	orders      *orders.Service
	checkoutLog checkoutlog.Repository
}

func NewHandler(carts *cart.Service, engine *checkout.Engine, orderSvc *orders.Service, checkoutLog checkoutlog.Repository) *Handler {
	return &Handler{
		carts:       carts,
		engine:      engine,
		orders:      orderSvc,
		checkoutLog: checkoutLog,
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID := middlewares.CustomerID(r.Context())

	c, err := h.carts.Get(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	customerID := middlewares.CustomerID(r.Context())

	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Product ID and quantity are required")
		return
	}

	c, err := h.carts.Add(r.Context(), customerID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	customerID := middlewares.CustomerID(r.Context())

	var req RemoveFromCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	c, err := h.carts.Remove(r.Context(), customerID, req.ProductID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Cart is now empty"})
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	customerID := middlewares.CustomerID(r.Context())

	if err := h.carts.Clear(r.Context(), customerID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Cart cleared successfully"})
}

// Checkout converts the customer's cart into an order. The request body is
// optional; it may carry a delivery address for the estimate.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID := middlewares.CustomerID(r.Context())

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	slog.InfoContext(r.Context(), "converting cart to order", "customer_id", customerID)

	result, err := h.engine.Checkout(r.Context(), customerID, req.DeliveryAddress)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Message:               "Order created successfully",
		Order:                 mapOrderToResponse(result.Order),
		EstimatedDeliveryTime: formatEstimate(result.EstimatedDelivery),
	})
}

// PlaceOrder creates an order directly from an items array, without a cart.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID := middlewares.CustomerID(r.Context())

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Items array is required and cannot be empty")
		return
	}

	items := make([]checkout.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "productId and quantity must be valid")
			return
		}
		items = append(items, checkout.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.engine.PlaceOrder(r.Context(), customerID, items)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, PlaceOrderResponse{
		Message: "Order created successfully",
		Order:   mapOrderToResponse(order),
	})
}

func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := middlewares.CustomerID(r.Context())

	list, err := h.orders.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]OrderResponse, len(list))
	for i, o := range list {
		out[i] = mapOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	customerID := middlewares.CustomerID(r.Context())
	orderID := chi.URLParam(r, "id")

	if err := h.orders.Delete(r.Context(), customerID, orderID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Order deleted successfully"})
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.orders.Complete(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// CheckoutStatus exposes the latest checkout log entry for an order, mainly
// for operators chasing a failed commit.
func (h *Handler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	checkoutID := chi.URLParam(r, "id")

	if h.checkoutLog == nil {
		writeError(w, http.StatusNotFound, "checkout log not enabled")
		return
	}
	entry, err := h.checkoutLog.GetLatest(r.Context(), checkoutID)
	if err != nil {
		writeError(w, http.StatusNotFound, "checkout not found")
		return
	}
	writeJSON(w, http.StatusOK, CheckoutLogResponse{
		CheckoutID:  entry.CheckoutID,
		Status:      string(entry.Status),
		CurrentStep: entry.CurrentStep,
		TraceID:     entry.TraceID,
		UpdatedAt:   entry.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	var txErr *domain.TransactionError

	switch {
	case errors.As(err, &stockErr):
		msgs := make([]string, len(stockErr.Violations))
		for i, v := range stockErr.Violations {
			msgs[i] = v.String()
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "Insufficient stock for one or more products",
			Errors:  msgs,
		})
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, domain.ErrCartNotFound):
		writeError(w, http.StatusNotFound, "Cart not found")
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrProductNotInCart):
		writeError(w, http.StatusNotFound, "Product not found in cart")
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrNotOrderOwner):
		writeError(w, http.StatusForbidden, "Not authorized to modify this order")
	case errors.Is(err, domain.ErrOrderNotPending):
		writeError(w, http.StatusConflict, "Order is not pending")
	case errors.As(err, &txErr):
		// The rollback already ran, so a retry is safe.
		writeError(w, http.StatusInternalServerError, "Checkout failed, please try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}
