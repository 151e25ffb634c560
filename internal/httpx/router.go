package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tanush1852/FreshMart/internal/httpx/middlewares"
	"github.com/tanush1852/FreshMart/internal/pkg/metrics"
)

func NewRouter(handler *Handler, sm *metrics.ServerMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if sm != nil {
		r.Use(sm.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewares.RequireCustomer)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handler.GetCart)
			r.Post("/add", handler.AddToCart)
			r.Post("/remove", handler.RemoveFromCart)
			r.Delete("/clear", handler.ClearCart)
			r.Post("/order", handler.Checkout)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", handler.ListOrders)
			r.Post("/", handler.PlaceOrder)
			r.Get("/{id}", handler.GetOrderByID)
			r.Delete("/{id}", handler.DeleteOrder)
			r.Post("/{id}/complete", handler.CompleteOrder)
		})

		r.Get("/checkouts/{id}", handler.CheckoutStatus)
	})

	return r
}
