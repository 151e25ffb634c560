// Package middlewares holds the HTTP middlewares for the marketplace API.
package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
)

// HeaderXCustomerID carries the authenticated customer identity, set by the
// auth gateway in front of this service. Authentication itself is out of
// scope here; the API trusts the header.
const HeaderXCustomerID = "X-Customer-ID"

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const customerIDKey contextKey = "customer_id"

// RequireCustomer rejects requests without an authenticated identity and
// stores the customer ID in the request context for handlers.
func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerID := r.Header.Get(HeaderXCustomerID)
		if customerID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "authentication required"})
			return
		}
		ctx := context.WithValue(r.Context(), customerIDKey, customerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CustomerID extracts the authenticated customer from the context. Empty if
// RequireCustomer did not run.
func CustomerID(ctx context.Context) string {
	id, _ := ctx.Value(customerIDKey).(string)
	return id
}
