package ports

import "context"

// DeliveryEstimator predicts delivery duration in hours for an order shipped
// from the given stores to the customer. Implementations return
// estimator.ErrUnavailable for any failure; callers are expected to fall back
// rather than surface the error.
type DeliveryEstimator interface {
	Estimate(ctx context.Context, storeAddresses []string, customerAddress string) (float64, error)
}
