package estimator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
	"github.com/tanush1852/FreshMart/internal/pkg/cache"
)

const cacheTTL = 10 * time.Minute

// CachingEstimator memoises estimates per (store set, customer address) pair
// in Redis. Cache failures are logged and ignored; the inner estimator is
// always the source of truth.
type CachingEstimator struct {
	inner ports.DeliveryEstimator
	cache cache.Cache
}

var _ ports.DeliveryEstimator = (*CachingEstimator)(nil)

func WithCache(inner ports.DeliveryEstimator, c cache.Cache) *CachingEstimator {
	return &CachingEstimator{inner: inner, cache: c}
}

func (e *CachingEstimator) Estimate(ctx context.Context, storeAddresses []string, customerAddress string) (float64, error) {
	key := e.cache.GenerateKey("estimate", routeKey(storeAddresses, customerAddress))

	if cached, err := e.cache.Get(ctx, key); err == nil && cached != "" {
		if hours, err := strconv.ParseFloat(cached, 64); err == nil {
			return hours, nil
		}
	} else if err != nil {
		slog.WarnContext(ctx, "estimate cache read failed", "error", err)
	}

	hours, err := e.inner.Estimate(ctx, storeAddresses, customerAddress)
	if err != nil {
		return 0, err
	}

	if err := e.cache.Set(ctx, key, strconv.FormatFloat(hours, 'f', -1, 64), cacheTTL); err != nil {
		slog.WarnContext(ctx, "estimate cache write failed", "error", err)
	}
	return hours, nil
}

// routeKey hashes the sorted store addresses plus the customer address so the
// key is stable regardless of line-item order.
func routeKey(storeAddresses []string, customerAddress string) string {
	sorted := make([]string, len(storeAddresses))
	copy(sorted, storeAddresses)
	sort.Strings(sorted)

	h := sha256.Sum256([]byte(strings.Join(sorted, "|") + "->" + customerAddress))
	return hex.EncodeToString(h[:16])
}
