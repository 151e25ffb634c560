// Package estimator talks to the external delivery-time estimation service.
// Every failure mode collapses into ErrUnavailable so callers only have one
// condition to fall back on.
package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tanush1852/FreshMart/internal/marketplace/ports"
)

// ErrUnavailable means no usable estimate could be obtained. It never reaches
// the API caller; the checkout engine substitutes a fallback estimate.
var ErrUnavailable = errors.New("delivery estimate unavailable")

const maxHours = 72.0

type Config struct {
	// BaseURL of the estimation service. Required.
	BaseURL string
	// APIKey authenticates requests. An absent key means the estimator is
	// treated as permanently unavailable.
	APIKey string
	// Timeout for the HTTP round trip. The engine additionally bounds the
	// call with a context deadline.
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ ports.DeliveryEstimator = (*Client)(nil)

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type estimateRequest struct {
	StoreAddresses  []string `json:"storeAddresses"`
	CustomerAddress string   `json:"customerAddress"`
}

type estimateResponse struct {
	EstimatedHours float64 `json:"estimatedHours"`
}

// Estimate returns the predicted delivery duration in hours, validated to
// the (0, 72] range. Every other outcome (missing API key, transport error,
// non-200 status, malformed body, out-of-range value) is ErrUnavailable.
func (c *Client) Estimate(ctx context.Context, storeAddresses []string, customerAddress string) (float64, error) {
	if c.apiKey == "" {
		return 0, fmt.Errorf("no API key configured: %w", ErrUnavailable)
	}

	body, err := json.Marshal(estimateRequest{
		StoreAddresses:  storeAddresses,
		CustomerAddress: customerAddress,
	})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/estimate", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", ErrUnavailable)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("estimator call failed: %w", ErrUnavailable)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("estimator returned status %d: %w", res.StatusCode, ErrUnavailable)
	}

	var out estimateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", ErrUnavailable)
	}

	if out.EstimatedHours <= 0 || out.EstimatedHours > maxHours {
		return 0, fmt.Errorf("estimate %.2fh out of range: %w", out.EstimatedHours, ErrUnavailable)
	}
	return out.EstimatedHours, nil
}
