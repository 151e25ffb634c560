package estimator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanush1852/FreshMart/internal/estimator"
)

func newServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/estimate", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		var req struct {
			StoreAddresses  []string `json:"storeAddresses"`
			CustomerAddress string   `json:"customerAddress"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.CustomerAddress)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func newClient(baseURL, apiKey string) *estimator.Client {
	return estimator.New(estimator.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: time.Second,
	})
}

func TestEstimate(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"estimatedHours": 2.5}`)
	client := newClient(srv.URL, "secret")

	hours, err := client.Estimate(context.Background(), []string{"1 Market St"}, "42 Home Ave")
	require.NoError(t, err)
	assert.Equal(t, 2.5, hours)
	assert.Equal(t, 1, *calls)
}

func TestEstimateWithoutAPIKey(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"estimatedHours": 2.5}`)
	client := newClient(srv.URL, "")

	_, err := client.Estimate(context.Background(), []string{"1 Market St"}, "42 Home Ave")
	assert.ErrorIs(t, err, estimator.ErrUnavailable)
	assert.Zero(t, *calls, "no request must be made without an API key")
}

func TestEstimateNon200(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadGateway, `oops`)
	client := newClient(srv.URL, "secret")

	_, err := client.Estimate(context.Background(), []string{"1 Market St"}, "42 Home Ave")
	assert.ErrorIs(t, err, estimator.ErrUnavailable)
}

func TestEstimateMalformedBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{not json`)
	client := newClient(srv.URL, "secret")

	_, err := client.Estimate(context.Background(), []string{"1 Market St"}, "42 Home Ave")
	assert.ErrorIs(t, err, estimator.ErrUnavailable)
}

func TestEstimateOutOfRange(t *testing.T) {
	for name, body := range map[string]string{
		"zero":     `{"estimatedHours": 0}`,
		"negative": `{"estimatedHours": -3}`,
		"too long": `{"estimatedHours": 73}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv, _ := newServer(t, http.StatusOK, body)
			client := newClient(srv.URL, "secret")

			_, err := client.Estimate(context.Background(), []string{"1 Market St"}, "42 Home Ave")
			assert.ErrorIs(t, err, estimator.ErrUnavailable)
		})
	}
}

func TestEstimateUpperBoundInclusive(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"estimatedHours": 72}`)
	client := newClient(srv.URL, "secret")

	hours, err := client.Estimate(context.Background(), []string{"1 Market St"}, "42 Home Ave")
	require.NoError(t, err)
	assert.Equal(t, 72.0, hours)
}

func TestEstimateTransportError(t *testing.T) {
	client := newClient("http://127.0.0.1:1", "secret")

	_, err := client.Estimate(context.Background(), []string{"1 Market St"}, "42 Home Ave")
	assert.ErrorIs(t, err, estimator.ErrUnavailable)
}
