// Package metrics wires Prometheus instrumentation for the HTTP surface and
// the checkout engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "freshmart"

// CheckoutMetrics counts checkout outcomes and commit latency.
type CheckoutMetrics struct {
	Outcomes       *prometheus.CounterVec
	Duration       prometheus.Histogram
	StockConflicts prometheus.Counter
}

// NewCheckoutMetrics registers the checkout collectors on reg. Pass
// prometheus.DefaultRegisterer in main; tests use their own registry.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	m := &CheckoutMetrics{
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "duration_seconds",
			Help:      "End-to-end checkout latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		StockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "stock_conflicts_total",
			Help:      "Conditional stock decrements that failed inside the commit scope.",
		}),
	}
	reg.MustRegister(m.Outcomes, m.Duration, m.StockConflicts)
	return m
}

// ServerMetrics records per-route HTTP request counts and latency.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	m := &ServerMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS)
	return m
}

// Middleware records the chi route pattern once routing has resolved it.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
