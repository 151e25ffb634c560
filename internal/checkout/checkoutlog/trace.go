package checkoutlog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// NewEntry builds a log entry with trace_id/span_id taken from the active
// OpenTelemetry span in ctx. If no valid span is present (unit tests, tracing
// disabled) both fields stay empty.
func NewEntry(ctx context.Context, checkoutID string, status Status, currentStep, payload string, errs []string) *Entry {
	var traceID, spanID string
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
		spanID = sc.SpanID().String()
	}

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &Entry{
		CheckoutID:    checkoutID,
		Status:        status,
		CurrentStep:   currentStep,
		Payload:       payload,
		ErrorMessages: errJSON,
		TraceID:       traceID,
		SpanID:        spanID,
		UpdatedAt:     time.Now().UTC(),
	}
}
