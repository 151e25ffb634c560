// Package checkoutlog defines the append-only audit trail for checkout
// executions. Every state transition of the commit pipeline is recorded, so
// an operator can see exactly how far a checkout got and correlate it with
// the distributed trace via the trace_id column.
package checkoutlog

import "time"

// Status is the lifecycle state of a checkout execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single point-in-time snapshot of a checkout execution. Entries
// are immutable; the latest row per checkout ID gives the current state.
type Entry struct {
	// CheckoutID identifies the execution. It is the order ID, so the log
	// can be joined with business data.
	CheckoutID string

	Status Status

	// CurrentStep is the commit step that just ran (or failed).
	CurrentStep string

	// Payload is the JSON-serialised checkout input, written once on STARTED.
	Payload string

	// ErrorMessages is a JSON array of failure details, one per failed step
	// or compensation.
	ErrorMessages string

	// TraceID and SpanID come from the OpenTelemetry span active when the
	// entry was written.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
