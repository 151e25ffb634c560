package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tanush1852/FreshMart/internal/checkout/checkoutlog"
)

// step is a single unit of work in the atomic commit. Each step must have a
// compensating action that undoes its effect.
type step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// orchestrator runs the commit steps sequentially. If a step fails, every
// previously completed step is compensated in LIFO order, so the triple
// (create order, decrement stock, delete cart) changes together or not at
// all. Each transition is appended to the checkout log when one is wired.
type orchestrator struct {
	id    string
	steps []step
	log   checkoutlog.Repository // nil-safe: logging skipped if nil
}

func newOrchestrator(id string, steps []step, log checkoutlog.Repository) *orchestrator {
	return &orchestrator{id: id, steps: steps, log: log}
}

func (o *orchestrator) run(ctx context.Context, payload string) error {
	o.record(ctx, checkoutlog.StatusStarted, "", payload, nil)

	var completed []step
	for _, s := range o.steps {
		if err := s.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "commit step failed, rolling back",
				"checkout_id", o.id, "step", s.Name(), "error", err)
			o.record(ctx, checkoutlog.StatusCompensating, s.Name(), "", []string{err.Error()})

			errs := append([]string{err.Error()}, o.rollback(ctx, completed)...)
			o.record(ctx, checkoutlog.StatusFailed, s.Name(), "", errs)
			return err
		}
		completed = append(completed, s)
		o.record(ctx, checkoutlog.StatusStepDone, s.Name(), "", nil)
	}

	o.record(ctx, checkoutlog.StatusCompleted, "", "", nil)
	return nil
}

// rollback compensates completed steps in reverse order and collects any
// compensation failures for the FAILED log entry.
func (o *orchestrator) rollback(ctx context.Context, steps []step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if err := s.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate step",
				"checkout_id", o.id, "step", s.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", s.Name(), err))
		}
	}
	return errs
}

func (o *orchestrator) record(ctx context.Context, status checkoutlog.Status, currentStep, payload string, errs []string) {
	if o.log == nil {
		return
	}
	entry := checkoutlog.NewEntry(ctx, o.id, status, currentStep, payload, errs)
	if err := o.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to persist checkout log entry",
			"checkout_id", o.id, "status", status, "error", err)
	}
}
