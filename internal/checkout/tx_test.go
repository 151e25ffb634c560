package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanush1852/FreshMart/internal/checkout/checkoutlog"
)

type fakeStep struct {
	name          string
	executeErr    error
	compensateErr error
	trace         *[]string
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Execute(ctx context.Context) error {
	*s.trace = append(*s.trace, "execute:"+s.name)
	return s.executeErr
}

func (s *fakeStep) Compensate(ctx context.Context) error {
	*s.trace = append(*s.trace, "compensate:"+s.name)
	return s.compensateErr
}

type memLogRepo struct {
	mu      sync.Mutex
	entries []*checkoutlog.Entry
}

func (r *memLogRepo) Save(ctx context.Context, entry *checkoutlog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memLogRepo) GetLatest(ctx context.Context, checkoutID string) (*checkoutlog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CheckoutID == checkoutID {
			return r.entries[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memLogRepo) statuses() []checkoutlog.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]checkoutlog.Status, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Status
	}
	return out
}

func TestOrchestratorRunsStepsInOrder(t *testing.T) {
	var trace []string
	log := &memLogRepo{}
	orch := newOrchestrator("chk-1", []step{
		&fakeStep{name: "one", trace: &trace},
		&fakeStep{name: "two", trace: &trace},
		&fakeStep{name: "three", trace: &trace},
	}, log)

	err := orch.run(context.Background(), `{"k":"v"}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"execute:one", "execute:two", "execute:three"}, trace)
	assert.Equal(t, []checkoutlog.Status{
		checkoutlog.StatusStarted,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusCompleted,
	}, log.statuses())

	latest, err := log.GetLatest(context.Background(), "chk-1")
	require.NoError(t, err)
	assert.Equal(t, checkoutlog.StatusCompleted, latest.Status)
}

func TestOrchestratorCompensatesInReverseOrder(t *testing.T) {
	var trace []string
	boom := errors.New("step three broke")
	log := &memLogRepo{}
	orch := newOrchestrator("chk-2", []step{
		&fakeStep{name: "one", trace: &trace},
		&fakeStep{name: "two", trace: &trace},
		&fakeStep{name: "three", trace: &trace, executeErr: boom},
	}, log)

	err := orch.run(context.Background(), "")
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{
		"execute:one",
		"execute:two",
		"execute:three",
		"compensate:two",
		"compensate:one",
	}, trace)

	latest, lerr := log.GetLatest(context.Background(), "chk-2")
	require.NoError(t, lerr)
	assert.Equal(t, checkoutlog.StatusFailed, latest.Status)
	assert.Equal(t, "three", latest.CurrentStep)
	assert.Contains(t, latest.ErrorMessages, "step three broke")
}

func TestOrchestratorCollectsCompensationFailures(t *testing.T) {
	var trace []string
	log := &memLogRepo{}
	orch := newOrchestrator("chk-3", []step{
		&fakeStep{name: "one", trace: &trace, compensateErr: errors.New("undo failed")},
		&fakeStep{name: "two", trace: &trace, executeErr: errors.New("boom")},
	}, log)

	err := orch.run(context.Background(), "")
	require.Error(t, err)

	// Compensation of step one ran despite failing.
	assert.Contains(t, trace, "compensate:one")

	latest, lerr := log.GetLatest(context.Background(), "chk-3")
	require.NoError(t, lerr)
	assert.Equal(t, checkoutlog.StatusFailed, latest.Status)
	assert.Contains(t, latest.ErrorMessages, "compensation of one failed")
}

func TestOrchestratorWithoutLog(t *testing.T) {
	var trace []string
	orch := newOrchestrator("chk-4", []step{
		&fakeStep{name: "only", trace: &trace},
	}, nil)

	require.NoError(t, orch.run(context.Background(), ""))
	assert.Equal(t, []string{"execute:only"}, trace)
}
