package executor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/plan"
	"github.com/nix-installer/nix-installer-core/internal/progress"
)

type stubAction struct {
	action.Base
	executeErr error
	order      *[]string
}

func newStub(order *[]string, tag string) *stubAction {
	return &stubAction{Base: action.NewBase(tag, tag), order: order}
}

func (s *stubAction) Execute(ctx context.Context) error {
	if s.executeErr != nil {
		return s.executeErr
	}
	*s.order = append(*s.order, s.Tag())
	return s.TransitionTo(action.Completed)
}

func (s *stubAction) Revert(ctx context.Context) error { return s.TransitionTo(action.Reverted) }

func (s *stubAction) Payload() (json.RawMessage, error) { return json.RawMessage("{}"), nil }

var _ action.Action = (*stubAction)(nil)

// recordingSink captures every lifecycle event, so tests can assert on the
// exact sequence the Executor emits (spec §4.3).
type recordingSink struct{ events []string }

func (r *recordingSink) ActionStarted(tag, description string) { r.events = append(r.events, "start:"+tag) }
func (r *recordingSink) ActionSucceeded(tag string)             { r.events = append(r.events, "ok:"+tag) }
func (r *recordingSink) ActionFailed(tag string, err error)     { r.events = append(r.events, "fail:"+tag) }
func (r *recordingSink) PlanComplete()                          { r.events = append(r.events, "complete") }
func (r *recordingSink) PlanAborted(err error)                  { r.events = append(r.events, "aborted") }
func (r *recordingSink) ActionReverted(tag string)              { r.events = append(r.events, "reverted:"+tag) }
func (r *recordingSink) ActionRevertFailed(tag string, err error) {
	r.events = append(r.events, "revert-failed:"+tag)
}
func (r *recordingSink) RevertComplete() { r.events = append(r.events, "revert-complete") }

var _ progress.Sink = (*recordingSink)(nil)

func newTestPlan(actions ...action.Action) *plan.Plan {
	p, err := plan.New("test-planner", nil, "0.1.0", plan.Target{}, "", actions)
	if err != nil {
		panic(err)
	}
	return p
}

func TestExecutorRunsTopLevelActionsInOrder(t *testing.T) {
	var order []string
	a := newStub(&order, "a")
	b := newStub(&order, "b")
	c := newStub(&order, "c")

	sink := &recordingSink{}
	exec := New(nil, sink, 0)
	require.NoError(t, exec.Execute(context.Background(), newTestPlan(a, b, c)))

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, action.Completed, a.Phase())
	assert.Equal(t, action.Completed, c.Phase())
	assert.Contains(t, sink.events, "complete")
}

func TestExecutorStopsOnFirstFailure(t *testing.T) {
	var order []string
	a := newStub(&order, "a")
	b := newStub(&order, "b")
	b.executeErr = errors.New("boom")
	c := newStub(&order, "c")

	sink := &recordingSink{}
	exec := New(nil, sink, 0)
	err := exec.Execute(context.Background(), newTestPlan(a, b, c))

	require.Error(t, err)
	assert.Equal(t, []string{"a"}, order, "c must never run once b fails")
	assert.Contains(t, sink.events, "aborted")
}

func TestExecutorSkipsAlreadyCompletedActionsOnResume(t *testing.T) {
	var order []string
	a := newStub(&order, "a")
	require.NoError(t, a.TransitionTo(action.Pending))
	require.NoError(t, a.TransitionTo(action.Completed))
	b := newStub(&order, "b")
	require.NoError(t, b.TransitionTo(action.Pending))

	exec := New(nil, nil, 0)
	require.NoError(t, exec.Execute(context.Background(), newTestPlan(a, b)))

	assert.Equal(t, []string{"b"}, order, "a already Completed must not re-execute")
}

func TestExecutorHonorsCancellation(t *testing.T) {
	var order []string
	a := newStub(&order, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := New(nil, nil, 0)
	err := exec.Execute(ctx, newTestPlan(a))
	require.Error(t, err)
	assert.Empty(t, order)
}
