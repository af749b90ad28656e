package revert

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/plan"
)

type stubAction struct {
	action.Base
	revertErr error
	order     *[]string
}

func newStub(order *[]string, tag string) *stubAction {
	return &stubAction{Base: action.NewBase(tag, tag), order: order}
}

func (s *stubAction) Execute(ctx context.Context) error { return s.TransitionTo(action.Completed) }

func (s *stubAction) Revert(ctx context.Context) error {
	*s.order = append(*s.order, s.Tag())
	if s.revertErr != nil {
		return s.revertErr
	}
	return s.TransitionTo(action.Reverted)
}

func (s *stubAction) Payload() (json.RawMessage, error) { return json.RawMessage("{}"), nil }

var _ action.Action = (*stubAction)(nil)

func newTestPlan(t *testing.T, actions ...action.Action) *plan.Plan {
	t.Helper()
	p, err := plan.New("test-planner", nil, "0.1.0", plan.Target{}, "", actions)
	require.NoError(t, err)
	return p
}

func TestRevertWalksCompletedActionsInReverseOrder(t *testing.T) {
	var order []string
	a := newStub(&order, "a")
	b := newStub(&order, "b")
	c := newStub(&order, "c")
	p := newTestPlan(t, a, b, c)
	for _, x := range []*stubAction{a, b, c} {
		require.NoError(t, x.Execute(context.Background()))
	}

	r := New(nil, nil)
	require.NoError(t, r.Revert(context.Background(), p))

	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.Equal(t, action.Reverted, a.Phase())
	assert.Equal(t, action.Reverted, c.Phase())
}

func TestRevertSkipsPendingActions(t *testing.T) {
	var order []string
	a := newStub(&order, "a")
	b := newStub(&order, "b") // never executed -> stays Pending
	p := newTestPlan(t, a, b)
	require.NoError(t, a.Execute(context.Background()))

	r := New(nil, nil)
	require.NoError(t, r.Revert(context.Background(), p))

	assert.Equal(t, []string{"a"}, order, "pending action must never have Revert called")
	assert.Equal(t, action.Pending, b.Phase())
}

func TestRevertIsBestEffortAndAggregatesFailures(t *testing.T) {
	var order []string
	a := newStub(&order, "a")
	b := newStub(&order, "b")
	b.revertErr = errors.New("revert b failed")
	c := newStub(&order, "c")
	p := newTestPlan(t, a, b, c)
	for _, x := range []*stubAction{a, b, c} {
		require.NoError(t, x.Execute(context.Background()))
	}

	r := New(nil, nil)
	err := r.Revert(context.Background(), p)

	require.Error(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, order, "b's revert failure must not stop a's revert from running")
	assert.Equal(t, action.Reverted, a.Phase())
	assert.Equal(t, action.Reverted, c.Phase())
	assert.Contains(t, b.Errors(), "revert b failed")
}
