package plan

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix-installer/nix-installer-core/internal/action"
)

type fakeAction struct {
	action.Base
	privileged bool
}

func newFake(tag string, explanation ...string) *fakeAction {
	return &fakeAction{Base: action.NewBase(tag, "do "+tag, explanation...)}
}

func (f *fakeAction) RequiresPrivilege() bool { return f.privileged }

func (f *fakeAction) Execute(ctx context.Context) error { return f.TransitionTo(action.Completed) }

func (f *fakeAction) Revert(ctx context.Context) error { return f.TransitionTo(action.Reverted) }

func (f *fakeAction) Payload() (json.RawMessage, error) { return json.RawMessage("{}"), nil }

var _ action.Action = (*fakeAction)(nil)
var _ PrivilegedAction = (*fakeAction)(nil)

func TestNewCommitsActionsToPending(t *testing.T) {
	a := newFake("a")
	p, err := New("linux", nil, "0.1.0", Target{OS: "linux"}, "", []action.Action{a})
	require.NoError(t, err)
	assert.Equal(t, action.Pending, a.Phase())
	assert.NotEqual(t, p.RunID.String(), "")
}

func TestDescribeRendersNumberedLinesWithExplanation(t *testing.T) {
	a := newFake("a", "creates the nix store directory")
	p, err := New("linux", nil, "0.1.0", Target{}, "", []action.Action{a})
	require.NoError(t, err)

	lines := p.Describe()
	require.Len(t, lines, 2)
	assert.Equal(t, "1. do a", lines[0])
	assert.Equal(t, "   - creates the nix store directory", lines[1])
}

func TestDescribeIndentsChildren(t *testing.T) {
	child := newFake("child")
	parent := newFake("parent")
	parent.AddChild(child)

	p, err := New("linux", nil, "0.1.0", Target{}, "", []action.Action{parent})
	require.NoError(t, err)

	lines := p.Describe()
	assert.Contains(t, lines, "   - do child")
}

func TestRequiresPrivilegeFindsNestedPrivilegedAction(t *testing.T) {
	child := newFake("child")
	child.privileged = true
	parent := newFake("parent")
	parent.AddChild(child)

	p, err := New("linux", nil, "0.1.0", Target{}, "", []action.Action{parent})
	require.NoError(t, err)

	assert.True(t, p.RequiresPrivilege())
}

func TestRequiresPrivilegeFalseWhenNoActionDeclaresIt(t *testing.T) {
	a := newFake("a")
	p, err := New("linux", nil, "0.1.0", Target{}, "", []action.Action{a})
	require.NoError(t, err)

	assert.False(t, p.RequiresPrivilege())
}
