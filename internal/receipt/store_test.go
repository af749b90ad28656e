package receipt

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/plan"
	"github.com/nix-installer/nix-installer-core/internal/version"
)

type stubAction struct {
	action.Base
}

func (s *stubAction) Execute(ctx context.Context) error { return s.TransitionTo(action.Completed) }
func (s *stubAction) Revert(ctx context.Context) error  { return s.TransitionTo(action.Reverted) }
func (s *stubAction) Payload() (json.RawMessage, error) {
	return json.Marshal(map[string]string{"k": "v"})
}

var _ action.Action = (*stubAction)(nil)

func newRegistry(t *testing.T) *action.Registry {
	t.Helper()
	reg := action.NewRegistry()
	require.NoError(t, reg.Register("stub", func(data json.RawMessage, children []action.Child) (action.Action, error) {
		return &stubAction{Base: action.NewBase("stub", "stub")}, nil
	}))
	return reg
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "receipt.json"), time.Second)

	a := &stubAction{Base: action.NewBase("stub", "stub")}
	p, err := plan.New("test-planner", map[string]any{"x": "y"}, version.Current, plan.Target{OS: "linux"}, "", []action.Action{a})
	require.NoError(t, err)
	require.NoError(t, a.Execute(context.Background()))

	require.NoError(t, store.Save(p))
	assert.True(t, store.Exists())

	reg := newRegistry(t)
	loaded, err := store.Load(reg)
	require.NoError(t, err)
	require.Len(t, loaded.Actions, 1)
	assert.Equal(t, action.Completed, loaded.Actions[0].Phase())
	assert.Equal(t, "test-planner", loaded.PlannerTag)
}

func TestStoreLoadMissingReturnsErrNotFound(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "receipt.json"), time.Second)
	_, err := store.Load(newRegistry(t))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreLoadRejectsIncompatibleVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.json")
	store := NewStore(path, time.Second)

	a := &stubAction{Base: action.NewBase("stub", "stub")}
	p, err := plan.New("test-planner", nil, "99.0.0", plan.Target{}, "", []action.Action{a})
	require.NoError(t, err)
	require.NoError(t, store.Save(p))

	_, err = store.Load(newRegistry(t))
	assert.Error(t, err)
}

func TestStoreDeleteRemovesReceipt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.json")
	store := NewStore(path, time.Second)

	a := &stubAction{Base: action.NewBase("stub", "stub")}
	p, err := plan.New("test-planner", nil, version.Current, plan.Target{}, "", []action.Action{a})
	require.NoError(t, err)
	require.NoError(t, store.Save(p))
	require.True(t, store.Exists())

	require.NoError(t, store.Delete())
	assert.False(t, store.Exists())
}

func TestStoreLockPreventsConcurrentAcquisition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.json")
	storeA := NewStore(path, 200*time.Millisecond)
	storeB := NewStore(path, 200*time.Millisecond)

	unlock, err := storeA.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	_, err = storeB.Lock(context.Background())
	assert.Error(t, err, "a second concurrent invocation must not acquire the receipt lock")
}
