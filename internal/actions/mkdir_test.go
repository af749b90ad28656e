package actions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix-installer/nix-installer-core/internal/action"
)

func TestMkDirCreatesAndReverts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	m := NewMkDir(dir, 0o755)

	require.NoError(t, action.PlanTree(m))
	require.NoError(t, m.Execute(context.Background()))
	assert.Equal(t, action.Completed, m.Phase())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, m.Revert(context.Background()))
	assert.Equal(t, action.Reverted, m.Phase())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestMkDirIdempotentOnPreExisting(t *testing.T) {
	dir := t.TempDir()
	m := NewMkDir(dir, 0o755)

	require.NoError(t, action.PlanTree(m))
	require.NoError(t, m.Execute(context.Background()))

	require.NoError(t, m.Revert(context.Background()))
	_, err := os.Stat(dir)
	assert.NoError(t, err, "pre-existing directory must survive revert")
}

func TestMkDirLeavesNonEmptyDirOnRevert(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	m := NewMkDir(dir, 0o755)

	require.NoError(t, action.PlanTree(m))
	require.NoError(t, m.Execute(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("x"), 0o644))

	require.NoError(t, m.Revert(context.Background()))
	_, err := os.Stat(dir)
	assert.NoError(t, err, "non-empty directory populated after creation must not be removed")
}
