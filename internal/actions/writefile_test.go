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

func TestWriteFileCreatesAndReverts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nix.conf")
	w := NewWriteFile(path, "experimental-features = nix-command flakes\n", 0o644)

	require.NoError(t, action.PlanTree(w))
	require.NoError(t, w.Execute(context.Background()))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "experimental-features = nix-command flakes\n", string(contents))

	require.NoError(t, w.Revert(context.Background()))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileRestoresPriorContentsOnRevert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nix.conf")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	w := NewWriteFile(path, "new\n", 0o644)
	require.NoError(t, action.PlanTree(w))
	require.NoError(t, w.Execute(context.Background()))

	contents, _ := os.ReadFile(path)
	assert.Equal(t, "new\n", string(contents))

	require.NoError(t, w.Revert(context.Background()))
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(contents))
}

func TestWriteFileIdempotentWhenContentsAlreadyMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nix.conf")
	require.NoError(t, os.WriteFile(path, []byte("same\n"), 0o644))

	w := NewWriteFile(path, "same\n", 0o644)
	require.NoError(t, action.PlanTree(w))
	require.NoError(t, w.Execute(context.Background()))
	assert.True(t, w.preExisted)
	assert.Equal(t, action.Completed, w.Phase())
}
