package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	res, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), res.Settings)
	assert.Empty(t, res.Overridden)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_dir: /custom/nix\nbuild_user: bldusr\nbuild_user_count: 8\nbuild_gid: 4000\nfirst_build_uid: 4001\nlock_timeout_seconds: 10\nelevation_helper: doas\n"), 0o644))

	res, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/custom/nix", res.Settings.StoreDir)
	assert.Equal(t, "bldusr", res.Settings.BuildUser)
	assert.Equal(t, "doas", res.Settings.ElevationHelper)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_dir: /file/nix\n"), 0o644))

	t.Setenv("NIX_INSTALLER_STORE_DIR", "/env/nix")
	res, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/nix", res.Settings.StoreDir)
	assert.Contains(t, res.Overridden, "store_dir")
}

func TestLoadRejectsInvalidBuildUserName(t *testing.T) {
	t.Setenv("NIX_INSTALLER_BUILD_USER", "Not A Valid Name!")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_dir: \"\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
