package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cinder.yml")
	require.NoError(t, os.WriteFile(path, []byte("become_method: doas\nssh_port: 2222\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "doas", cfg.BecomeMethod)
	assert.Equal(t, 2222, cfg.SSHPort)
	assert.Equal(t, "INFO", cfg.LogLevel, "fields absent from the file keep their default")
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cinder.yml")
	require.NoError(t, os.WriteFile(path, []byte("ssh_port: 2222\n"), 0o644))

	t.Setenv("CINDER_SSH_PORT", "2022")
	t.Setenv("CINDER_SSH_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2022, cfg.SSHPort)
	assert.Equal(t, 45*time.Second, cfg.SSHTimeout)
}
