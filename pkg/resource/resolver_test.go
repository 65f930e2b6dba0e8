package resource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestResolveShortCircuitsOnAbsolutePath(t *testing.T) {
	basedir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere.conf")
	touch(t, abs)

	got, err := Resolve(abs, "files", basedir, []string{"/roles/web"})
	require.NoError(t, err)
	assert.Equal(t, abs, got)
}

func TestResolveSearchesResourceDirsMostRecentFirst(t *testing.T) {
	base := t.TempDir()
	roleBase := filepath.Join(base, "roles", "base")
	roleWeb := filepath.Join(base, "roles", "web")

	touch(t, filepath.Join(roleBase, "files", "app.conf"))
	touch(t, filepath.Join(roleWeb, "files", "app.conf"))

	got, err := Resolve("app.conf", "files", base, []string{roleWeb, roleBase})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(roleWeb, "files", "app.conf"), got,
		"the first (most recently applied) resourceDir must win")
}

func TestResolveFallsBackToLaterResourceDirWhenEarlierLacksFile(t *testing.T) {
	base := t.TempDir()
	roleBase := filepath.Join(base, "roles", "base")
	roleWeb := filepath.Join(base, "roles", "web")

	touch(t, filepath.Join(roleBase, "files", "only-in-base.conf"))

	got, err := Resolve("only-in-base.conf", "files", base, []string{roleWeb, roleBase})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(roleBase, "files", "only-in-base.conf"), got)
}

func TestResolveFallsBackToResourceDirRootWhenSubdirMisses(t *testing.T) {
	base := t.TempDir()
	roleWeb := filepath.Join(base, "roles", "web")

	touch(t, filepath.Join(roleWeb, "app.conf"))

	got, err := Resolve("app.conf", "files", base, []string{roleWeb})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(roleWeb, "app.conf"), got)
}

func TestResolveFallsBackToBasedirWhenNoResourceDirHasFile(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "app.conf"))

	got, err := Resolve("app.conf", "files", base, []string{filepath.Join(base, "roles", "web")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "app.conf"), got)
}

func TestResolveFallsBackToBasedirSubdir(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "files", "app.conf"))

	got, err := Resolve("app.conf", "files", base, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "files", "app.conf"), got)
}

func TestResolveReturnsResolutionErrorWhenNotFound(t *testing.T) {
	base := t.TempDir()
	_, err := Resolve("missing.conf", "files", base, []string{filepath.Join(base, "roles", "web")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.conf")
}
