package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderops/cinder/pkg/command"
)

func TestLoadEmptyPathYieldsEmptyInventory(t *testing.T) {
	inv, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, inv)
}

func TestLoadParsesFlatMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
db01:
  address: 10.0.0.5
  user: deploy
  port: 2222
`), 0o644))

	inv, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Entry{Address: "10.0.0.5", User: "deploy", Port: 2222}, inv["db01"])
}

func TestResolveLocalhostIsAlwaysLocal(t *testing.T) {
	inv := Static{}
	target := inv.Resolve("localhost", "", nil, false)
	assert.Equal(t, command.Local, target.Kind)
}

func TestResolveKnownHostUsesInventoryEntry(t *testing.T) {
	inv := Static{"db01": Entry{Address: "10.0.0.5", User: "deploy", Port: 2222}}
	target := inv.Resolve("db01", "fallback", nil, false)
	assert.Equal(t, command.Remote, target.Kind)
	assert.Equal(t, "10.0.0.5", target.Hostname)
	assert.Equal(t, "deploy", target.User)
	assert.Equal(t, 2222, target.Port)
}

func TestResolveUnknownHostFallsBackToBareSSH(t *testing.T) {
	inv := Static{}
	target := inv.Resolve("db02.internal", "deploy", nil, false)
	assert.Equal(t, command.Remote, target.Kind)
	assert.Equal(t, "db02.internal", target.Hostname)
	assert.Equal(t, "deploy", target.User)
}
