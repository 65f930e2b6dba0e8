package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellRequiresCmd(t *testing.T) {
	ctx := dryContext(t)
	_, err := Shell(ctx, decodeArgs(t, "chdir: /tmp\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cmd")
}

func TestShellDryRunDoesNotExecuteCmd(t *testing.T) {
	ctx := dryContext(t)
	_, err := Shell(ctx, decodeArgs(t, "cmd: \"exit 1\"\n"))
	require.NoError(t, err, "dry-run must substitute `true` instead of actually running the shell command")
}

func TestShellDefaultExecutable(t *testing.T) {
	ctx, fake := nonDryContext(t)
	fake.Expect("/bin/sh -c id", nil)

	_, err := Shell(ctx, decodeArgs(t, "cmd: id\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/bin/sh -c id"}, fake.Calls())
}
