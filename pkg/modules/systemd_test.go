package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemdStateVerbMapping(t *testing.T) {
	cases := map[string]string{
		"reloaded": "reload",
		"restarted": "restart",
		"started":  "start",
		"stopped":  "stop",
	}
	for state, verb := range cases {
		got, ok := stateVerb(state)
		require.True(t, ok)
		assert.Equal(t, verb, got)
	}

	_, ok := stateVerb("bogus")
	assert.False(t, ok)
}

func TestSystemdEnabledRequiresName(t *testing.T) {
	ctx := dryContext(t)
	_, err := Systemd(ctx, decodeArgs(t, "enabled: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestSystemdStateRequiresName(t *testing.T) {
	ctx := dryContext(t)
	_, err := Systemd(ctx, decodeArgs(t, "state: started\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestSystemdDryRunFullSequence(t *testing.T) {
	ctx := dryContext(t)
	_, err := Systemd(ctx, decodeArgs(t, `
daemon_reload: true
enabled: true
masked: false
state: restarted
name: cinderd
scope: user
`))
	require.NoError(t, err)
}

func TestSystemdEmitsVerbsInOrderWithForceAndNoBlockFlags(t *testing.T) {
	ctx, fake := nonDryContext(t)
	fake.Expect("systemctl --system daemon-reload", nil)
	fake.Expect("systemctl --system enable --force cinderd", nil)
	fake.Expect("systemctl --system mask --force cinderd", nil)
	fake.Expect("systemctl --system restart --no-block cinderd", nil)

	_, err := Systemd(ctx, decodeArgs(t, `
daemon_reload: true
enabled: true
masked: true
state: restarted
name: cinderd
force: true
no_block: true
`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"systemctl --system daemon-reload",
		"systemctl --system enable --force cinderd",
		"systemctl --system mask --force cinderd",
		"systemctl --system restart --no-block cinderd",
	}, fake.Calls())
}
