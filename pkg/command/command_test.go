package command

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner captures every Run call instead of touching a real
// process.
type recordingRunner struct {
	program string
	args    []string
	dir     string
	err     error
}

func (r *recordingRunner) Run(_ context.Context, program string, args []string, dir string, _ io.Reader) error {
	r.program = program
	r.args = args
	r.dir = dir
	return r.err
}

func TestArgvLocalPlain(t *testing.T) {
	target := NewLocal(nil, false)
	program, args := New(target, "install").WithArgs("-m", "0644", "/dev/stdin", "/etc/app.conf").Argv()
	assert.Equal(t, "install", program)
	assert.Equal(t, []string{"-m", "0644", "/dev/stdin", "/etc/app.conf"}, args)
}

func TestArgvLocalElevated(t *testing.T) {
	target := NewLocal([]string{"sudo", "--user=deploy", "--"}, false)
	program, args := New(target, "systemctl").WithArgs("restart", "app").Argv()
	assert.Equal(t, "sudo", program)
	assert.Equal(t, []string{"--user=deploy", "--", "systemctl", "restart", "app"}, args)
}

func TestArgvLocalDryRunSubstitutesTrue(t *testing.T) {
	target := NewLocal(nil, true)
	program, args := New(target, "rm").WithArgs("-rf", "/tmp/x").Argv()
	assert.Equal(t, "true", program)
	assert.Nil(t, args)
}

func TestArgvLocalDryRunReadOnlyStillRuns(t *testing.T) {
	target := NewLocal(nil, true)
	program, args := New(target, "systemctl").WithArgs("is-active", "app").MarkReadOnly().Argv()
	assert.Equal(t, "systemctl", program)
	assert.Equal(t, []string{"is-active", "app"}, args)
}

func TestArgvRemoteWrapsWithSSHAndDoublesBackslashes(t *testing.T) {
	target := NewRemote("db01", "deploy", nil, false)
	program, args := New(target, `echo`).WithArgs(`C:\path\to\thing`).Argv()
	assert.Equal(t, "ssh", program)
	assert.Equal(t, []string{"deploy@db01", "echo", `C:\\path\\to\\thing`}, args)
}

func TestArgvRemoteWithChdirAndElevate(t *testing.T) {
	target := NewRemote("db01", "", []string{"sudo", "--user=deploy", "--"}, false)
	prepared := New(target, "install").WithArgs("-m", "0644", "/dev/stdin", "/etc/app.conf")
	prepared.Chdir("/srv/app")
	program, args := prepared.Argv()
	assert.Equal(t, "ssh", program)
	assert.Equal(t, []string{
		"db01",
		"env", "--chdir", "/srv/app",
		"sudo", "--user=deploy", "--",
		"install", "-m", "0644", "/dev/stdin", "/etc/app.conf",
	}, args)
}

func TestArgvRemoteWithNonDefaultPort(t *testing.T) {
	target := NewRemote("db01", "deploy", nil, false).WithPort(2222)
	program, args := New(target, "true").Argv()
	assert.Equal(t, "ssh", program)
	assert.Equal(t, []string{"-p", "2222", "deploy@db01", "true"}, args)
}

func TestArgvRemoteDryRunSubstitutesTrue(t *testing.T) {
	target := NewRemote("db01", "", nil, true)
	program, args := New(target, "rm").WithArgs("-rf", "/tmp/x").Argv()
	assert.Equal(t, "true", program)
	assert.Nil(t, args)
}

func TestRunDispatchesThroughInjectedRunner(t *testing.T) {
	fake := &recordingRunner{}
	target := NewLocal(nil, false)
	err := New(target, "install").WithArgs("-m", "0644", "/dev/stdin", "/etc/x").
		WithRunner(fake).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "install", fake.program)
	assert.Equal(t, []string{"-m", "0644", "/dev/stdin", "/etc/x"}, fake.args)
}

func TestRunWrapsRunnerFailureAsExecutionError(t *testing.T) {
	fake := &recordingRunner{err: assertNonExitError{}}
	target := NewLocal(nil, false)
	err := New(target, "false").WithRunner(fake).Run(context.Background(), nil)
	require.Error(t, err)
	execErr, ok := err.(interface{ Error() string })
	require.True(t, ok)
	assert.Contains(t, execErr.Error(), "unsuccessful run")
}

type assertNonExitError struct{}

func (assertNonExitError) Error() string { return "boom" }
