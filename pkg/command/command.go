// Package command builds and runs the argv a module wants executed on
// a Target (a local process or an SSH remote), applying dry-run
// substitution and privilege elevation uniformly across both.
//
// This is a direct rendering of kerosene's command.rs: the same
// PreparedCommand shape, the same dry-run/elevate/ssh-wrapping rules,
// and the same "backslashes doubled for every remote argument" quirk
// (the remote default shell re-splits argv, so a literal backslash
// has to survive two layers of re-interpretation).
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/cinderops/cinder/pkg/types"
)

// Kind selects which half of Target.Argv applies.
type Kind int

const (
	Local Kind = iota
	Remote
)

// Target is where a PreparedCommand runs: a local process, optionally
// with a privilege-elevation prefix, or an SSH remote host.
type Target struct {
	Kind     Kind
	Hostname string // Remote only
	User     string // Remote only; "" means no user@ prefix
	Port     int    // Remote only; 0 means ssh's own default
	Elevate  []string
	Dry      bool
}

// NewLocal builds a Local target. elevate is nil when no become is in
// effect for the current task.
func NewLocal(elevate []string, dry bool) *Target {
	return &Target{Kind: Local, Elevate: elevate, Dry: dry}
}

// NewRemote builds a Remote (SSH) target.
func NewRemote(hostname, user string, elevate []string, dry bool) *Target {
	return &Target{Kind: Remote, Hostname: hostname, User: user, Elevate: elevate, Dry: dry}
}

// WithPort sets a non-default SSH port on a Remote target.
func (t *Target) WithPort(port int) *Target {
	t.Port = port
	return t
}

// Reset asks the target to drop any pooled transport state. For Local
// this is a no-op; for a live (non-dry) Remote it mirrors kerosene's
// `CommandTarget::reset`, itself a `// TODO: ssh -O exit` stub — the
// reset_connection meta action calls this and nothing more happens.
func (t *Target) Reset() error {
	return nil
}

// Runner executes an assembled argv. The default implementation shells
// out via os/exec; tests substitute a fake to assert on argv shape
// without touching a real process.
type Runner interface {
	Run(ctx context.Context, program string, args []string, dir string, stdin io.Reader) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, program string, args []string, dir string, stdin io.Reader) error {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = dir

	// A nil cmd.Stdin makes os/exec connect the child to the null device.
	if stdin != nil {
		cmd.Stdin = stdin
	}

	return cmd.Run()
}

// DefaultRunner is used by every Prepared command unless overridden
// with WithRunner.
var DefaultRunner Runner = execRunner{}

// Prepared is a single command to run: a program, its arguments, an
// optional working directory, and whether it is exempt from dry-run
// substitution.
type Prepared struct {
	Target           *Target
	Command          string
	Args             []string
	WorkingDirectory string
	ReadOnly         bool
	runner           Runner
}

// New starts building a Prepared command against target.
func New(target *Target, cmd string) *Prepared {
	return &Prepared{Target: target, Command: cmd, runner: DefaultRunner}
}

// WithRunner overrides the executor for this command, for tests.
func (p *Prepared) WithRunner(r Runner) *Prepared {
	p.runner = r
	return p
}

// Arg appends a single argument.
func (p *Prepared) Arg(arg string) *Prepared {
	p.Args = append(p.Args, arg)
	return p
}

// WithArgs appends any number of arguments.
func (p *Prepared) WithArgs(args ...string) *Prepared {
	p.Args = append(p.Args, args...)
	return p
}

// Chdir sets the working directory the command runs in (local CWD, or
// a remote `env --chdir` prefix).
func (p *Prepared) Chdir(dir string) *Prepared {
	p.WorkingDirectory = dir
	return p
}

// MarkReadOnly exempts this command from dry-run substitution — used
// for observation commands that change nothing, e.g. `systemctl
// is-active`.
func (p *Prepared) MarkReadOnly() *Prepared {
	p.ReadOnly = true
	return p
}

// FullCommand returns command+args as written, before any
// dry-run/elevate/ssh transformation — useful for logging.
func (p *Prepared) FullCommand() []string {
	full := make([]string, 0, len(p.Args)+1)
	full = append(full, p.Command)
	full = append(full, p.Args...)
	return full
}

// Argv assembles the literal program and arguments to execute,
// applying dry-run substitution, privilege elevation, and (for Remote
// targets) SSH wrapping with backslash-doubled arguments.
func (p *Prepared) Argv() (program string, args []string) {
	t := p.Target

	switch t.Kind {
	case Local:
		if !p.ReadOnly && t.Dry {
			return "true", nil
		}

		if len(t.Elevate) > 0 {
			program = t.Elevate[0]
			args = append(args, t.Elevate[1:]...)
			args = append(args, p.Command)
		} else {
			program = p.Command
		}
		args = append(args, p.Args...)
		return program, args

	default: // Remote
		if !p.ReadOnly && t.Dry {
			return "true", nil
		}

		target := t.Hostname
		if t.User != "" {
			target = t.User + "@" + t.Hostname
		}

		program = "ssh"
		if t.Port != 0 {
			args = append(args, "-p", strconv.Itoa(t.Port))
		}
		args = append(args, target)

		if p.WorkingDirectory != "" {
			args = append(args, "env", "--chdir", p.WorkingDirectory)
		}

		if len(t.Elevate) > 0 {
			args = append(args, t.Elevate...)
		}

		args = append(args, doubleBackslashes(p.Command))
		for _, a := range p.Args {
			args = append(args, doubleBackslashes(a))
		}
		return program, args
	}
}

func doubleBackslashes(s string) string {
	return strings.ReplaceAll(s, `\`, `\\`)
}

// Run executes the prepared command. stdin is connected to /dev/null
// unless r is non-nil, in which case r's bytes are piped in; stdout
// and stderr are inherited from the parent process, matching the
// engine's "observe on the terminal, don't capture" I/O policy.
//
// Local.WorkingDirectory sets the child's CWD directly; Remote
// encodes it into argv (see Argv) so it is not applied here.
func (p *Prepared) Run(ctx context.Context, stdin io.Reader) error {
	program, args := p.Argv()

	runner := p.runner
	if runner == nil {
		runner = DefaultRunner
	}

	var dir string
	if p.Target.Kind == Local && p.WorkingDirectory != "" {
		dir = p.WorkingDirectory
	}

	err := runner.Run(ctx, program, args, dir, stdin)
	return ensureSuccess(p.FullCommand(), err)
}

// ensureSuccess converts a non-nil *exec.ExitError (or start failure)
// into a *types.ExecutionError carrying the synthesised exit code:
// the process's own code if it exited, else 128+signal, matching
// shell convention for a killed process.
func ensureSuccess(fullCommand []string, err error) error {
	if err == nil {
		return nil
	}

	cmdStr := strings.Join(fullCommand, " ")

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return types.NewExecutionError(cmdStr, -1, err)
	}

	exitCode := exitErr.ExitCode()
	if exitCode == -1 {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			exitCode = 128 + int(status.Signal())
		}
	}

	return types.NewExecutionError(cmdStr, exitCode, exitErr)
}

// RunCapture runs the command and also returns the argv actually
// handed to the runner (after dry-run, elevation and SSH wrapping),
// joined with spaces, for logging what ran. FullCommand gives the
// untransformed command instead.
func (p *Prepared) RunCapture(ctx context.Context, stdin io.Reader) (string, error) {
	program, args := p.Argv()
	display := fmt.Sprintf("%s %s", program, strings.Join(args, " "))
	return display, p.Run(ctx, stdin)
}
