// Package modules implements the built-in cinder modules: copy,
// template, shell, systemd, set_fact, meta, curl, and import_tasks.
// Each file registers one module with pkg/registry from its init()
// function and implements the shared registry.ModuleFunc contract.
package modules

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/cinderops/cinder/pkg/command"
	cindercontext "github.com/cinderops/cinder/pkg/context"
)

// buildInstallArgv renders `install [-o owner] [-g group] [-m mode]
// SRC DEST`, shared by copy and template. remoteSrc, when non-empty,
// is used verbatim as SRC (the file already lives on the target);
// otherwise SRC is "/dev/stdin" and the caller is expected to pipe
// content into the command.
func buildInstallArgv(dest, remoteSrc, owner, group, mode string) (args []string, usePipe bool) {
	if owner != "" {
		args = append(args, "-o", owner)
	}
	if group != "" {
		args = append(args, "-g", group)
	}
	if mode != "" {
		args = append(args, "-m", mode)
	}

	if remoteSrc != "" {
		args = append(args, remoteSrc, dest)
		return args, false
	}
	args = append(args, "/dev/stdin", dest)
	return args, true
}

// elevateArgs builds the `sudo --user=<u> --` prefix from the become
// user the orchestrator recorded on ctx for the running task; nil when
// none is set.
func elevateArgs(ctx *cindercontext.Context) []string {
	user, ok := ctx.BecomeUser()
	if !ok {
		return nil
	}
	return []string{"sudo", "--user=" + user, "--"}
}

// targetWithElevation returns ctx's command target unchanged when no
// become user is set, else a copy of it carrying the become user as an
// elevation prefix, matching
// original_source/src/command.rs's "the elevation vector is
// constructed by the orchestrator" rule.
func targetWithElevation(ctx *cindercontext.Context) *command.Target {
	base := ctx.Target()
	elevate := elevateArgs(ctx)
	if len(elevate) == 0 {
		return base
	}

	clone := *base
	clone.Elevate = elevate
	return &clone
}

// runInstall executes `install <args...>` against ctx's target,
// piping stdin when usePipe is set.
func runInstall(ctx *cindercontext.Context, args []string, usePipe bool, stdin io.Reader) error {
	target := targetWithElevation(ctx)
	prepared := command.New(target, "install").WithArgs(args...)

	var in io.Reader
	if usePipe {
		if stdin != nil {
			in = stdin
		} else {
			in = bytes.NewReader(nil)
		}
	}

	return prepared.Run(context.Background(), in)
}

// openLocalFile opens a resolved local path for streaming into an
// install command's stdin.
func openLocalFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
