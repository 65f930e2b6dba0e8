package modules

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/command"
	cindercontext "github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/registry"
	"github.com/cinderops/cinder/pkg/types"
)

func init() {
	registry.Register(registry.ModuleDescriptor{
		FQDN:    "ansible.builtin.systemd_service",
		Aliases: []string{"systemd_service", "ansible.builtin.systemd", "systemd"},
		Run:     Systemd,
	})
}

type systemdArgs struct {
	Name         string `yaml:"name"`
	DaemonReload *bool  `yaml:"daemon_reload"`
	Enabled      *bool  `yaml:"enabled"`
	Masked       *bool  `yaml:"masked"`
	State        string `yaml:"state"`
	Force        bool   `yaml:"force"`
	NoBlock      bool   `yaml:"no_block"`
	Scope        string `yaml:"scope"`
}

// Systemd emits `systemctl <scope-flag> <verb> [flags] <name>` for
// each requested effect, in the fixed order daemon-reload →
// enable/disable → mask/unmask → state change, grounded on
// original_source/src/task/systemd.rs.
func Systemd(ctx *cindercontext.Context, raw *yaml.Node) (interface{}, error) {
	var a systemdArgs
	if err := raw.Decode(&a); err != nil {
		return nil, types.NewConfigurationError("systemd", "invalid arguments: "+err.Error())
	}

	scopeFlag := "--system"
	switch a.Scope {
	case "user":
		scopeFlag = "--user"
	case "global":
		scopeFlag = "--global"
	}

	target := targetWithElevation(ctx)
	run := func(args ...string) error {
		return command.New(target, "systemctl").WithArgs(args...).Run(context.Background(), nil)
	}

	if a.DaemonReload != nil && *a.DaemonReload {
		if err := run(scopeFlag, "daemon-reload"); err != nil {
			return nil, err
		}
	}

	if a.Enabled != nil {
		if a.Name == "" {
			return nil, types.NewConfigurationError("systemd", "name is required")
		}
		verb := "disable"
		if *a.Enabled {
			verb = "enable"
		}
		args := []string{scopeFlag, verb}
		if a.Force {
			args = append(args, "--force")
		}
		args = append(args, a.Name)
		if err := run(args...); err != nil {
			return nil, err
		}
	}

	if a.Masked != nil {
		if a.Name == "" {
			return nil, types.NewConfigurationError("systemd", "name is required")
		}
		verb := "unmask"
		if *a.Masked {
			verb = "mask"
		}
		args := []string{scopeFlag, verb}
		if a.Force {
			args = append(args, "--force")
		}
		args = append(args, a.Name)
		if err := run(args...); err != nil {
			return nil, err
		}
	}

	if a.State != "" {
		if a.Name == "" {
			return nil, types.NewConfigurationError("systemd", "name is required")
		}
		verb, ok := stateVerb(a.State)
		if !ok {
			return nil, types.NewConfigurationError("systemd", "unrecognised state: "+a.State)
		}
		args := []string{scopeFlag, verb}
		if a.NoBlock {
			args = append(args, "--no-block")
		}
		args = append(args, a.Name)
		if err := run(args...); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

func stateVerb(state string) (string, bool) {
	switch state {
	case "reloaded":
		return "reload", true
	case "restarted":
		return "restart", true
	case "started":
		return "start", true
	case "stopped":
		return "stop", true
	default:
		return "", false
	}
}
