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
		FQDN:    "ansible.builtin.shell",
		Aliases: []string{"shell"},
		Run:     Shell,
	})
}

type shellArgs struct {
	Cmd        string `yaml:"cmd"`
	Chdir      string `yaml:"chdir"`
	Executable string `yaml:"executable"`
}

// Shell invokes `<executable> -c <cmd>` on the current target,
// grounded on original_source/src/task/shell.rs.
func Shell(ctx *cindercontext.Context, raw *yaml.Node) (interface{}, error) {
	a := shellArgs{Executable: "/bin/sh"}
	if err := raw.Decode(&a); err != nil {
		return nil, types.NewConfigurationError("shell", "invalid arguments: "+err.Error())
	}
	if a.Cmd == "" {
		return nil, types.NewConfigurationError("shell", "cmd is required")
	}

	target := targetWithElevation(ctx)
	prepared := command.New(target, a.Executable).WithArgs("-c", a.Cmd)
	if a.Chdir != "" {
		prepared.Chdir(a.Chdir)
	}

	return nil, prepared.Run(context.Background(), nil)
}
