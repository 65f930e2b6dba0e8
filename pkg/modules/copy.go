package modules

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/registry"
	"github.com/cinderops/cinder/pkg/resource"
	"github.com/cinderops/cinder/pkg/types"
)

func init() {
	registry.Register(registry.ModuleDescriptor{
		FQDN:    "ansible.builtin.copy",
		Aliases: []string{"copy"},
		Run:     Copy,
	})
}

type copySource struct {
	File      string `yaml:"src"`
	RemoteSrc bool   `yaml:"remote_src"`
	Content   string `yaml:"content"`
}

type copyArgs struct {
	Src   copySource `yaml:",inline"`
	Dest  string     `yaml:"dest"`
	Owner string     `yaml:"owner"`
	Group string     `yaml:"group"`
	Mode  string     `yaml:"mode"`
}

// Copy installs a file (literal content, or a local/remote source
// path) at dest via `install`, as original_source/src/task/copy.rs's
// build_install_command does.
func Copy(ctx *context.Context, raw *yaml.Node) (interface{}, error) {
	var a copyArgs
	if err := raw.Decode(&a); err != nil {
		return nil, types.NewConfigurationError("copy", "invalid arguments: "+err.Error())
	}
	if a.Dest == "" {
		return nil, types.NewConfigurationError("copy", "dest is required")
	}

	remoteSrc := ""
	if a.Src.File != "" && a.Src.RemoteSrc {
		remoteSrc = a.Src.File
	}

	args, usePipe := buildInstallArgv(a.Dest, remoteSrc, a.Owner, a.Group, a.Mode)

	if !usePipe {
		return nil, runInstall(ctx, args, false, nil)
	}

	switch {
	case a.Src.Content != "":
		return nil, runInstall(ctx, args, true, strings.NewReader(a.Src.Content))
	case a.Src.File != "":
		path, err := resource.Resolve(a.Src.File, "files", ctx.PlayBasedir(), ctx.ResourceDirs())
		if err != nil {
			return nil, err
		}
		f, err := openLocalFile(path)
		if err != nil {
			return nil, types.NewResolutionError(a.Src.File, "failed to open local file: "+err.Error())
		}
		defer f.Close()
		return nil, runInstall(ctx, args, true, f)
	default:
		return nil, types.NewConfigurationError("copy", "one of src or content is required")
	}
}
