package modules

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/registry"
	"github.com/cinderops/cinder/pkg/resource"
	"github.com/cinderops/cinder/pkg/template"
	"github.com/cinderops/cinder/pkg/types"
)

func init() {
	registry.Register(registry.ModuleDescriptor{
		FQDN:    "ansible.builtin.template",
		Aliases: []string{"template"},
		Run:     Template,
	})
}

type templateSource struct {
	File      string `yaml:"src"`
	RemoteSrc bool   `yaml:"remote_src"`
	Content   string `yaml:"content"`
}

type templateArgs struct {
	Src   templateSource `yaml:",inline"`
	Dest  string         `yaml:"dest"`
	Owner string         `yaml:"owner"`
	Group string         `yaml:"group"`
	Mode  string         `yaml:"mode"`
}

// Template renders a template (local file or inline content) against
// the play's facts with strict-undefined evaluation, then pipes the
// rendered bytes to `install` exactly like copy. A remote_src source
// is NOT rendered — it is already on the target, so it is installed
// verbatim by path, same as copy's remote_src case.
func Template(ctx *context.Context, raw *yaml.Node) (interface{}, error) {
	var a templateArgs
	if err := raw.Decode(&a); err != nil {
		return nil, types.NewConfigurationError("template", "invalid arguments: "+err.Error())
	}
	if a.Dest == "" {
		return nil, types.NewConfigurationError("template", "dest is required")
	}

	if a.Src.File != "" && a.Src.RemoteSrc {
		args, _ := buildInstallArgv(a.Dest, a.Src.File, a.Owner, a.Group, a.Mode)
		return nil, runInstall(ctx, args, false, nil)
	}

	var rawTemplate string
	switch {
	case a.Src.Content != "":
		rawTemplate = a.Src.Content
	case a.Src.File != "":
		path, err := resource.Resolve(a.Src.File, "templates", ctx.PlayBasedir(), ctx.ResourceDirs())
		if err != nil {
			return nil, err
		}
		rendered, err := template.DefaultEngine.RenderFile(path, ctx.Facts())
		if err != nil {
			return nil, err
		}
		args, _ := buildInstallArgv(a.Dest, "", a.Owner, a.Group, a.Mode)
		return nil, runInstall(ctx, args, true, strings.NewReader(rendered))
	default:
		return nil, types.NewConfigurationError("template", "one of src or content is required")
	}

	rendered, err := template.DefaultEngine.Render(rawTemplate, ctx.Facts())
	if err != nil {
		return nil, err
	}
	args, _ := buildInstallArgv(a.Dest, "", a.Owner, a.Group, a.Mode)
	return nil, runInstall(ctx, args, true, strings.NewReader(rendered))
}
