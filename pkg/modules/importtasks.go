package modules

import (
	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/registry"
)

func init() {
	registry.Register(registry.ModuleDescriptor{
		FQDN:    "ansible.builtin.import_tasks",
		Aliases: []string{"import_tasks"},
		Run:     ImportTasks,
	})
}

// ImportTasks is a structural no-op at module-dispatch level. The
// playbook parser treats import_tasks as an ordinary module key and
// does not expand it, and this function reads no file, so the named
// task file is never included or run. Grounded on
// original_source/src/task/import_tasks.rs.
func ImportTasks(ctx *context.Context, raw *yaml.Node) (interface{}, error) {
	return nil, nil
}
