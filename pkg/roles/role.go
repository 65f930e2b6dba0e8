// Package roles loads a role's defaults/handlers/tasks from
// roles/<name>/{defaults,handlers,tasks}/main.yml beneath a play's
// basedir, and wires its resource directory and handlers into a play
// context.
//
// Grounded on original_source/src/main.rs::process_role/register_handlers
// and RoleManager.LoadRole's per-component-loader layout, rewritten to
// cinder's smaller defaults/handlers/tasks/files+templates scope — no
// meta.yml, dependency graph, or galaxy tags.
package roles

import (
	"fmt"
	"os"
	"path/filepath"

	cindercontext "github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/parser"
	"github.com/cinderops/cinder/pkg/types"
)

// Role is one role's loaded components.
type Role struct {
	Name     string
	Path     string
	Defaults map[string]interface{}
	Handlers []types.HandlerDescription
	Tasks    []types.TaskDescription
}

// Load reads roles/<name> beneath basedir. Each of
// defaults/handlers/tasks/main.yml is optional; a role directory with
// none of the three still loads successfully (a pure resource-only
// role, e.g. one that only ships files/templates).
func Load(basedir, name string) (*Role, error) {
	rolePath := filepath.Join(basedir, "roles", name)
	if info, err := os.Stat(rolePath); err != nil || !info.IsDir() {
		return nil, types.NewResolutionError(name, fmt.Sprintf("role directory not found: %s", rolePath))
	}

	role := &Role{Name: name, Path: rolePath}

	defaults, err := loadDefaults(rolePath)
	if err != nil {
		return nil, err
	}
	role.Defaults = defaults

	handlers, err := loadHandlers(rolePath)
	if err != nil {
		return nil, err
	}
	role.Handlers = handlers

	tasks, err := loadTasks(rolePath)
	if err != nil {
		return nil, err
	}
	role.Tasks = tasks

	return role, nil
}

func loadDefaults(rolePath string) (map[string]interface{}, error) {
	path := filepath.Join(rolePath, "defaults", "main.yml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewResolutionError(path, "failed to read role defaults: "+err.Error())
	}
	return parser.ParseFacts(data)
}

func loadHandlers(rolePath string) ([]types.HandlerDescription, error) {
	path := filepath.Join(rolePath, "handlers", "main.yml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewResolutionError(path, "failed to read role handlers: "+err.Error())
	}
	return parser.ParseHandlerList(data)
}

func loadTasks(rolePath string) ([]types.TaskDescription, error) {
	path := filepath.Join(rolePath, "tasks", "main.yml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewResolutionError(path, "failed to read role tasks: "+err.Error())
	}
	return parser.ParseTaskFile(data)
}

// Apply wires a loaded role into ctx: its defaults (insert-if-absent,
// so an earlier role or the playbook's own facts are never
// clobbered), its handlers (registered under every applicable name),
// and its resource directory (prepended so this, the most recently
// applied role, wins ties in the Resource Resolver search order).
func (r *Role) Apply(ctx *cindercontext.Context) {
	for k, v := range r.Defaults {
		ctx.SetFactIfAbsent(k, v)
	}

	for _, h := range r.Handlers {
		ctx.RegisterHandler(handlerKeys(r.Name, h), h)
	}

	ctx.PrependResourceDir(r.Path)
}

// handlerKeys returns every name a role handler is addressable by: its
// own name, "<role> : <name>", and its listen topic.
func handlerKeys(roleName string, h types.HandlerDescription) []string {
	var keys []string
	if h.Name != "" {
		keys = append(keys, h.Name)
		keys = append(keys, roleName+" : "+h.Name)
	}
	if h.Listen != "" {
		keys = append(keys, h.Listen)
	}
	return keys
}
