// Package registry is the static task registry: a process-wide
// mapping from every recognised key (a module's fqdn plus every
// alias) to a types.TaskId, built once from an explicit registration
// list.
//
// kerosene collects module descriptors via inventory::submit! at
// compile time (original_source/src/task/mod.rs). Go has no compile-time
// collection step, so each module's init() appends its descriptor to
// the package-level `builtins` list via Register, and that list is
// assembled lazily (sync.Once) into the lookup map on first use.
package registry

import (
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/types"
)

// ModuleFunc is the contract every built-in module implements: given
// the play's shared context and the raw YAML value captured under the
// module's key, perform the module's effect and optionally return a
// value for the task's `register` binding.
type ModuleFunc func(ctx *context.Context, args *yaml.Node) (interface{}, error)

// ModuleDescriptor statically describes a built-in module: its
// canonical fully-qualified name, any aliases it also answers to, and
// its entry point.
type ModuleDescriptor struct {
	FQDN    string
	Aliases []string
	Run     ModuleFunc
}

var (
	once     sync.Once
	byKey    map[string]types.TaskId
	byFQDN   map[string]*ModuleDescriptor
	builtins []ModuleDescriptor
)

// Register appends a module descriptor to the builtin list. Intended
// to be called from each module's package init() before any lookup
// happens; registration is closed after first use (there is no
// runtime addition once the registry has been built).
func Register(d ModuleDescriptor) {
	builtins = append(builtins, d)
}

func build() {
	byKey = make(map[string]types.TaskId, len(builtins)*2)
	byFQDN = make(map[string]*ModuleDescriptor, len(builtins))

	for i := range builtins {
		d := &builtins[i]
		byFQDN[d.FQDN] = d
		byKey[d.FQDN] = types.TaskId{Key: d.FQDN, FQDN: d.FQDN}
		for _, alias := range d.Aliases {
			byKey[alias] = types.TaskId{Key: alias, FQDN: d.FQDN}
		}
	}
}

func ensureBuilt() {
	once.Do(build)
}

// Lookup resolves a YAML key to a TaskId. The second return value is
// false when the key matches no fqdn or alias — the caller must treat
// that as "not a module key", not as a resolvable Unknown task.
func Lookup(key string) (types.TaskId, bool) {
	ensureBuilt()
	id, ok := byKey[key]
	return id, ok
}

// Module returns the entry point for a resolved TaskId's canonical
// fqdn. Panics if called with an fqdn that was never registered —
// that indicates a bug in the parser, not a user error, since Lookup
// only ever returns ids backed by a registered descriptor.
func Module(id types.TaskId) ModuleFunc {
	ensureBuilt()
	d, ok := byFQDN[id.Name()]
	if !ok {
		panic("registry: dispatch on unresolved task id " + id.Name())
	}
	return d.Run
}

// Has reports whether fqdn names a registered module.
func Has(fqdn string) bool {
	ensureBuilt()
	_, ok := byFQDN[fqdn]
	return ok
}

// Reset clears registration state — a test-only helper so each test
// file can register its own fixture modules without colliding with
// builtins registered by other packages' init functions.
func Reset() {
	once = sync.Once{}
	builtins = nil
	byKey = nil
	byFQDN = nil
}
