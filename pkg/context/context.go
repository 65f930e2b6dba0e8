// Package context implements the per-play shared mutable state every
// task and handler in a play operates on: facts, the current command
// target, the become-user override, the handler notification queue,
// and the resource search path.
//
// One Context is created per play and discarded at play end (see
// original_source/src/task/mod.rs's TaskContextInner /
// Arc<Mutex<...>>). It is guarded by a single mutex; the flush
// protocol in Flush is the one place that deliberately releases the
// lock across the handler dispatch loop, matching
// original_source/src/main.rs::run_handlers.
package context

import (
	"sync"

	"github.com/cinderops/cinder/pkg/command"
	"github.com/cinderops/cinder/pkg/types"
)

// Context is one play's shared execution state.
type Context struct {
	mu sync.Mutex

	facts map[string]interface{}

	target *command.Target

	becomeUser string
	hasBecome  bool

	pendingHandlers []string
	knownHandlers   map[string]types.HandlerDescription

	playBasedir  string
	resourceDirs []string
}

// New creates a fresh play context rooted at basedir, running against
// target (Local or Remote).
func New(basedir string, target *command.Target) *Context {
	return &Context{
		facts:         make(map[string]interface{}),
		target:        target,
		knownHandlers: make(map[string]types.HandlerDescription),
		playBasedir:   basedir,
	}
}

// Facts returns a copy of the facts map taken under the lock. Writes
// to the returned map do not reach the Context; use SetFact or
// SetFactIfAbsent for that.
func (c *Context) Facts() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make(map[string]interface{}, len(c.facts))
	for k, v := range c.facts {
		snapshot[k] = v
	}
	return snapshot
}

// SetFact always overwrites — the set_fact module's semantics.
func (c *Context) SetFact(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.facts[key] = value
}

// SetFactIfAbsent inserts only when key is not already present — role
// defaults' semantics, so later roles never clobber an earlier role's
// (or the playbook's) fact.
func (c *Context) SetFactIfAbsent(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.facts[key]; !exists {
		c.facts[key] = value
	}
}

// Target returns the current command target.
func (c *Context) Target() *command.Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// SetBecomeUser records the privilege-escalation target for the task
// about to run; it is read by module implementations when they ask
// the Command Layer to build an elevation prefix.
func (c *Context) SetBecomeUser(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.becomeUser = user
	c.hasBecome = user != ""
}

// ClearBecomeUser releases the escalation override after a task runs.
func (c *Context) ClearBecomeUser() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.becomeUser = ""
	c.hasBecome = false
}

// BecomeUser reports the current escalation target, if any.
func (c *Context) BecomeUser() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.becomeUser, c.hasBecome
}

// Notify enqueues a handler name for the next flush. Order of
// insertion is preserved (FIFO), matching notify's declared ordering
// guarantee.
func (c *Context) Notify(handler string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingHandlers = append(c.pendingHandlers, handler)
}

// RegisterHandler installs desc under every name in keys. A later
// registration under the same key silently replaces an earlier one —
// known_handlers is a flat map, not a multimap (see DESIGN.md's
// resolved Open Question on `listen` fan-out).
func (c *Context) RegisterHandler(keys []string, desc types.HandlerDescription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if k == "" {
			continue
		}
		c.knownHandlers[k] = desc
	}
}

// Handler looks up a handler by any of its registered names.
func (c *Context) Handler(name string) (types.HandlerDescription, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.knownHandlers[name]
	return h, ok
}

// PlayBasedir is the directory the play's playbook file lives in.
func (c *Context) PlayBasedir() string {
	return c.playBasedir
}

// PrependResourceDir adds a role's resource root to the front of the
// search path, so the most-recently-declared role's files win ties —
// the "reverse registration order" rule in the Resource Resolver.
func (c *Context) PrependResourceDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resourceDirs = append([]string{dir}, c.resourceDirs...)
}

// ResourceDirs returns the role resource roots, most-recently-declared
// first.
func (c *Context) ResourceDirs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.resourceDirs))
	copy(out, c.resourceDirs)
	return out
}

// Flush drains pending_handlers and invokes dispatch once per distinct
// queued name, in FIFO order of first notification: a name notified
// several times before the flush is dispatched once. A handler notified
// under two of its different registered names (e.g. its name and its
// listen value) is dispatched once per name. The queue is copied out
// and the lock released before any dispatch call runs. Notify calls
// made while dispatching are discarded, not kept for the next flush,
// because the queue is cleared unconditionally once this snapshot has
// been dispatched: a handler cannot re-trigger itself within the batch
// it is already part of.
func (c *Context) Flush(dispatch func(name string) error) error {
	c.mu.Lock()
	snapshot := make([]string, len(c.pendingHandlers))
	copy(snapshot, c.pendingHandlers)
	c.mu.Unlock()

	fired := make(map[string]bool, len(snapshot))
	for _, name := range snapshot {
		if fired[name] {
			continue
		}
		fired[name] = true
		if err := dispatch(name); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.pendingHandlers = nil
	c.mu.Unlock()
	return nil
}
