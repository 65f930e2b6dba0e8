// Package playbook drives a parsed Playbook through its plays: run
// pre_tasks and flush; apply each role (defaults, handlers, tasks) in
// order; run the play's own tasks and flush; run post_tasks and flush.
//
// Grounded on original_source/src/main.rs::process_play/process_tasks
// for the dispatch order, and on a conventional Go Executor shape (a
// driver walking task lists and emitting lifecycle Events around each
// phase) — adapted here to a single command target per play (cinder
// has no multi-host fan-out) and to dispatch through pkg/registry
// instead of a pluggable runner abstraction.
package playbook

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	cindercontext "github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/events"
	"github.com/cinderops/cinder/pkg/inventory"
	"github.com/cinderops/cinder/pkg/modules"
	"github.com/cinderops/cinder/pkg/registry"
	"github.com/cinderops/cinder/pkg/roles"
	"github.com/cinderops/cinder/pkg/types"
)

// Options configures one run across every play in a playbook.
type Options struct {
	Basedir   string
	Inventory inventory.Static
	Limit     string
	Dry       bool
	Bus       *events.Bus
}

// Run executes every play in pb in order, stopping at the first play
// that returns an error (spec's single-pass, stop-on-first-failure
// policy; there is no continue-past-errors mode).
func Run(pb *types.Playbook, opts Options) error {
	bus := opts.Bus
	if bus == nil {
		bus = events.New()
	}

	for i := range pb.Plays {
		play := &pb.Plays[i]
		if opts.Limit != "" && play.Hosts != "localhost" && play.Hosts != opts.Limit {
			continue
		}

		if err := runPlay(play, opts, bus); err != nil {
			return fmt.Errorf("play %q: %w", play.Name(), err)
		}
	}

	return nil
}

func runPlay(play *types.Play, opts Options, bus *events.Bus) error {
	target := opts.Inventory.Resolve(play.Hosts, play.RemoteUser, nil, opts.Dry)
	ctx := cindercontext.New(opts.Basedir, target)

	bus.Publish(types.Event{Type: types.EventPlayStarted, Play: play.Name(), Timestamp: now()})

	modules.SetHandlerDispatcher(func(c *cindercontext.Context, name string) error {
		return dispatchHandlerByName(c, name, play.Name(), bus)
	})

	run := func() error {
		if err := runTasks(ctx, play.PreTasks, play.Name(), "", bus); err != nil {
			return err
		}
		if err := flush(ctx, play.Name(), bus); err != nil {
			return err
		}

		for _, pr := range play.Roles {
			r, err := roles.Load(opts.Basedir, pr.Role)
			if err != nil {
				return err
			}
			r.Apply(ctx)
			for k, v := range pr.Vars {
				ctx.SetFact(k, v)
			}
			if err := runTasks(ctx, r.Tasks, play.Name(), pr.Role+" : ", bus); err != nil {
				return err
			}
		}

		if err := runTasks(ctx, play.Tasks, play.Name(), "", bus); err != nil {
			return err
		}
		if err := flush(ctx, play.Name(), bus); err != nil {
			return err
		}

		if err := runTasks(ctx, play.PostTasks, play.Name(), "", bus); err != nil {
			return err
		}
		return flush(ctx, play.Name(), bus)
	}

	err := run()

	bus.Publish(types.Event{Type: types.EventPlayFinished, Play: play.Name(), Timestamp: now(), Error: errString(err)})
	return err
}

func runTasks(ctx *cindercontext.Context, tasks []types.TaskDescription, playName, namePrefix string, bus *events.Bus) error {
	for i := range tasks {
		if err := runTask(ctx, &tasks[i], playName, namePrefix, bus); err != nil {
			return err
		}
	}
	return nil
}

func runTask(ctx *cindercontext.Context, task *types.TaskDescription, playName, namePrefix string, bus *events.Bus) error {
	displayName := namePrefix + task.DisplayName()

	bus.Publish(types.Event{
		Type: types.EventTaskStarted, Play: playName, Task: displayName,
		Module: task.TaskID.Name(), Timestamp: now(),
	})

	if task.Become {
		ctx.SetBecomeUser(becomeUserOrDefault(task.BecomeUser))
		defer ctx.ClearBecomeUser()
	}

	result, err := dispatch(ctx, task.TaskID, task.Args)

	bus.Publish(types.Event{
		Type: types.EventTaskFinished, Play: playName, Task: displayName,
		Module: task.TaskID.Name(), Changed: result != nil, Error: errString(err), Timestamp: now(),
	})

	if err != nil {
		return fmt.Errorf("task %q: %w", displayName, err)
	}

	for _, handlerName := range task.Notify {
		ctx.Notify(handlerName)
	}

	return nil
}

func dispatch(ctx *cindercontext.Context, id types.TaskId, args *yaml.Node) (interface{}, error) {
	fn := registry.Module(id)
	return fn(ctx, args)
}

func dispatchHandlerByName(ctx *cindercontext.Context, name, playName string, bus *events.Bus) error {
	h, ok := ctx.Handler(name)
	if !ok {
		return types.NewResolutionError(name, "notified handler is not known to this play")
	}

	if h.Become {
		ctx.SetBecomeUser(becomeUserOrDefault(h.BecomeUser))
		defer ctx.ClearBecomeUser()
	}

	_, err := dispatch(ctx, h.TaskID, h.Args)

	bus.Publish(types.Event{
		Type: types.EventHandlerFlushed, Play: playName, Task: h.DisplayName(),
		Module: h.TaskID.Name(), Error: errString(err), Timestamp: now(),
	})

	if err != nil {
		return fmt.Errorf("handler %q: %w", h.DisplayName(), err)
	}
	return nil
}

func flush(ctx *cindercontext.Context, playName string, bus *events.Bus) error {
	return ctx.Flush(func(name string) error {
		return dispatchHandlerByName(ctx, name, playName, bus)
	})
}

func becomeUserOrDefault(user string) string {
	if user == "" {
		return "root"
	}
	return user
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// now is a call boundary so tests can see that a timestamp was at
// least set; cinder has no need for the actual instant to be
// deterministic, but Date.now-style calls are centralised here for
// clarity.
func now() time.Time { return time.Now() }
