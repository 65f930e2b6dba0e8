package modules

import (
	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/registry"
	"github.com/cinderops/cinder/pkg/types"
)

func init() {
	registry.Register(registry.ModuleDescriptor{
		FQDN:    "ansible.builtin.meta",
		Aliases: []string{"meta"},
		Run:     Meta,
	})
}

type metaArgs struct {
	Action string `yaml:""`
}

// Meta performs one of three orchestrator-level actions named directly
// by the task's scalar argument: flush_handlers drains the play's
// pending handler queue immediately rather than waiting for the end of
// the play; noop does nothing; reset_connection calls the current
// target's Reset, which performs no action for either target kind, so
// no connection is dropped or re-established. Grounded on
// original_source/src/task/meta.rs, extended with a reset_connection
// action not present in that file.
func Meta(ctx *context.Context, raw *yaml.Node) (interface{}, error) {
	var action string
	if err := raw.Decode(&action); err != nil {
		return nil, types.NewConfigurationError("meta", "invalid arguments: "+err.Error())
	}

	switch action {
	case "flush_handlers":
		return nil, ctx.Flush(func(name string) error {
			return dispatchHandler(ctx, name)
		})
	case "noop":
		return nil, nil
	case "reset_connection":
		return nil, ctx.Target().Reset()
	default:
		hclog.Default().Warn("unsupported meta action", "action", action)
		return nil, nil
	}
}

// dispatchHandlerFunc is set by the orchestrator so meta can trigger a
// handler flush without this package importing the orchestrator
// (which would create an import cycle, since the orchestrator imports
// the module registry). While it is unset, flush_handlers drains the
// queue without running any handler.
var dispatchHandlerFunc func(ctx *context.Context, name string) error

func dispatchHandler(ctx *context.Context, name string) error {
	if dispatchHandlerFunc == nil {
		return nil
	}
	return dispatchHandlerFunc(ctx, name)
}

// SetHandlerDispatcher wires the orchestrator's handler-dispatch
// routine into the meta module. The orchestrator calls it at the start
// of every play, replacing the previous play's dispatcher.
func SetHandlerDispatcher(fn func(ctx *context.Context, name string) error) {
	dispatchHandlerFunc = fn
}
