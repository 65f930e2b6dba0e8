package logging

import (
	"github.com/hashicorp/go-hclog"

	"github.com/cinderops/cinder/pkg/events"
	"github.com/cinderops/cinder/pkg/types"
)

// Subscribe wires logger into bus, rendering every lifecycle Event as
// one structured log line. Grounded on a stream-logger shape
// previously built around a bespoke LogEntry/LogLevel type writing
// JSON frames to an arbitrary io.Writer, rewired here to consume
// pkg/events instead of being called directly from the executor, and
// to render through hclog rather than a hand-rolled JSON encoder.
func Subscribe(logger hclog.Logger, bus *events.Bus) {
	bus.Subscribe(func(e types.Event) {
		args := []interface{}{"play", e.Play}
		if e.Task != "" {
			args = append(args, "task", e.Task)
		}
		if e.Module != "" {
			args = append(args, "module", e.Module)
		}
		if e.Changed {
			args = append(args, "changed", e.Changed)
		}

		switch {
		case e.Error != "":
			logger.Error(string(e.Type), append(args, "error", e.Error)...)
		case e.Type == types.EventTaskFinished || e.Type == types.EventHandlerFlushed:
			logger.Info(string(e.Type), args...)
		default:
			logger.Debug(string(e.Type), args...)
		}
	})
}
