// Package logging provides cinder's process-wide structured logger:
// hclog writing to stderr, level controlled by the CINDER_LOG
// environment variable.
//
// Grounded on hashicorp-nomad's pervasive hclog.Logger usage
// (command/agent/command.go's NewInterceptLogger(&hclog.LoggerOptions{
// Name, Level: hclog.LevelFromString(...)}) construction pattern).
package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// EnvVar is the environment variable controlling log verbosity.
const EnvVar = "CINDER_LOG"

// New builds cinder's root logger. Level defaults to INFO; set
// CINDER_LOG to TRACE, DEBUG, WARN, or ERROR to override.
func New() hclog.Logger {
	level := hclog.Info
	if v := os.Getenv(EnvVar); v != "" {
		if parsed := hclog.LevelFromString(v); parsed != hclog.NoLevel {
			level = parsed
		}
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            "cinder",
		Level:           level,
		Output:          os.Stderr,
		IncludeLocation: level <= hclog.Debug,
	})
}
