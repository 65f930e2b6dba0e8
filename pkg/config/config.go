// Package config is cinder's process-wide configuration: default
// privilege-escalation method, SSH port/timeout, log level, and the
// check-mode default, loaded with file < env < flag precedence.
//
// Grounded on pkg/config/config.go's mutex-guarded settings struct and
// loadDefaults/loadFromEnv/typed-Get layering, rewritten to cinder's
// much smaller, strongly-typed field set instead of a generic
// string-keyed map.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds cinder's tunables for a single run.
type Config struct {
	BecomeMethod string        `yaml:"become_method"`
	SSHPort      int           `yaml:"ssh_port"`
	SSHTimeout   time.Duration `yaml:"ssh_timeout"`
	LogLevel     string        `yaml:"log_level"`
	CheckDefault bool          `yaml:"check_default"`
}

// Defaults returns cinder's built-in configuration before any file,
// environment, or flag override is applied.
func Defaults() Config {
	return Config{
		BecomeMethod: "sudo",
		SSHPort:      22,
		SSHTimeout:   30 * time.Second,
		LogLevel:     "INFO",
		CheckDefault: false,
	}
}

// Load builds a Config by layering, in increasing priority: built-in
// defaults, an optional YAML file at path (skipped if path is empty or
// the file does not exist), then environment variables
// (CINDER_BECOME_METHOD, CINDER_SSH_PORT, CINDER_SSH_TIMEOUT,
// CINDER_LOG, CINDER_CHECK). CLI flags are applied by the caller
// afterward, since cobra already parses them with its own precedence.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, err
			}
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CINDER_BECOME_METHOD"); v != "" {
		cfg.BecomeMethod = v
	}
	if v := os.Getenv("CINDER_SSH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SSHPort = port
		}
	}
	if v := os.Getenv("CINDER_SSH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SSHTimeout = d
		}
	}
	if v := os.Getenv("CINDER_LOG"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CINDER_CHECK"); v != "" {
		cfg.CheckDefault = v == "1" || v == "true"
	}
}
