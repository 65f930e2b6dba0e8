// Package types holds the data model shared by every cinder package:
// task identity, the playbook document shape, and the value a module
// may return for registration.
package types

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// TaskId names a resolved module. Known and Alias both carry the
// canonical fully-qualified name; Unknown carries only the raw key
// that failed to resolve (kept for error messages, never dispatchable).
type TaskId struct {
	Key     string // the key as written in the playbook
	FQDN    string // canonical module name ("" for Unknown)
	Unknown bool
}

// Name returns the canonical fqdn for a resolved id, else the raw key.
func (t TaskId) Name() string {
	if t.Unknown {
		return t.Key
	}
	return t.FQDN
}

// TaskDescription is the common shape of every task entry (pre_tasks,
// tasks, post_tasks, and role task lists).
type TaskDescription struct {
	Name       string
	TaskID     TaskId
	Args       *yaml.Node
	Become     bool
	BecomeUser string
	DelegateTo string
	When       []string
	Notify     []string
	Register   string
	Vars       map[string]interface{}
}

// DisplayName returns Name if set, else the resolved module name —
// the fallback the orchestrator uses for log lines.
func (t *TaskDescription) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.TaskID.Name()
}

// HandlerDescription is a TaskDescription minus notify/delegate_to/
// register, plus an optional listen topic. At least one of Name or
// Listen must be set (enforced by the parser).
type HandlerDescription struct {
	Name       string
	Listen     string
	TaskID     TaskId
	Args       *yaml.Node
	Become     bool
	BecomeUser string
	When       []string
	Vars       map[string]interface{}
}

// DisplayName mirrors TaskDescription.DisplayName for log lines.
func (h *HandlerDescription) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.Listen
}

// PlayRole is either a bare role name, or a mapping of {role, vars}.
type PlayRole struct {
	Role string
	Vars map[string]interface{}
}

// Name returns the role name regardless of which YAML form was used.
func (r PlayRole) Name() string { return r.Role }

// Play is one top-level playbook entry: a batch of tasks, roles, and
// handlers applied to a set of hosts.
type Play struct {
	NameField  string `yaml:"name"`
	Hosts      string `yaml:"hosts"`
	RemoteUser string `yaml:"remote_user"`
	PreTasks   []TaskDescription
	Roles      []PlayRole
	Tasks      []TaskDescription
	PostTasks  []TaskDescription
}

// Name falls back to Hosts when the play has no explicit name.
func (p *Play) Name() string {
	if p.NameField != "" {
		return p.NameField
	}
	return p.Hosts
}

// Playbook is an ordered sequence of plays.
type Playbook struct {
	Plays []Play
}

// Result is the value a task may stash into `register`, mirroring the
// shape modules build their return value from.
type Result struct {
	Host       string
	Success    bool
	Changed    bool
	Message    string
	Data       map[string]interface{}
	Error      error
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	ModuleName string
}

// String renders a compact one-line summary, used in verbose logs.
func (r *Result) String() string {
	status := "ok"
	switch {
	case r.Error != nil:
		status = "failed"
	case r.Changed:
		status = "changed"
	}
	return fmt.Sprintf("[%s] %s: %s", r.Host, status, r.Message)
}

// EventType enumerates the lifecycle points the orchestrator emits
// onto the event bus (ambient observability, see pkg/events).
type EventType string

const (
	EventPlayStarted    EventType = "play_started"
	EventPlayFinished   EventType = "play_finished"
	EventTaskStarted    EventType = "task_started"
	EventTaskFinished   EventType = "task_finished"
	EventHandlerFlushed EventType = "handler_flushed"
)

// Event is a single lifecycle notification, JSON-serialisable for the
// live stream server.
type Event struct {
	Type      EventType              `json:"type"`
	Play      string                 `json:"play,omitempty"`
	Task      string                 `json:"task,omitempty"`
	Module    string                 `json:"module,omitempty"`
	Changed   bool                   `json:"changed,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
}
