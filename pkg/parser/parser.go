// Package parser implements the task/handler YAML deserialiser: a
// single pass over a mapping's keys that classifies each one as a
// generic attribute or a module key, looked up against the static
// registry. This is the Go rendering of kerosene's hand-rolled serde
// Visitor in original_source/src/serde/task.rs.
package parser

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/registry"
	"github.com/cinderops/cinder/pkg/types"
)

// generic task/handler attribute keys, recognised before falling back
// to a module-key lookup.
const (
	keyName       = "name"
	keyBecome     = "become"
	keyBecomeUser = "become_user"
	keyDelegateTo = "delegate_to"
	keyWhen       = "when"
	keyNotify     = "notify" // tasks only
	keyListen     = "listen" // handlers only
	keyRegister   = "register"
	keyVars       = "vars"
)

// core holds the generic fields common to tasks and handlers while
// the mapping is walked; moduleKey/moduleArgs capture the first (and
// only allowed) module key encountered.
type core struct {
	name       string
	become     bool
	becomeUser string
	delegateTo string
	when       []string
	notify     []string
	listen     string
	register   string
	vars       map[string]interface{}

	seen       map[string]bool
	moduleKey  string
	moduleArgs *yaml.Node
}

func newCore() *core {
	return &core{seen: make(map[string]bool)}
}

// walk classifies every key in node (a mapping) into a generic field
// or a candidate module key. allowNotify/allowListen gate the two
// fields that differ between tasks and handlers.
func (c *core) walk(node *yaml.Node, allowNotify, allowListen bool) error {
	if node.Kind != yaml.MappingNode {
		return types.NewParseError("task", "expected a mapping", nil)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		key := keyNode.Value

		switch key {
		case keyName, keyBecome, keyBecomeUser, keyDelegateTo, keyWhen, keyRegister, keyVars:
			if c.seen[key] {
				return types.NewParseError("task", fmt.Sprintf("duplicate key %q", key), nil)
			}
			c.seen[key] = true
			if err := c.assignGeneric(key, valNode); err != nil {
				return err
			}

		case keyNotify:
			if !allowNotify {
				// unknown key on a handler: logged and skipped
				hclog.Default().Warn("ignoring unknown handler key", "key", key)
				continue
			}
			if c.seen[key] {
				return types.NewParseError("task", "duplicate key \"notify\"", nil)
			}
			c.seen[key] = true
			seq, err := stringSequence(valNode)
			if err != nil {
				return err
			}
			c.notify = seq

		case keyListen:
			if !allowListen {
				// unknown key on a task: logged and skipped
				hclog.Default().Warn("ignoring unknown task key", "key", key)
				continue
			}
			if c.seen[key] {
				return types.NewParseError("task", "duplicate key \"listen\"", nil)
			}
			c.seen[key] = true
			s, err := scalarString(valNode)
			if err != nil {
				return err
			}
			c.listen = s

		default:
			if id, ok := registry.Lookup(key); ok {
				if c.moduleKey != "" {
					return types.NewParseError("task", "duplicate task details", nil)
				}
				c.moduleKey = id.Name()
				c.moduleArgs = valNode
			} else {
				// unknown key: logged and skipped
				hclog.Default().Warn("ignoring unknown key", "key", key)
			}
		}
	}

	return nil
}

func (c *core) assignGeneric(key string, val *yaml.Node) error {
	switch key {
	case keyName:
		s, err := scalarString(val)
		if err != nil {
			return err
		}
		c.name = s
	case keyBecome:
		b, err := scalarBool(val)
		if err != nil {
			return err
		}
		c.become = b
	case keyBecomeUser:
		s, err := scalarString(val)
		if err != nil {
			return err
		}
		c.becomeUser = s
	case keyDelegateTo:
		s, err := scalarString(val)
		if err != nil {
			return err
		}
		c.delegateTo = s
	case keyWhen:
		seq, err := stringOrStringSequence(val)
		if err != nil {
			return err
		}
		c.when = seq
	case keyRegister:
		s, err := scalarString(val)
		if err != nil {
			return err
		}
		c.register = s
	case keyVars:
		m, err := stringKeyedMap(val)
		if err != nil {
			return err
		}
		c.vars = m
	}
	return nil
}

// ParseTask deserialises node into a TaskDescription.
func ParseTask(node *yaml.Node) (*types.TaskDescription, error) {
	c := newCore()
	if err := c.walk(node, true, false); err != nil {
		return nil, err
	}
	if c.moduleKey == "" {
		return nil, types.NewParseError("task", "missing module key", nil)
	}

	taskID, _ := registry.Lookup(c.moduleKey)

	return &types.TaskDescription{
		Name:       c.name,
		TaskID:     taskID,
		Args:       c.moduleArgs,
		Become:     c.become,
		BecomeUser: c.becomeUser,
		DelegateTo: c.delegateTo,
		When:       c.when,
		Notify:     c.notify,
		Register:   c.register,
		Vars:       c.vars,
	}, nil
}

// ParseHandler deserialises node into a HandlerDescription. A handler
// must carry at least one of name or listen.
func ParseHandler(node *yaml.Node) (*types.HandlerDescription, error) {
	c := newCore()
	if err := c.walk(node, false, true); err != nil {
		return nil, err
	}
	if c.moduleKey == "" {
		return nil, types.NewParseError("handler", "missing module key", nil)
	}
	if c.name == "" && c.listen == "" {
		return nil, types.NewParseError("handler", "handler must have a name or a listen value", nil)
	}

	taskID, _ := registry.Lookup(c.moduleKey)

	return &types.HandlerDescription{
		Name:       c.name,
		Listen:     c.listen,
		TaskID:     taskID,
		Args:       c.moduleArgs,
		Become:     c.become,
		BecomeUser: c.becomeUser,
		When:       c.when,
		Vars:       c.vars,
	}, nil
}

func scalarString(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", types.NewParseError("task", "expected a string", nil)
	}
	return n.Value, nil
}

func scalarBool(n *yaml.Node) (bool, error) {
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, types.NewParseError("task", "expected a boolean", err)
	}
	return b, nil
}

func stringSequence(n *yaml.Node) ([]string, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, types.NewParseError("task", "expected a sequence of strings", nil)
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := scalarString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// stringOrStringSequence normalises `when: "expr"` and `when: ["expr"]`
// to the same []string representation.
func stringOrStringSequence(n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	return stringSequence(n)
}

func stringKeyedMap(n *yaml.Node) (map[string]interface{}, error) {
	if n.Kind != yaml.MappingNode {
		return nil, types.NewParseError("task", "expected a mapping", nil)
	}
	out := make(map[string]interface{}, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		var v interface{}
		if err := n.Content[i+1].Decode(&v); err != nil {
			return nil, types.NewParseError("task", "invalid vars value", err)
		}
		out[key] = v
	}
	return out, nil
}
