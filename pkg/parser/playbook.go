package parser

import (
	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/types"
)

const (
	playKeyName       = "name"
	playKeyHosts      = "hosts"
	playKeyRemoteUser = "remote_user"
	playKeyPreTasks   = "pre_tasks"
	playKeyRoles      = "roles"
	playKeyTasks      = "tasks"
	playKeyPostTasks  = "post_tasks"
)

// ParsePlaybook decodes a full playbook document: a YAML sequence of
// plays, each a mapping per spec (name?, hosts, remote_user?,
// pre_tasks?, roles?, tasks?, post_tasks?).
func ParsePlaybook(data []byte) (*types.Playbook, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, types.NewParseError("playbook", "invalid YAML", err)
	}
	if len(root.Content) == 0 {
		return &types.Playbook{}, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.SequenceNode {
		return nil, types.NewParseError("playbook", "expected a sequence of plays", nil)
	}

	plays := make([]types.Play, 0, len(doc.Content))
	for _, playNode := range doc.Content {
		play, err := parsePlay(playNode)
		if err != nil {
			return nil, err
		}
		plays = append(plays, *play)
	}

	return &types.Playbook{Plays: plays}, nil
}

func parsePlay(node *yaml.Node) (*types.Play, error) {
	if node.Kind != yaml.MappingNode {
		return nil, types.NewParseError("play", "expected a mapping", nil)
	}

	play := &types.Play{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		switch key {
		case playKeyName:
			s, err := scalarString(val)
			if err != nil {
				return nil, err
			}
			play.NameField = s
		case playKeyHosts:
			s, err := scalarString(val)
			if err != nil {
				return nil, err
			}
			play.Hosts = s
		case playKeyRemoteUser:
			s, err := scalarString(val)
			if err != nil {
				return nil, err
			}
			play.RemoteUser = s
		case playKeyPreTasks:
			tasks, err := parseTaskList(val)
			if err != nil {
				return nil, err
			}
			play.PreTasks = tasks
		case playKeyTasks:
			tasks, err := parseTaskList(val)
			if err != nil {
				return nil, err
			}
			play.Tasks = tasks
		case playKeyPostTasks:
			tasks, err := parseTaskList(val)
			if err != nil {
				return nil, err
			}
			play.PostTasks = tasks
		case playKeyRoles:
			roles, err := parseRoleList(val)
			if err != nil {
				return nil, err
			}
			play.Roles = roles
		}
	}

	if play.Hosts == "" {
		return nil, types.NewParseError("play", "missing required field \"hosts\"", nil)
	}

	return play, nil
}

func parseTaskList(node *yaml.Node) ([]types.TaskDescription, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, types.NewParseError("play", "expected a sequence of tasks", nil)
	}
	out := make([]types.TaskDescription, 0, len(node.Content))
	for _, item := range node.Content {
		task, err := ParseTask(item)
		if err != nil {
			return nil, err
		}
		out = append(out, *task)
	}
	return out, nil
}

func parseRoleList(node *yaml.Node) ([]types.PlayRole, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, types.NewParseError("play", "expected a sequence of roles", nil)
	}
	out := make([]types.PlayRole, 0, len(node.Content))
	for _, item := range node.Content {
		role, err := parsePlayRole(item)
		if err != nil {
			return nil, err
		}
		out = append(out, *role)
	}
	return out, nil
}

// parsePlayRole accepts either a bare scalar role name, or a mapping
// {role, vars}.
func parsePlayRole(node *yaml.Node) (*types.PlayRole, error) {
	if node.Kind == yaml.ScalarNode {
		return &types.PlayRole{Role: node.Value}, nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, types.NewParseError("role", "expected a string or a mapping", nil)
	}

	role := &types.PlayRole{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "role":
			s, err := scalarString(val)
			if err != nil {
				return nil, err
			}
			role.Role = s
		case "vars":
			m, err := stringKeyedMap(val)
			if err != nil {
				return nil, err
			}
			role.Vars = m
		}
	}
	if role.Role == "" {
		return nil, types.NewParseError("role", "missing required field \"role\"", nil)
	}
	return role, nil
}

// ParseHandlerList decodes a handlers/main.yml document: a bare
// sequence of handler mappings.
func ParseHandlerList(data []byte) ([]types.HandlerDescription, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, types.NewParseError("handlers", "invalid YAML", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.SequenceNode {
		return nil, types.NewParseError("handlers", "expected a sequence of handlers", nil)
	}
	out := make([]types.HandlerDescription, 0, len(doc.Content))
	for _, item := range doc.Content {
		h, err := ParseHandler(item)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, nil
}

// ParseTaskFile decodes a tasks/main.yml document: a bare sequence of
// task mappings.
func ParseTaskFile(data []byte) ([]types.TaskDescription, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, types.NewParseError("tasks", "invalid YAML", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	return parseTaskList(doc)
}

// ParseFacts decodes a defaults/main.yml document: a flat mapping of
// fact name to value.
func ParseFacts(data []byte) (map[string]interface{}, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, types.NewParseError("defaults", "invalid YAML", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	return stringKeyedMap(root.Content[0])
}
