// Package inventory is a deliberately minimal static inventory: a flat
// mapping from host pattern to connection tuple, far short of a full
// group/pattern inventory (which remains out of scope). It exists only
// to resolve a play's `hosts:` value to a command target.
package inventory

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/command"
)

// Entry is one inventory host's connection details.
type Entry struct {
	Address string `yaml:"address"`
	User    string `yaml:"user"`
	Port    int    `yaml:"port"`
}

// Static is a flat name -> Entry inventory.
type Static map[string]Entry

// Load reads a flat YAML mapping of host name to {address, user, port}
// from path. An empty path yields an empty (not nil) Static, so a
// cinder run without -i still resolves every hosts: value as a literal
// SSH target.
func Load(path string) (Static, error) {
	if path == "" {
		return Static{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var inv Static
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	if inv == nil {
		inv = Static{}
	}
	return inv, nil
}

// Resolve turns a play's hosts: value into a command target.
// localhost/127.0.0.1 always resolves Local regardless of inventory
// content; anything else is looked up by name, falling back to
// treating hosts itself as a bare SSH hostname when no inventory entry
// matches.
func (s Static) Resolve(hosts, remoteUser string, elevate []string, dry bool) *command.Target {
	if hosts == "localhost" || hosts == "127.0.0.1" {
		return command.NewLocal(elevate, dry)
	}

	if entry, ok := s[hosts]; ok {
		user := entry.User
		if user == "" {
			user = remoteUser
		}
		return command.NewRemote(entry.Address, user, elevate, dry).WithPort(entry.Port)
	}

	return command.NewRemote(hosts, remoteUser, elevate, dry)
}
