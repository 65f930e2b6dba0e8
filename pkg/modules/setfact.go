package modules

import (
	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/registry"
	"github.com/cinderops/cinder/pkg/types"
)

func init() {
	registry.Register(registry.ModuleDescriptor{
		FQDN:    "ansible.builtin.set_fact",
		Aliases: []string{"set_fact"},
		Run:     SetFact,
	})
}

// SetFact writes every key in args into the play's facts, always
// overwriting any existing value, grounded on
// original_source/src/task/set_fact.rs.
func SetFact(ctx *context.Context, raw *yaml.Node) (interface{}, error) {
	var facts map[string]interface{}
	if err := raw.Decode(&facts); err != nil {
		return nil, types.NewConfigurationError("set_fact", "invalid arguments: "+err.Error())
	}

	for k, v := range facts {
		ctx.SetFact(k, v)
	}

	return facts, nil
}
