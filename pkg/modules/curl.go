package modules

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cinderops/cinder/pkg/command"
	cindercontext "github.com/cinderops/cinder/pkg/context"
	"github.com/cinderops/cinder/pkg/registry"
	"github.com/cinderops/cinder/pkg/types"
)

func init() {
	registry.Register(registry.ModuleDescriptor{
		FQDN:    "kerosene.builtin.curl",
		Aliases: []string{"curl"},
		Run:     Curl,
	})
}

type curlArgs struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
}

// Curl issues an HTTP request from the target via the system curl
// binary, grounded on original_source/src/task/curl.rs.
func Curl(ctx *cindercontext.Context, raw *yaml.Node) (interface{}, error) {
	var a curlArgs
	if err := raw.Decode(&a); err != nil {
		return nil, types.NewConfigurationError("curl", "invalid arguments: "+err.Error())
	}
	if a.URL == "" {
		return nil, types.NewConfigurationError("curl", "url is required")
	}

	method := a.Method
	if method == "" {
		method = "GET"
	}

	args := []string{fmt.Sprintf("--request=%s", method)}
	for k, v := range a.Headers {
		args = append(args, fmt.Sprintf("--header=%s: %s", k, v))
	}
	args = append(args, a.URL)

	target := targetWithElevation(ctx)
	return nil, command.New(target, "curl").WithArgs(args...).Run(context.Background(), nil)
}
