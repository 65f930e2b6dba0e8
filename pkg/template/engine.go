// Package template renders the `template` module's source files: Go's
// stdlib text/template over the play's facts, with a strict
// undefined-variable policy — evaluation fails instead of silently
// substituting "<no value>" when a referenced variable is absent.
//
// original_source/src/task/template.rs never actually renders anything
// (it reuses copy's install-command builder verbatim); the rendering
// step itself, with strict-undefined evaluation, is added here.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/cinderops/cinder/pkg/types"
)

// Engine wraps stdlib text/template with a function registry.
type Engine struct {
	mu        sync.RWMutex
	functions map[string]interface{}
}

// NewEngine creates an engine with the built-in function set installed.
func NewEngine() *Engine {
	e := &Engine{functions: make(map[string]interface{})}
	e.registerBuiltinFunctions()
	return e
}

// Render evaluates templateStr against vars with Option("missingkey=error"):
// a reference to a key absent from vars fails the render instead of
// producing "<no value>".
func (e *Engine) Render(templateStr string, vars map[string]interface{}) (string, error) {
	e.mu.RLock()
	functions := make(map[string]interface{}, len(e.functions))
	for k, v := range e.functions {
		functions[k] = v
	}
	e.mu.RUnlock()

	tmpl, err := template.New("template").
		Option("missingkey=error").
		Funcs(functions).
		Parse(templateStr)
	if err != nil {
		return "", types.NewParseError("template", "failed to parse template", err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, vars); err != nil {
		return "", types.NewParseError("template", "failed to render template (undefined variable?)", err)
	}

	return out.String(), nil
}

// RenderFile reads path and renders its contents against vars.
func (e *Engine) RenderFile(path string, vars map[string]interface{}) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", types.NewResolutionError(path, "failed to read template file: "+err.Error())
	}
	return e.Render(string(content), vars)
}

// AddFunction registers a custom template function.
func (e *Engine) AddFunction(name string, fn interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.functions[name] = fn
}

func (e *Engine) registerBuiltinFunctions() {
	e.functions["upper"] = strings.ToUpper
	e.functions["lower"] = strings.ToLower
	e.functions["trim"] = strings.TrimSpace
	e.functions["replace"] = func(old, new, s string) string { return strings.ReplaceAll(s, old, new) }
	e.functions["split"] = strings.Split
	e.functions["join"] = func(sep string, items []string) string { return strings.Join(items, sep) }
	e.functions["contains"] = strings.Contains
	e.functions["hasPrefix"] = strings.HasPrefix
	e.functions["hasSuffix"] = strings.HasSuffix

	e.functions["toString"] = toString
	e.functions["toInt"] = toInt
	e.functions["toBool"] = toBool

	e.functions["default"] = func(def, v interface{}) interface{} {
		if v == nil || v == "" {
			return def
		}
		return v
	}

	e.functions["basename"] = filepath.Base
	e.functions["dirname"] = filepath.Dir

	e.functions["quote"] = func(s string) string { return fmt.Sprintf("%q", s) }

	e.functions["regexMatch"] = func(pattern, s string) bool {
		matched, err := regexp.MatchString(pattern, s)
		return err == nil && matched
	}
	e.functions["regexReplace"] = func(pattern, replacement, s string) string {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return s
		}
		return re.ReplaceAllString(s, replacement)
	}

	e.functions["env"] = os.Getenv
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		return strconv.Atoi(val)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

func toBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(val)
		return b
	default:
		return false
	}
}

// DefaultEngine is a process-wide engine instance, used by the
// template module when the caller has no reason to build its own.
var DefaultEngine = NewEngine()
