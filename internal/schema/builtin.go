package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed classes.yaml
var classesYAML []byte

var (
	builtinOnce sync.Once
	builtin     *Registry
	builtinErr  error
)

// Builtin returns the embedded description of every class the composers
// emit. The registry is parsed once and shared; callers must not mutate it.
func Builtin() (*Registry, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = ParseYAML(classesYAML)
	})
	return builtin, builtinErr
}

// ParseYAML reads a class description document of the form
// "ClassName: {Param: {type, default, min, max, values}}".
func ParseYAML(data []byte) (*Registry, error) {
	var raw map[string]map[string]Param
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse class yaml: %w", err)
	}
	classes := make([]*Class, 0, len(raw))
	for name, params := range raw {
		for pname, p := range params {
			if p.Type == "" {
				return nil, fmt.Errorf("class %s parameter %s: type is required", name, pname)
			}
		}
		classes = append(classes, &Class{Name: name, Params: params})
	}
	return NewRegistry(classes...), nil
}
