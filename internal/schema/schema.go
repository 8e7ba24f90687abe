// Package schema describes the parameters each intervention class accepts.
//
// The campaign composers never interpret a schema themselves; they ask a
// Provider for a Class and let it validate or default a parameter map. The
// module ships a built-in description of every class it emits (Builtin) and
// can read the engine's own schema.json (LoadEMOD) when one is available.
package schema

import (
	"fmt"
	"math"
	"sort"
)

// ParamType is the value kind of a class parameter.
type ParamType string

const (
	TypeFloat   ParamType = "float"
	TypeInteger ParamType = "integer"
	TypeBool    ParamType = "bool"
	TypeString  ParamType = "string"
	TypeEnum    ParamType = "enum"
	TypeObject  ParamType = "object" // nested configs and lists; not checked
)

// Param declares one parameter of a class.
type Param struct {
	Type    ParamType `yaml:"type"`
	Default any       `yaml:"default,omitempty"`
	Min     *float64  `yaml:"min,omitempty"`
	Max     *float64  `yaml:"max,omitempty"`
	Values  []string  `yaml:"values,omitempty"`
}

// Class is the parameter set of one intervention class.
type Class struct {
	Name   string
	Params map[string]Param
}

// Provider resolves class definitions by name.
type Provider interface {
	Class(name string) (*Class, error)
}

// Registry is an in-memory Provider.
type Registry struct {
	classes map[string]*Class
}

// NewRegistry returns a Registry holding the given classes.
func NewRegistry(classes ...*Class) *Registry {
	r := &Registry{classes: make(map[string]*Class, len(classes))}
	for _, c := range classes {
		r.classes[c.Name] = c
	}
	return r
}

// Class implements Provider.
func (r *Registry) Class(name string) (*Class, error) {
	c, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	return c, nil
}

// Names returns every class name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.classes))
	for n := range r.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Defaults returns a fresh, default-initialized parameter map. Parameters
// without a declared default are omitted.
func (c *Class) Defaults() map[string]any {
	out := make(map[string]any, len(c.Params))
	for name, p := range c.Params {
		if p.Default != nil {
			out[name] = p.Default
		}
	}
	return out
}

// Validate checks every entry of params against the class definition.
// Keys are visited in sorted order so the first reported error is stable.
func (c *Class) Validate(params map[string]any) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p, ok := c.Params[k]
		if !ok {
			return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParam, c.Name, k)
		}
		if err := p.check(params[k]); err != nil {
			return fmt.Errorf("%s.%s: %w", c.Name, k, err)
		}
	}
	return nil
}

func (p Param) check(v any) error {
	switch p.Type {
	case TypeFloat, TypeInteger:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("%w: want %s, got %T", ErrInvalidValue, p.Type, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %v is not finite", ErrInvalidValue, f)
		}
		if p.Type == TypeInteger && f != math.Trunc(f) {
			return fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, f)
		}
		if p.Min != nil && f < *p.Min {
			return fmt.Errorf("%w: %v below minimum %v", ErrInvalidValue, f, *p.Min)
		}
		if p.Max != nil && f > *p.Max {
			return fmt.Errorf("%w: %v above maximum %v", ErrInvalidValue, f, *p.Max)
		}
	case TypeBool:
		switch b := v.(type) {
		case bool:
		default:
			f, ok := toFloat(b)
			if !ok || (f != 0 && f != 1) {
				return fmt.Errorf("%w: want bool or 0/1, got %v", ErrInvalidValue, v)
			}
		}
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: want string, got %T", ErrInvalidValue, v)
		}
	case TypeEnum:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: want string, got %T", ErrInvalidValue, v)
		}
		for _, allowed := range p.Values {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("%w: %q not in %v", ErrInvalidValue, s, p.Values)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}
