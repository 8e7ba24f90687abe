package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// interventionGroups are the idmTypes sections that hold intervention classes.
var interventionGroups = []string{
	"idmType:IndividualIntervention",
	"idmType:NodeIntervention",
}

// LoadEMOD reads an engine-generated schema.json from path.
func LoadEMOD(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseEMOD(data)
}

// ParseEMOD extracts intervention classes from the "idmTypes" section of an
// engine schema document. Parameters whose type is not a scalar the module
// understands are kept as TypeObject so their names still validate.
func ParseEMOD(data []byte) (*Registry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse schema: invalid json")
	}
	types := gjson.GetBytes(data, "idmTypes")
	if !types.Exists() {
		return nil, fmt.Errorf("parse schema: missing idmTypes")
	}

	var classes []*Class
	for _, group := range interventionGroups {
		types.Get(gjson.Escape(group)).ForEach(func(name, def gjson.Result) bool {
			if !def.IsObject() {
				return true
			}
			classes = append(classes, classFromEMOD(name.String(), def))
			return true
		})
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("parse schema: no intervention classes under idmTypes")
	}
	return NewRegistry(classes...), nil
}

func classFromEMOD(name string, def gjson.Result) *Class {
	c := &Class{Name: name, Params: make(map[string]Param)}
	def.ForEach(func(key, val gjson.Result) bool {
		if !val.IsObject() || !val.Get("type").Exists() {
			return true
		}
		c.Params[key.String()] = paramFromEMOD(val)
		return true
	})
	return c
}

func paramFromEMOD(val gjson.Result) Param {
	p := Param{Type: emodType(val.Get("type").String())}
	if d := val.Get("default"); d.Exists() {
		p.Default = d.Value()
	}
	if m := val.Get("min"); m.Exists() && m.Type == gjson.Number {
		f := m.Float()
		p.Min = &f
	}
	if m := val.Get("max"); m.Exists() && m.Type == gjson.Number {
		f := m.Float()
		p.Max = &f
	}
	if p.Type == TypeEnum {
		for _, v := range val.Get("enum").Array() {
			p.Values = append(p.Values, v.String())
		}
		if len(p.Values) == 0 {
			p.Type = TypeString
		}
	}
	return p
}

func emodType(t string) ParamType {
	switch {
	case t == "float":
		return TypeFloat
	case t == "integer":
		return TypeInteger
	case t == "bool":
		return TypeBool
	case t == "enum":
		return TypeEnum
	case strings.HasSuffix(t, "String") && !strings.HasPrefix(t, "Vector"):
		return TypeString
	default:
		return TypeObject
	}
}
