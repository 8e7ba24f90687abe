// Package presets ships ready-made campaign plans.
package presets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"campaigner/internal/plan"
)

//go:embed plans/*.yaml
var plans embed.FS

// ErrUnknown is returned for a preset name that is not shipped.
var ErrUnknown = errors.New("presets: unknown preset")

// Preset describes one shipped plan.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Names returns the preset names, sorted.
func Names() []string {
	entries, _ := fs.ReadDir(plans, "plans")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// List returns every preset with its description, sorted by name.
func List() ([]Preset, error) {
	var out []Preset
	for _, name := range Names() {
		p, err := Load(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Preset{Name: name, Description: p.Description})
	}
	return out, nil
}

// Raw returns the YAML source of a preset.
func Raw(name string) ([]byte, error) {
	data, err := plans.ReadFile(path.Join("plans", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknown, name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Load parses a preset.
func Load(name string) (*plan.Plan, error) {
	data, err := Raw(name)
	if err != nil {
		return nil, err
	}
	p, err := plan.Load(data, ".yaml")
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	return p, nil
}
