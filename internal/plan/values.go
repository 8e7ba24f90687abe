package plan

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"campaigner/internal/campaign"
)

// Radius is a broadcast radius in km. Plans may give the sentinel "hh"
// (household) for a same-node broadcast, which resolves to 0.
type Radius float64

func (r *Radius) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	return r.set(v)
}

func (r *Radius) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return r.set(v)
}

func (r *Radius) set(v any) error {
	if s, ok := v.(string); ok {
		if strings.EqualFold(s, "hh") {
			*r = 0
			return nil
		}
		return fmt.Errorf("%w: radius %q is neither a number nor \"hh\"", campaign.ErrInvalidConfig, s)
	}
	f, ok := number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("%w: radius %v must be a non-negative number", campaign.ErrOutOfRange, v)
	}
	*r = Radius(f)
	return nil
}

// TargetGroup is "Everyone" or an {agemin, agemax, gender} mapping.
type TargetGroup struct {
	Ages   *campaign.AgeRange
	Gender campaign.Gender
}

func (t *TargetGroup) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	return t.set(v)
}

func (t *TargetGroup) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return t.set(v)
}

func (t *TargetGroup) set(v any) error {
	switch g := v.(type) {
	case nil:
		*t = TargetGroup{}
		return nil
	case string:
		if !strings.EqualFold(g, "Everyone") {
			return fmt.Errorf("%w: target group %q must be Everyone or an age/gender mapping", campaign.ErrInvalidConfig, g)
		}
		*t = TargetGroup{}
		return nil
	case map[string]any:
		return t.setMap(g)
	}
	return fmt.Errorf("%w: target group of type %T", campaign.ErrInvalidConfig, v)
}

func (t *TargetGroup) setMap(m map[string]any) error {
	out := TargetGroup{}
	ages := campaign.Lifespan
	hasAges := false
	for k, v := range m {
		switch strings.ToLower(k) {
		case "agemin", "agemax":
			f, ok := number(v)
			if !ok {
				return fmt.Errorf("%w: target group %s %v is not a number", campaign.ErrInvalidConfig, k, v)
			}
			if strings.EqualFold(k, "agemin") {
				ages.Min = f
			} else {
				ages.Max = f
			}
			hasAges = true
		case "gender":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: target group gender %v is not a name", campaign.ErrInvalidConfig, v)
			}
			g, err := campaign.ParseGender(s)
			if err != nil {
				return err
			}
			out.Gender = g
		default:
			return fmt.Errorf("%w: target group has unknown key %q", campaign.ErrInvalidConfig, k)
		}
	}
	if hasAges {
		if ages.Min < 0 || ages.Max < ages.Min {
			return fmt.Errorf("%w: target group ages [%v, %v]", campaign.ErrOutOfRange, ages.Min, ages.Max)
		}
		out.Ages = &ages
	}
	*t = out
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
