package campaign

import (
	"fmt"
	"math"
)

// Gender filters recipients by sex.
type Gender string

const (
	GenderAll    Gender = "All"
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParseGender resolves a gender name; the empty string means All.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case "", GenderAll:
		return GenderAll, nil
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", fmt.Errorf("%w: gender %q must be All, Male or Female", ErrInvalidConfig, s)
}

// Property keys and values used to keep recently treated individuals from
// being dosed again.
const (
	DrugStatusKey    = "DrugStatus"
	DrugStatusNone   = "None"
	DrugStatusRecent = "RecentDrug"
)

// AgeRange bounds recipients' age in years, inclusive of Min.
type AgeRange struct {
	Min float64
	Max float64
}

// Lifespan is the age range used when a composer needs explicit ages but
// the caller gave none.
var Lifespan = AgeRange{Min: 0, Max: 125}

// Targeting decides who receives an intervention when its event fires.
type Targeting struct {
	// Coverage is the probability an eligible individual is selected. It is
	// mutually exclusive with TargetCount; when both are nil, coverage is 1.
	Coverage *float64
	// TargetCount selects an exact number of individuals.
	TargetCount *int

	// Ages restricts recipients to an age range; nil targets everyone.
	Ages *AgeRange
	// Gender defaults to GenderAll.
	Gender Gender

	// PropertyRestrictions are OR-ed conjunctions of individual properties.
	PropertyRestrictions []map[string]string
	// NodeRestrictions are OR-ed conjunctions of node properties.
	NodeRestrictions []map[string]string
	// Disqualifying lists "key:value" properties that abort delivery.
	Disqualifying []string
}

// Cover returns a Targeting with coverage c and nothing else set.
func Cover(c float64) Targeting { return Targeting{Coverage: &c} }

// WithCoverage returns a copy of t with coverage c, clearing any target count.
func (t Targeting) WithCoverage(c float64) Targeting {
	out := t.Clone()
	out.Coverage = &c
	out.TargetCount = nil
	return out
}

// WithRestriction returns a copy of t where every property conjunction also
// requires key=value. A targeting with no conjunction gets one.
func (t Targeting) WithRestriction(key, value string) Targeting {
	out := t.Clone()
	if len(out.PropertyRestrictions) == 0 {
		out.PropertyRestrictions = []map[string]string{{key: value}}
		return out
	}
	for _, r := range out.PropertyRestrictions {
		r[key] = value
	}
	return out
}

// CoverageValue returns the effective coverage fraction.
func (t Targeting) CoverageValue() float64 {
	if t.Coverage == nil {
		return 1
	}
	return *t.Coverage
}

// Clone returns a deep copy of t.
func (t Targeting) Clone() Targeting {
	out := t
	if t.Coverage != nil {
		c := *t.Coverage
		out.Coverage = &c
	}
	if t.TargetCount != nil {
		n := *t.TargetCount
		out.TargetCount = &n
	}
	if t.Ages != nil {
		a := *t.Ages
		out.Ages = &a
	}
	out.PropertyRestrictions = cloneRestrictions(t.PropertyRestrictions)
	out.NodeRestrictions = cloneRestrictions(t.NodeRestrictions)
	out.Disqualifying = append([]string(nil), t.Disqualifying...)
	return out
}

// Validate checks mutual exclusivity and numeric ranges.
func (t Targeting) Validate() error {
	if t.Coverage != nil && t.TargetCount != nil {
		return fmt.Errorf("%w: coverage and target count are mutually exclusive", ErrInvalidConfig)
	}
	if t.Coverage != nil {
		if err := CheckFraction("coverage", *t.Coverage); err != nil {
			return err
		}
	}
	if t.TargetCount != nil && *t.TargetCount < 0 {
		return fmt.Errorf("%w: target count %d is negative", ErrOutOfRange, *t.TargetCount)
	}
	if t.Ages != nil {
		if t.Ages.Min < 0 || t.Ages.Max < t.Ages.Min || math.IsNaN(t.Ages.Min) || math.IsNaN(t.Ages.Max) {
			return fmt.Errorf("%w: age range [%v, %v]", ErrOutOfRange, t.Ages.Min, t.Ages.Max)
		}
	}
	if _, err := ParseGender(string(t.Gender)); err != nil {
		return err
	}
	return nil
}

// CheckFraction reports an ErrOutOfRange naming arg when v is outside [0,1].
func CheckFraction(arg string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %v must be in [0,1]", ErrOutOfRange, arg, v)
	}
	return nil
}

func (t Targeting) demographic() string {
	g := t.gender()
	switch {
	case t.Ages == nil && g == GenderAll:
		return "Everyone"
	case g == GenderAll:
		return "ExplicitAgeRanges"
	case t.Ages == nil:
		return "ExplicitGender"
	default:
		return "ExplicitAgeRangesAndGender"
	}
}

func (t Targeting) gender() Gender {
	if t.Gender == "" {
		return GenderAll
	}
	return t.Gender
}

// fields returns the engine parameters for t.
func (t Targeting) fields() map[string]any {
	m := map[string]any{
		"Target_Demographic":                t.demographic(),
		"Property_Restrictions_Within_Node": nonNilRestrictions(t.PropertyRestrictions),
		"Node_Property_Restrictions":        nonNilRestrictions(t.NodeRestrictions),
	}
	if t.TargetCount != nil {
		m["Individual_Selection_Type"] = "TARGET_NUM_INDIVIDUALS"
		m["Target_Num_Individuals"] = *t.TargetCount
	} else {
		m["Demographic_Coverage"] = t.CoverageValue()
	}
	if t.Ages != nil {
		m["Target_Age_Min"] = t.Ages.Min
		m["Target_Age_Max"] = t.Ages.Max
	}
	if g := t.gender(); g != GenderAll {
		m["Target_Gender"] = string(g)
	}
	if len(t.Disqualifying) > 0 {
		m["Disqualifying_Properties"] = t.Disqualifying
	}
	return m
}

func cloneRestrictions(in []map[string]string) []map[string]string {
	if in == nil {
		return nil
	}
	out := make([]map[string]string, len(in))
	for i, r := range in {
		c := make(map[string]string, len(r))
		for k, v := range r {
			c[k] = v
		}
		out[i] = c
	}
	return out
}

func nonNilRestrictions(in []map[string]string) []map[string]string {
	if in == nil {
		return []map[string]string{}
	}
	return in
}
