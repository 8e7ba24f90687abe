package drugcampaign

import (
	"fmt"
	"math"
	"strings"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
)

// Type selects a cascade topology.
type Type string

const (
	MDA    Type = "MDA"
	SMC    Type = "SMC"
	MSAT   Type = "MSAT"
	MTAT   Type = "MTAT"
	FMDA   Type = "fMDA"
	RFMSAT Type = "rfMSAT"
	RFMDA  Type = "rfMDA"
)

var types = []Type{MDA, SMC, MSAT, MTAT, FMDA, RFMSAT, RFMDA}

// Types returns every supported cascade type.
func Types() []Type { return append([]Type(nil), types...) }

// ParseType resolves a cascade type name, ignoring case.
func ParseType(s string) (Type, error) {
	for _, t := range types {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// SMCAges is the age target of seasonal malaria chemoprevention when the
// request gives none.
var SMCAges = campaign.AgeRange{Min: 0.25, Max: 5}

// Request is one call of the dispatcher. Start from NewRequest: its zero
// value treats nobody.
type Request struct {
	Type string

	// DrugCode and Custom are mutually exclusive; exactly one is required.
	DrugCode string
	Custom   []intervention.AdherentDrug

	StartDays   []int
	Coverage    float64
	Repetitions int
	Interval    int

	Nodes                campaign.NodeSet
	Ages                 *campaign.AgeRange
	Gender               campaign.Gender
	PropertyRestrictions []map[string]string

	// Triggers switch the cascade from scheduled to triggered. TriggerDelay
	// postpones the first response; repetitions are relayed Interval days
	// apart.
	Triggers       []string
	TriggerDelay   float64
	Duration       float64
	TreatmentDelay float64

	Test intervention.Test

	// Radius and Selection shape the cross-node broadcasts of the focal
	// and reactive types. A zero radius reaches the sender's node only.
	Radius          float64
	Selection       intervention.NodeSelection
	TriggerCoverage float64
	Snowball        int
	Blackout        float64

	IneligibleDays      float64
	ReceivingDrugsEvent string
}

// NewRequest returns a request for typ with drug code and start days and
// every other field at its default: full coverage, one repetition 60 days
// apart, listening for ever, the default blood-smear test, trigger coverage
// 1, a same-node broadcast radius and no snowball.
func NewRequest(typ, drugCode string, startDays ...int) Request {
	return Request{
		Type:            typ,
		DrugCode:        drugCode,
		StartDays:       append([]int(nil), startDays...),
		Coverage:        1,
		Repetitions:     1,
		Interval:        60,
		Duration:        campaign.NeverExpires,
		Test:            intervention.DefaultTest(),
		TriggerCoverage: 1,
		Selection:       intervention.DistanceOnly,
		Blackout:        1,
	}
}

func (r Request) dispensing() Dispensing {
	return Dispensing{
		Code:           r.DrugCode,
		Custom:         r.Custom,
		IneligibleDays: r.IneligibleDays,
		Broadcast:      r.ReceivingDrugsEvent,
	}
}

// targeting is the recipient filter of the first event of a cascade.
func (r Request) targeting(t Type, coverage float64) campaign.Targeting {
	out := campaign.Targeting{
		Coverage:             &coverage,
		Ages:                 r.Ages,
		Gender:               r.Gender,
		PropertyRestrictions: r.PropertyRestrictions,
	}
	if t == SMC && out.Ages == nil {
		ages := SMCAges
		out.Ages = &ages
	}
	return out.Clone()
}

func (r Request) triggered() bool { return len(r.Triggers) > 0 }

// firstDay is the start day of a triggered cascade.
func (r Request) firstDay() int {
	if len(r.StartDays) == 0 {
		return 0
	}
	return r.StartDays[0]
}

func (r Request) schedule() campaign.Schedule {
	return campaign.Schedule{Repetitions: r.Repetitions, Interval: r.Interval}
}

func (r Request) validate() error {
	if err := r.dispensing().Validate(); err != nil {
		return err
	}
	if !r.triggered() && len(r.StartDays) == 0 {
		return fmt.Errorf("%w: start days or trigger conditions are required", campaign.ErrInvalidConfig)
	}
	for _, d := range r.StartDays {
		if d < 0 {
			return fmt.Errorf("%w: start day %d is negative", campaign.ErrOutOfRange, d)
		}
	}
	if r.Repetitions < 1 {
		return fmt.Errorf("%w: repetitions %d must be at least 1", campaign.ErrOutOfRange, r.Repetitions)
	}
	if err := campaign.CheckFraction("coverage", r.Coverage); err != nil {
		return err
	}
	if err := campaign.CheckFraction("trigger coverage", r.TriggerCoverage); err != nil {
		return err
	}
	if math.IsNaN(r.Radius) || math.IsInf(r.Radius, 0) || r.Radius < 0 {
		return fmt.Errorf("%w: radius %v must be a non-negative number", campaign.ErrOutOfRange, r.Radius)
	}
	if r.Snowball < 0 {
		return fmt.Errorf("%w: snowball depth %d is negative", campaign.ErrOutOfRange, r.Snowball)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"trigger delay", r.TriggerDelay},
		{"treatment delay", r.TreatmentDelay},
		{"blackout", r.Blackout},
	} {
		if f.v < 0 || math.IsNaN(f.v) {
			return fmt.Errorf("%w: %s %v is negative", campaign.ErrOutOfRange, f.name, f.v)
		}
	}
	if r.Duration != campaign.NeverExpires && (r.Duration < 0 || math.IsNaN(r.Duration)) {
		return fmt.Errorf("%w: listening duration %v must be -1 or non-negative", campaign.ErrOutOfRange, r.Duration)
	}
	return nil
}

// Descriptor summarizes a composed cascade for the caller's bookkeeping.
type Descriptor struct {
	Type            Type     `json:"type"`
	Coverage        float64  `json:"coverage"`
	TriggerCoverage float64  `json:"trigger_coverage,omitempty"`
	Drugs           []string `json:"drugs,omitempty"`
	Events          int      `json:"events"`
	Tethers         []string `json:"tethers,omitempty"`
}
