// Package plan loads campaign plan files and builds them into campaign
// documents through the composers.
package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"campaigner/internal/campaign"
	"campaigner/internal/drugcampaign"
	"campaigner/internal/intervention"
)

// Plan is one campaign document's worth of entries.
type Plan struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Seed fixes tether names; 0 leaves the choice to the builder.
	Seed    uint64  `yaml:"seed,omitempty" json:"seed,omitempty"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

// Entry holds exactly one of its fields.
type Entry struct {
	Drug             *DrugEntry `yaml:"drug,omitempty" json:"drug,omitempty"`
	TreatmentSeeking *SeekEntry `yaml:"treatment_seeking,omitempty" json:"treatment_seeking,omitempty"`
	Scheduled        *DistEntry `yaml:"scheduled,omitempty" json:"scheduled,omitempty"`
	Triggered        *DistEntry `yaml:"triggered,omitempty" json:"triggered,omitempty"`
}

// Kind names the set field, or "" when zero or several are set.
func (e Entry) Kind() string {
	kind, n := "", 0
	if e.Drug != nil {
		kind, n = "drug", n+1
	}
	if e.TreatmentSeeking != nil {
		kind, n = "treatment_seeking", n+1
	}
	if e.Scheduled != nil {
		kind, n = "scheduled", n+1
	}
	if e.Triggered != nil {
		kind, n = "triggered", n+1
	}
	if n != 1 {
		return ""
	}
	return kind
}

// DrugEntry is a drug cascade of one of the dispatcher's types. Omitted
// fields take drugcampaign.NewRequest's defaults.
type DrugEntry struct {
	Type                 string                      `yaml:"type" json:"type"`
	DrugCode             string                      `yaml:"drug_code,omitempty" json:"drug_code,omitempty"`
	Custom               []intervention.AdherentDrug `yaml:"custom_drugs,omitempty" json:"custom_drugs,omitempty"`
	StartDays            []int                       `yaml:"start_days,omitempty" json:"start_days,omitempty"`
	Coverage             float64                     `yaml:"coverage" json:"coverage"`
	Repetitions          int                         `yaml:"repetitions" json:"repetitions"`
	Interval             int                         `yaml:"interval" json:"interval"`
	Nodes                []int                       `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	TargetGroup          TargetGroup                 `yaml:"target_group" json:"target_group"`
	PropertyRestrictions []map[string]string         `yaml:"property_restrictions,omitempty" json:"property_restrictions,omitempty"`
	Triggers             []string                    `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	TriggerDelay         float64                     `yaml:"trigger_delay" json:"trigger_delay"`
	Duration             float64                     `yaml:"listening_duration" json:"listening_duration"`
	TreatmentDelay       float64                     `yaml:"treatment_delay" json:"treatment_delay"`
	Test                 intervention.Test           `yaml:"test" json:"test"`
	Radius               Radius                      `yaml:"radius" json:"radius"`
	Selection            intervention.NodeSelection  `yaml:"node_selection" json:"node_selection"`
	TriggerCoverage      float64                     `yaml:"trigger_coverage" json:"trigger_coverage"`
	Snowball             int                         `yaml:"snowball" json:"snowball"`
	Blackout             float64                     `yaml:"blackout" json:"blackout"`
	IneligibleDays       float64                     `yaml:"drug_ineligibility_days" json:"drug_ineligibility_days"`
	ReceivingDrugsEvent  string                      `yaml:"receiving_drugs_event,omitempty" json:"receiving_drugs_event,omitempty"`
}

func defaultDrugEntry() DrugEntry {
	r := drugcampaign.NewRequest("", "")
	return DrugEntry{
		Coverage:        r.Coverage,
		Repetitions:     r.Repetitions,
		Interval:        r.Interval,
		Duration:        r.Duration,
		Test:            r.Test,
		Selection:       r.Selection,
		TriggerCoverage: r.TriggerCoverage,
		Blackout:        r.Blackout,
	}
}

func (e *DrugEntry) UnmarshalYAML(n *yaml.Node) error {
	type raw DrugEntry
	r := raw(defaultDrugEntry())
	if err := n.Decode(&r); err != nil {
		return err
	}
	*e = DrugEntry(r)
	return nil
}

func (e *DrugEntry) UnmarshalJSON(b []byte) error {
	type raw DrugEntry
	r := raw(defaultDrugEntry())
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*e = DrugEntry(r)
	return nil
}

// Request converts the entry into a dispatcher request.
func (e DrugEntry) Request() drugcampaign.Request {
	r := drugcampaign.NewRequest(e.Type, e.DrugCode, e.StartDays...)
	r.Custom = e.Custom
	r.Coverage = e.Coverage
	r.Repetitions = e.Repetitions
	r.Interval = e.Interval
	r.Nodes = nodeSet(e.Nodes)
	r.Ages = e.TargetGroup.Ages
	r.Gender = e.TargetGroup.Gender
	r.PropertyRestrictions = e.PropertyRestrictions
	r.Triggers = e.Triggers
	r.TriggerDelay = e.TriggerDelay
	r.Duration = e.Duration
	r.TreatmentDelay = e.TreatmentDelay
	r.Test = e.Test
	r.Radius = float64(e.Radius)
	r.Selection = e.Selection
	r.TriggerCoverage = e.TriggerCoverage
	r.Snowball = e.Snowball
	r.Blackout = e.Blackout
	r.IneligibleDays = e.IneligibleDays
	r.ReceivingDrugsEvent = e.ReceivingDrugsEvent
	return r
}

// SeekEntry is treatment-seeking behavior. Omitted targets take
// treatseek.DefaultTargets.
type SeekEntry struct {
	Targets              []SeekTarget                `yaml:"targets,omitempty" json:"targets,omitempty"`
	DrugCode             string                      `yaml:"drug_code,omitempty" json:"drug_code,omitempty"`
	Custom               []intervention.AdherentDrug `yaml:"custom_drugs,omitempty" json:"custom_drugs,omitempty"`
	StartDay             int                         `yaml:"start_day" json:"start_day"`
	Duration             float64                     `yaml:"duration" json:"duration"`
	Nodes                []int                       `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	TargetGroup          TargetGroup                 `yaml:"target_group" json:"target_group"`
	PropertyRestrictions []map[string]string         `yaml:"property_restrictions,omitempty" json:"property_restrictions,omitempty"`
	Broadcast            string                      `yaml:"broadcast_event,omitempty" json:"broadcast_event,omitempty"`
	IneligibleDays       float64                     `yaml:"drug_ineligibility_days" json:"drug_ineligibility_days"`
}

// SeekTarget is one care-seeking pathway. Coverage and seek default to 1.
type SeekTarget struct {
	Trigger  string   `yaml:"trigger" json:"trigger"`
	Coverage float64  `yaml:"coverage" json:"coverage"`
	Seek     float64  `yaml:"seek" json:"seek"`
	Rate     float64  `yaml:"rate" json:"rate"`
	AgeMin   *float64 `yaml:"agemin,omitempty" json:"agemin,omitempty"`
	AgeMax   *float64 `yaml:"agemax,omitempty" json:"agemax,omitempty"`
}

func (t *SeekTarget) UnmarshalYAML(n *yaml.Node) error {
	type raw SeekTarget
	r := raw{Coverage: 1, Seek: 1}
	if err := n.Decode(&r); err != nil {
		return err
	}
	*t = SeekTarget(r)
	return nil
}

func (t *SeekTarget) UnmarshalJSON(b []byte) error {
	type raw SeekTarget
	r := raw{Coverage: 1, Seek: 1}
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*t = SeekTarget(r)
	return nil
}

// ages resolves the pathway's own age range, or nil when it sets none.
func (t SeekTarget) ages() (*campaign.AgeRange, error) {
	if t.AgeMin == nil && t.AgeMax == nil {
		return nil, nil
	}
	out := campaign.Lifespan
	if t.AgeMin != nil {
		out.Min = *t.AgeMin
	}
	if t.AgeMax != nil {
		out.Max = *t.AgeMax
	}
	if out.Min < 0 || out.Max < out.Min {
		return nil, fmt.Errorf("%w: target %s ages [%v, %v]", campaign.ErrOutOfRange, t.Trigger, out.Min, out.Max)
	}
	return &out, nil
}

// DistEntry delivers bednets, spraying, drugs or a broadcast on a schedule
// or on triggers.
type DistEntry struct {
	StartDay             int                        `yaml:"start_day" json:"start_day"`
	Repetitions          int                        `yaml:"repetitions" json:"repetitions"`
	Interval             int                        `yaml:"interval" json:"interval"`
	Nodes                []int                      `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	Coverage             float64                    `yaml:"coverage" json:"coverage"`
	TargetCount          *int                       `yaml:"target_count,omitempty" json:"target_count,omitempty"`
	TargetGroup          TargetGroup                `yaml:"target_group" json:"target_group"`
	PropertyRestrictions []map[string]string        `yaml:"property_restrictions,omitempty" json:"property_restrictions,omitempty"`
	Triggers             []string                   `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Delay                float64                    `yaml:"delay" json:"delay"`
	Duration             float64                    `yaml:"listening_duration" json:"listening_duration"`
	Bednet               *intervention.SimpleBednet `yaml:"bednet,omitempty" json:"bednet,omitempty"`
	IRS                  *intervention.IRSHousing   `yaml:"irs,omitempty" json:"irs,omitempty"`
	DrugCode             string                     `yaml:"drug_code,omitempty" json:"drug_code,omitempty"`
	Broadcast            string                     `yaml:"broadcast_event,omitempty" json:"broadcast_event,omitempty"`
}

func defaultDistEntry() DistEntry {
	return DistEntry{Repetitions: 1, Interval: 365, Coverage: 1, Duration: campaign.NeverExpires}
}

func (e *DistEntry) UnmarshalYAML(n *yaml.Node) error {
	type raw DistEntry
	r := raw(defaultDistEntry())
	if err := n.Decode(&r); err != nil {
		return err
	}
	*e = DistEntry(r)
	return nil
}

func (e *DistEntry) UnmarshalJSON(b []byte) error {
	type raw DistEntry
	r := raw(defaultDistEntry())
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*e = DistEntry(r)
	return nil
}

func nodeSet(ids []int) campaign.NodeSet {
	if len(ids) == 0 {
		return campaign.AllNodes()
	}
	return campaign.Nodes(ids...)
}

// LoadFromPath reads a plan file; the extension picks the format.
func LoadFromPath(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses a plan. ext is ".yaml", ".yml" or ".json"; any other value
// sniffs the content, treating a leading '{' as JSON.
func Load(data []byte, ext string) (*Plan, error) {
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext != ".yaml" && ext != ".json" {
		ext = ".yaml"
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			ext = ".json"
		}
	}
	var p Plan
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse plan json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse plan yaml: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the plan's shape; composers check the values.
func (p *Plan) Validate() error {
	if len(p.Entries) == 0 {
		return fmt.Errorf("%w: plan %q has no entries", campaign.ErrInvalidConfig, p.Name)
	}
	for i, e := range p.Entries {
		if e.Kind() == "" {
			return fmt.Errorf("%w: entry %d must set exactly one of drug, treatment_seeking, scheduled, triggered", campaign.ErrInvalidConfig, i)
		}
		if e.Scheduled != nil && len(e.Scheduled.Triggers) > 0 {
			return fmt.Errorf("%w: scheduled entry %d lists triggers", campaign.ErrInvalidConfig, i)
		}
		if e.Triggered != nil && len(e.Triggered.Triggers) == 0 {
			return fmt.Errorf("%w: triggered entry %d lists no triggers", campaign.ErrInvalidConfig, i)
		}
	}
	return nil
}
