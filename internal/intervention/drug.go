package intervention

// AntimalarialDrug administers one drug at the start of its course.
type AntimalarialDrug struct {
	Drug string
	Cost float64
}

func (*AntimalarialDrug) Class() string { return "AntimalarialDrug" }
func (*AntimalarialDrug) sealed()       {}

func (d *AntimalarialDrug) Params() map[string]any {
	return map[string]any{
		"Drug_Type":        d.Drug,
		"Cost_To_Consumer": d.Cost,
	}
}

func (d *AntimalarialDrug) MarshalJSON() ([]byte, error) {
	return encode(d.Class(), d.Params(), nil)
}

// AdherentDrug is a caller-configured drug course with explicit doses and an
// adherence model. It is the "custom drug configuration" alternative to a
// drug code.
type AdherentDrug struct {
	Doses                        [][]string     `yaml:"doses" json:"doses"`
	DoseInterval                 float64        `yaml:"dose_interval" json:"dose_interval"`
	Adherence                    map[string]any `yaml:"adherence,omitempty" json:"adherence,omitempty"`
	NonAdherenceOptions          []string       `yaml:"non_adherence_options,omitempty" json:"non_adherence_options,omitempty"`
	NonAdherenceDistribution     []float64      `yaml:"non_adherence_distribution,omitempty" json:"non_adherence_distribution,omitempty"`
	MaxDoseConsiderationDuration float64        `yaml:"max_dose_consideration_duration,omitempty" json:"max_dose_consideration_duration,omitempty"`
	TookDoseEvent                string         `yaml:"took_dose_event,omitempty" json:"took_dose_event,omitempty"`
	Cost                         float64        `yaml:"cost,omitempty" json:"cost,omitempty"`
}

func (*AdherentDrug) Class() string { return "AdherentDrug" }
func (*AdherentDrug) sealed()       {}

// DrugNames returns the distinct drugs across all doses in first-seen order.
func (d *AdherentDrug) DrugNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, dose := range d.Doses {
		for _, name := range dose {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func (d *AdherentDrug) Params() map[string]any {
	doses := make([][]string, len(d.Doses))
	for i, dose := range d.Doses {
		doses[i] = append([]string(nil), dose...)
	}
	p := map[string]any{
		"Doses":            doses,
		"Dose_Interval":    d.DoseInterval,
		"Cost_To_Consumer": d.Cost,
	}
	if d.Adherence != nil {
		p["Adherence_Config"] = d.Adherence
	}
	if len(d.NonAdherenceOptions) > 0 {
		p["Non_Adherence_Options"] = append([]string(nil), d.NonAdherenceOptions...)
		p["Non_Adherence_Distribution"] = append([]float64(nil), d.NonAdherenceDistribution...)
	}
	if d.MaxDoseConsiderationDuration > 0 {
		p["Max_Dose_Consideration_Duration"] = d.MaxDoseConsiderationDuration
	}
	if d.TookDoseEvent != "" {
		p["Took_Dose_Event"] = d.TookDoseEvent
	}
	return p
}

func (d *AdherentDrug) MarshalJSON() ([]byte, error) {
	return encode(d.Class(), d.Params(), nil)
}

// PropertyChange sets an individual property, optionally reverting it.
type PropertyChange struct {
	Key              string
	Value            string
	Revert           float64
	DailyProbability float64
	MaxDuration      float64
}

func (*PropertyChange) Class() string { return "PropertyValueChanger" }
func (*PropertyChange) sealed()       {}

func (p *PropertyChange) Params() map[string]any {
	return map[string]any{
		"Target_Property_Key":   p.Key,
		"Target_Property_Value": p.Value,
		"Revert":                p.Revert,
		"Daily_Probability":     p.DailyProbability,
		"Maximum_Duration":      p.MaxDuration,
	}
}

func (p *PropertyChange) MarshalJSON() ([]byte, error) {
	return encode(p.Class(), p.Params(), nil)
}
