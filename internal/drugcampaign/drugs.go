package drugcampaign

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
)

var drugCodes = map[string][]string{
	"AL":      {"Artemether", "Lumefantrine"},
	"ALP":     {"Artemether", "Lumefantrine", "Primaquine"},
	"ASAQ":    {"Artesunate", "Amodiaquine"},
	"DP":      {"DHA", "Piperaquine"},
	"DPP":     {"DHA", "Piperaquine", "Primaquine"},
	"PPQ":     {"Piperaquine"},
	"DHA_PQ":  {"DHA", "Primaquine"},
	"DHA":     {"DHA"},
	"PMQ":     {"Primaquine"},
	"DA":      {"DHA", "Abstract"},
	"CQ":      {"Chloroquine"},
	"SP":      {"Sulfadoxine", "Pyrimethamine"},
	"SPP":     {"Sulfadoxine", "Pyrimethamine", "Primaquine"},
	"SPA":     {"Sulfadoxine", "Pyrimethamine", "Amodiaquine"},
	"Vehicle": {"Vehicle"},
}

// DrugCodes returns every known drug code, sorted.
func DrugCodes() []string {
	return slices.Sorted(maps.Keys(drugCodes))
}

// DrugsFor returns the drugs a code stands for.
func DrugsFor(code string) ([]string, error) {
	drugs, ok := drugCodes[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDrug, code)
	}
	return slices.Clone(drugs), nil
}

// Dispensing describes the drug actions given to one recipient.
type Dispensing struct {
	// Code and Custom are mutually exclusive; exactly one is required.
	Code   string
	Custom []intervention.AdherentDrug

	// IneligibleDays, when positive, marks recipients with
	// DrugStatus:RecentDrug for that many days.
	IneligibleDays float64
	// Broadcast, when set, is raised after the drugs are given.
	Broadcast string
}

// Validate checks the drug source is unambiguous and the cooldown is sane.
func (d Dispensing) Validate() error {
	switch {
	case d.Code != "" && len(d.Custom) > 0:
		return fmt.Errorf("%w: drug code %q with %d custom configurations", ErrAmbiguousDrugs, d.Code, len(d.Custom))
	case d.Code == "" && len(d.Custom) == 0:
		return ErrNoDrugs
	}
	if d.IneligibleDays < 0 || math.IsNaN(d.IneligibleDays) {
		return fmt.Errorf("%w: drug ineligibility %v days is negative", campaign.ErrOutOfRange, d.IneligibleDays)
	}
	return nil
}

// Restricts reports whether recipients must be filtered to DrugStatus:None.
func (d Dispensing) Restricts() bool { return d.IneligibleDays > 0 }

// DrugNames returns the distinct drugs dispensed.
func (d Dispensing) DrugNames() []string {
	if d.Code != "" {
		drugs, _ := DrugsFor(d.Code)
		return drugs
	}
	var out []string
	for i := range d.Custom {
		for _, name := range d.Custom[i].DrugNames() {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// Dispense builds the actions for d: the drugs in order, then the
// ineligibility marker, then the completion broadcast.
func Dispense(f *intervention.Factory, d Dispensing) ([]intervention.Spec, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var actions []intervention.Spec
	if d.Code != "" {
		names, err := DrugsFor(d.Code)
		if err != nil {
			return nil, err
		}
		drugs, err := f.Drugs(names...)
		if err != nil {
			return nil, err
		}
		actions = drugs
	} else {
		for i, cfg := range d.Custom {
			drug, err := f.Adherent(cfg)
			if err != nil {
				return nil, fmt.Errorf("custom drug %d: %w", i, err)
			}
			actions = append(actions, drug)
		}
	}
	if d.Restricts() {
		mark, err := f.PropertyChange(campaign.DrugStatusKey, campaign.DrugStatusRecent, d.IneligibleDays)
		if err != nil {
			return nil, err
		}
		actions = append(actions, mark)
	}
	if d.Broadcast != "" {
		b, err := f.Broadcast(d.Broadcast)
		if err != nil {
			return nil, err
		}
		actions = append(actions, b)
	}
	return actions, nil
}
