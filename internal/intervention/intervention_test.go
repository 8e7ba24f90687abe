package intervention_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"campaigner/internal/intervention"
	"campaigner/internal/schema"
)

func newFactory(t *testing.T) *intervention.Factory {
	t.Helper()
	reg, err := schema.Builtin()
	if err != nil {
		t.Fatalf("schema.Builtin: %v", err)
	}
	return intervention.NewFactory(reg)
}

func TestDrugs_OnePerName(t *testing.T) {
	f := newFactory(t)
	drugs, err := f.Drugs("Artemether", "Lumefantrine")
	if err != nil {
		t.Fatalf("Drugs: %v", err)
	}
	var got []string
	for _, d := range drugs {
		got = append(got, d.(*intervention.AntimalarialDrug).Drug)
	}
	if diff := cmp.Diff([]string{"Artemether", "Lumefantrine"}, got); diff != "" {
		t.Errorf("drugs mismatch (-want +got):\n%s", diff)
	}
	if _, err := f.Drugs(); !errors.Is(err, intervention.ErrInvalid) {
		t.Errorf("Drugs() with no names = %v, want ErrInvalid", err)
	}
}

func TestBroadcastToNodes_Radius(t *testing.T) {
	f := newFactory(t)
	s, err := f.BroadcastToNodes("Give_Drugs", 0, "")
	if err != nil {
		t.Fatalf("BroadcastToNodes: %v", err)
	}
	b := s.(*intervention.BroadcastToNodes)
	if b.MaxDistanceKm != 0 || b.Selection != intervention.DistanceOnly || !b.IncludeMyNode {
		t.Errorf("zero radius broadcast = %+v, want same-node DISTANCE_ONLY", b)
	}
	if _, err := f.BroadcastToNodes("Give_Drugs", -1, ""); !errors.Is(err, intervention.ErrInvalid) {
		t.Errorf("negative radius = %v, want ErrInvalid", err)
	}
	if _, err := f.BroadcastToNodes("Give_Drugs", 1, "EVERYWHERE"); !errors.Is(err, schema.ErrInvalidValue) {
		t.Errorf("unknown selection = %v, want schema.ErrInvalidValue", err)
	}
}

func TestDiagnostic_UnsupportedType(t *testing.T) {
	f := newFactory(t)
	_, err := f.Diagnostic(intervention.Test{Type: "MICROSCOPY"}, nil, nil)
	if !errors.Is(err, intervention.ErrUnsupportedDiagnostic) {
		t.Errorf("got %v, want ErrUnsupportedDiagnostic", err)
	}
}

func TestDelay_Validate(t *testing.T) {
	tests := []struct {
		name  string
		delay intervention.Delay
		ok    bool
	}{
		{"zero constant", intervention.Constant(0), true},
		{"positive constant", intervention.Constant(3), true},
		{"negative constant", intervention.Constant(-1), false},
		{"positive mean", intervention.Exponential(2), true},
		{"zero mean", intervention.Exponential(0), false},
		{"no kind", intervention.Delay{Value: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.delay.Validate()
			if tt.ok != (err == nil) {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestSignals_WalksNestedPayloads(t *testing.T) {
	f := newFactory(t)
	pos, _ := f.Broadcast("TestedPositive")
	tether, _ := f.BroadcastToNodes("Diagnostic_Survey_1", 2, intervention.DistanceOnly)
	neg, _ := f.Broadcast("TestedNegative")
	diag, err := f.Diagnostic(intervention.DefaultTest(), intervention.Bundle(pos, tether), neg)
	if err != nil {
		t.Fatalf("Diagnostic: %v", err)
	}
	delayed, err := f.Delayed(intervention.Constant(1), diag)
	if err != nil {
		t.Fatalf("Delayed: %v", err)
	}
	want := []string{"Diagnostic_Survey_1", "TestedNegative", "TestedPositive"}
	if diff := cmp.Diff(want, intervention.Signals(delayed)); diff != "" {
		t.Errorf("Signals mismatch (-want +got):\n%s", diff)
	}
	wantClasses := []string{
		"DelayedIntervention", "MalariaDiagnostic", "MultiInterventionDistributor",
		"BroadcastEvent", "BroadcastEventToOtherNodes", "BroadcastEvent",
	}
	if diff := cmp.Diff(wantClasses, intervention.Classes(delayed)); diff != "" {
		t.Errorf("Classes mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal_DelayedDrugs(t *testing.T) {
	f := newFactory(t)
	drugs, _ := f.Drugs("DHA", "Piperaquine")
	d, err := f.Delayed(intervention.Exponential(4), drugs...)
	if err != nil {
		t.Fatalf("Delayed: %v", err)
	}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["class"] != "DelayedIntervention" || got["Delay_Period_Distribution"] != "EXPONENTIAL_DISTRIBUTION" {
		t.Errorf("unexpected header fields: %v", got)
	}
	if got["Delay_Period_Exponential"] != 4.0 {
		t.Errorf("Delay_Period_Exponential = %v, want 4", got["Delay_Period_Exponential"])
	}
	items, _ := got["Actual_IndividualIntervention_Configs"].([]any)
	if len(items) != 2 {
		t.Fatalf("want 2 delayed payloads, got %d", len(items))
	}
	if items[1].(map[string]any)["Drug_Type"] != "Piperaquine" {
		t.Errorf("second payload = %v", items[1])
	}
}

func TestAdherent_CopiesAndDefaults(t *testing.T) {
	f := newFactory(t)
	cfg := intervention.AdherentDrug{
		Doses:                    [][]string{{"Sulfadoxine", "Pyrimethamine", "Amodiaquine"}, {"Amodiaquine"}, {"Amodiaquine"}},
		NonAdherenceOptions:      []string{"NEXT_UPDATE", "STOP"},
		NonAdherenceDistribution: []float64{0.5, 0.5},
	}
	s, err := f.Adherent(cfg)
	if err != nil {
		t.Fatalf("Adherent: %v", err)
	}
	cfg.Doses[0][0] = "Changed"
	got := s.(*intervention.AdherentDrug)
	if got.Doses[0][0] != "Sulfadoxine" {
		t.Error("Adherent must copy doses")
	}
	if got.DoseInterval != 1 || got.Cost != 1 {
		t.Errorf("defaults = interval %v cost %v, want 1 and 1", got.DoseInterval, got.Cost)
	}
	if diff := cmp.Diff([]string{"Sulfadoxine", "Pyrimethamine", "Amodiaquine"}, got.DrugNames()); diff != "" {
		t.Errorf("DrugNames mismatch (-want +got):\n%s", diff)
	}

	_, err = f.Adherent(intervention.AdherentDrug{Doses: [][]string{{"DHA"}}, NonAdherenceOptions: []string{"STOP"}})
	if !errors.Is(err, intervention.ErrInvalid) {
		t.Errorf("mismatched non-adherence lists = %v, want ErrInvalid", err)
	}
}

func TestBundle(t *testing.T) {
	f := newFactory(t)
	drugs, _ := f.Drugs("Artemether", "Lumefantrine")
	if _, ok := intervention.Bundle(drugs[0]).(*intervention.AntimalarialDrug); !ok {
		t.Error("Bundle of one item should return the item")
	}
	m, ok := intervention.Bundle(drugs...).(*intervention.Multi)
	if !ok || len(m.Items) != 2 {
		t.Fatalf("Bundle of two items = %T, want Multi with 2 items", m)
	}
}
