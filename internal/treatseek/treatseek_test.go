package treatseek

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
)

func newComposer(t *testing.T) *Composer {
	t.Helper()
	f, err := intervention.NewBuiltinFactory()
	if err != nil {
		t.Fatalf("NewBuiltinFactory: %v", err)
	}
	return NewComposer(f).WithLogger(logging.Discard())
}

func TestCompose_CoverageIsProduct(t *testing.T) {
	c := newComposer(t)
	values := []float64{0, 0.1, 0.3, 0.5, 0.7, 0.95, 1}
	for _, cov := range values {
		for _, seek := range values {
			events, err := c.Compose(Params{Targets: []Target{{Trigger: campaign.NewClinicalCase, Coverage: cov, Seek: seek}}})
			if err != nil {
				t.Fatalf("Compose(%v, %v): %v", cov, seek, err)
			}
			if got := events[0].Coverage(); got != cov*seek {
				t.Errorf("coverage(%v, %v) = %v, want %v", cov, seek, got, cov*seek)
			}
		}
	}
}

func TestCompose_Defaults(t *testing.T) {
	c := newComposer(t)
	events, err := c.Compose(Params{})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("want one event per default target, got %d", len(events))
	}
	for i, ev := range events {
		tg := ev.Coordinator.Targeting
		if diff := cmp.Diff(&campaign.Lifespan, tg.Ages); diff != "" {
			t.Errorf("event %d ages mismatch (-want +got):\n%s", i, diff)
		}
		if tg.Gender != campaign.GenderAll {
			t.Errorf("event %d gender = %q", i, tg.Gender)
		}
		if ev.Coordinator.Listen.Duration != campaign.NeverExpires {
			t.Errorf("event %d duration = %v", i, ev.Coordinator.Listen.Duration)
		}
		want := []string{"MultiInterventionDistributor", "AntimalarialDrug", "AntimalarialDrug", "BroadcastEvent"}
		if diff := cmp.Diff(want, intervention.Classes(ev.Coordinator.Intervention)); diff != "" {
			t.Errorf("event %d actions mismatch (-want +got):\n%s", i, diff)
		}
		if diff := cmp.Diff([]string{campaign.ReceivedTreatment}, ev.Signals()); diff != "" {
			t.Errorf("event %d completion broadcast mismatch (-want +got):\n%s", i, diff)
		}
	}
	if diff := cmp.Diff([]string{campaign.NewSevereCase}, events[1].Triggers()); diff != "" {
		t.Errorf("second target trigger mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_Delay(t *testing.T) {
	c := newComposer(t)
	events, err := c.Compose(Params{Targets: []Target{
		{Trigger: campaign.NewClinicalCase, Coverage: 1, Seek: 1, Rate: 0.25},
		{Trigger: campaign.NewSevereCase, Coverage: 1, Seek: 1, Rate: 0},
	}})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	want := intervention.Exponential(4)
	if diff := cmp.Diff(&want, events[0].Coordinator.Listen.Delay); diff != "" {
		t.Errorf("delay mismatch (-want +got):\n%s", diff)
	}
	if events[1].Coordinator.Listen.Delay != nil {
		t.Errorf("rate 0 must not delay, got %+v", events[1].Coordinator.Listen.Delay)
	}
}

func TestCompose_TargetAgesOverride(t *testing.T) {
	c := newComposer(t)
	events, err := c.Compose(Params{
		Ages:   &campaign.AgeRange{Min: 0, Max: 5},
		Gender: campaign.GenderFemale,
		Targets: []Target{
			{Trigger: campaign.NewClinicalCase, Coverage: 0.8, Seek: 0.5, Ages: &campaign.AgeRange{Min: 15, Max: 70}},
			{Trigger: campaign.NewSevereCase, Coverage: 0.8, Seek: 0.5},
		},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := *events[0].Coordinator.Targeting.Ages; got != (campaign.AgeRange{Min: 15, Max: 70}) {
		t.Errorf("per-target ages = %+v", got)
	}
	if got := *events[1].Coordinator.Targeting.Ages; got != (campaign.AgeRange{Min: 0, Max: 5}) {
		t.Errorf("shared ages = %+v", got)
	}
	if events[1].Coordinator.Targeting.Gender != campaign.GenderFemale {
		t.Errorf("gender = %q", events[1].Coordinator.Targeting.Gender)
	}
}

func TestAdd_ErrorsLeaveDocumentUntouched(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want error
	}{
		{"seek above one", Params{Targets: []Target{{Trigger: "X", Coverage: 1, Seek: 1.5}}}, campaign.ErrOutOfRange},
		{"negative coverage", Params{Targets: []Target{{Trigger: "X", Coverage: -0.2, Seek: 1}}}, campaign.ErrOutOfRange},
		{"negative rate", Params{Targets: []Target{{Trigger: "X", Coverage: 1, Seek: 1, Rate: -1}}}, campaign.ErrOutOfRange},
		{"no trigger", Params{Targets: []Target{{Coverage: 1, Seek: 1}}}, campaign.ErrInvalidConfig},
		{"bad gender", Params{Gender: "Unknown"}, campaign.ErrInvalidConfig},
		{"bad drug code", Params{DrugCode: "QQ"}, campaign.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := campaign.NewDocument()
			if _, err := newComposer(t).Add(doc, tt.p); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if doc.Len() != 0 {
				t.Error("failed call appended events")
			}
		})
	}
}

func TestAdd_Ineligibility(t *testing.T) {
	doc := campaign.NewDocument()
	events, err := newComposer(t).Add(doc, Params{DrugCode: "DP", IneligibleDays: 30, Broadcast: "Got_Drugs"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if doc.Len() != len(events) {
		t.Errorf("document holds %d events, Add returned %d", doc.Len(), len(events))
	}
	ev := events[0]
	want := []string{"MultiInterventionDistributor", "AntimalarialDrug", "AntimalarialDrug", "PropertyValueChanger", "BroadcastEvent"}
	if diff := cmp.Diff(want, intervention.Classes(ev.Coordinator.Intervention)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]map[string]string{{"DrugStatus": "None"}}, ev.Coordinator.Targeting.PropertyRestrictions); diff != "" {
		t.Errorf("restrictions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Got_Drugs"}, doc.CustomEvents()); diff != "" {
		t.Errorf("custom events mismatch (-want +got):\n%s", diff)
	}
}
