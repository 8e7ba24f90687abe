package cascade

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
)

func relay(t *testing.T, listen, emit string) campaign.Event {
	t.Helper()
	ev, err := campaign.NewTriggered(1, campaign.Listen{Triggers: []string{listen}, Duration: campaign.NeverExpires},
		campaign.AllNodes(), campaign.Cover(1), &intervention.BroadcastEvent{Event: emit})
	if err != nil {
		t.Fatalf("NewTriggered: %v", err)
	}
	return ev
}

func dose(t *testing.T, listen string) campaign.Event {
	t.Helper()
	ev, err := campaign.NewTriggered(1, campaign.Listen{Triggers: []string{listen}, Duration: 30},
		campaign.AllNodes(), campaign.Cover(0.5), &intervention.AntimalarialDrug{Drug: "DHA", Cost: 1})
	if err != nil {
		t.Fatalf("NewTriggered: %v", err)
	}
	return ev
}

func doc(events ...campaign.Event) *campaign.Document {
	d := campaign.NewDocument()
	d.Append(events...)
	return d
}

func TestAnalyze_Edges(t *testing.T) {
	g := Analyze(doc(
		relay(t, campaign.NewClinicalCase, "Now_1"),
		relay(t, campaign.NewClinicalCase, "Now_1"),
		dose(t, "Now_1"),
	))
	want := []Edge{{From: 0, To: 2, Signal: "Now_1"}, {From: 1, To: 2, Signal: "Now_1"}}
	if diff := cmp.Diff(want, g.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{campaign.NewClinicalCase}, g.External()); diff != "" {
		t.Errorf("external mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, g.Senders("Now_1")); diff != "" {
		t.Errorf("senders mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(g, func(s string) bool { return s == "Now_1" }); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_Cycle(t *testing.T) {
	tests := []struct {
		name   string
		events func() []campaign.Event
		want   string
	}{
		{"two events", func() []campaign.Event {
			return []campaign.Event{relay(t, "A", "B"), relay(t, "B", "A")}
		}, "E0 -> E1 -> E0"},
		{"self loop", func() []campaign.Event {
			return []campaign.Event{relay(t, campaign.Births, "C"), relay(t, "C", "C")}
		}, "E1 -> E1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Analyze(doc(tt.events()...)), nil)
			if !errors.Is(err, ErrCycle) {
				t.Fatalf("got %v, want ErrCycle", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should show path %q", err, tt.want)
			}
		})
	}
}

func TestValidate_DanglingTether(t *testing.T) {
	g := Analyze(doc(dose(t, "Lost_7"), dose(t, campaign.HappyBirthday)))
	isTether := func(s string) bool { return strings.HasPrefix(s, "Lost_") }
	if err := Validate(g, isTether); !errors.Is(err, ErrDanglingTether) {
		t.Fatalf("got %v, want ErrDanglingTether", err)
	}
	if err := Validate(g, nil); err != nil {
		t.Errorf("cycle-only validation: %v", err)
	}
}

func TestRender(t *testing.T) {
	got := Render(Analyze(doc(relay(t, "HappyBirthday", "Go-1"), dose(t, "Go-1"))))
	want := `graph LR
    S_HappyBirthday(["HappyBirthday"])
    E0["E0 day 1 triggered: BroadcastEvent"]
    E1["E1 day 1 triggered: AntimalarialDrug"]
    S_HappyBirthday --> E0
    E0 -->|"Go-1"| E1
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRows(t *testing.T) {
	n := 40
	sched, err := campaign.NewScheduled(5, campaign.Schedule{Repetitions: 2, Interval: 10}, campaign.AllNodes(),
		campaign.Targeting{TargetCount: &n}, &intervention.AntimalarialDrug{Drug: "DHA"}, &intervention.AntimalarialDrug{Drug: "Piperaquine"})
	if err != nil {
		t.Fatalf("NewScheduled: %v", err)
	}
	delay := intervention.Exponential(2)
	trig, err := campaign.NewTriggered(0, campaign.Listen{Triggers: []string{"X"}, Delay: &delay, Duration: campaign.NeverExpires},
		campaign.Nodes(4), campaign.Cover(0.25), &intervention.BroadcastEvent{Event: "Y"})
	if err != nil {
		t.Fatalf("NewTriggered: %v", err)
	}

	got := Rows(Analyze(doc(sched, trig)))
	want := []Row{
		{ID: "E0", StartDay: 5, Kind: "scheduled", Window: "x2 every 10d", Coverage: "n=40", Actions: "AntimalarialDrug, AntimalarialDrug"},
		{ID: "E1", StartDay: 0, Kind: "triggered", Window: "for ever +exp(2)", Coverage: "0.25", Listens: "X", Emits: "Y", Actions: "BroadcastEvent"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
}
