package trigger_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
	"campaigner/internal/trigger"
)

// fixedSource replays values, then repeats the last one.
type fixedSource struct {
	vals []uint64
	i    int
}

func (s *fixedSource) Uint64() uint64 {
	v := s.vals[min(s.i, len(s.vals)-1)]
	s.i++
	return v
}

func TestHandle_String(t *testing.T) {
	h := trigger.Handle{Role: "MDA_Now", Suffix: 42}
	if got := h.String(); got != "MDA_Now_42" {
		t.Errorf("String() = %q", got)
	}
}

func TestGenerator_SeededIsDeterministic(t *testing.T) {
	a, b := trigger.NewSeeded(7), trigger.NewSeeded(7)
	pattern := regexp.MustCompile(`^Positive_\d+$`)
	for range 20 {
		ha, err := a.New("Positive")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		hb, _ := b.New("Positive")
		if ha != hb {
			t.Fatalf("seeded generators diverged: %s vs %s", ha, hb)
		}
		if !pattern.MatchString(ha.String()) {
			t.Errorf("tether %q does not match role pattern", ha)
		}
	}
}

func TestGenerator_RetriesOnClash(t *testing.T) {
	g := trigger.NewGenerator(&fixedSource{vals: []uint64{5, 5, 5, 9}})
	first, _ := g.New("T")
	second, err := g.New("T")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if first.String() != "T_5" || second.String() != "T_9" {
		t.Errorf("got %s then %s, want T_5 then T_9", first, second)
	}
}

func TestGenerator_CollisionWhenExhausted(t *testing.T) {
	g := trigger.NewGenerator(&fixedSource{vals: []uint64{3}})
	if _, err := g.New("T"); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.New("T"); !errors.Is(err, trigger.ErrCollision) {
		t.Fatalf("got %v, want ErrCollision", err)
	}
}

func TestGenerator_ReservedNamesAreNeverIssued(t *testing.T) {
	g := trigger.NewGenerator(&fixedSource{vals: []uint64{1, 2}})
	g.Reserve("T_1")
	h, err := g.New("T")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h.String() != "T_2" {
		t.Errorf("got %s, want T_2", h)
	}
	if g.Issued("T_1") {
		t.Error("a reserved name is not an issued tether")
	}
	if !g.Issued("T_2") {
		t.Error("T_2 should be recorded as issued")
	}
}

func TestGenerator_Numbered(t *testing.T) {
	g := trigger.NewSeeded(1)
	h, err := g.Numbered("Diagnostic_Survey", 0)
	if err != nil {
		t.Fatalf("Numbered: %v", err)
	}
	if h.String() != "Diagnostic_Survey_0" {
		t.Errorf("got %s", h)
	}
	if _, err := g.Numbered("Diagnostic_Survey", 0); !errors.Is(err, trigger.ErrCollision) {
		t.Errorf("second issue of the same number: got %v, want ErrCollision", err)
	}
	g.Release(h.String())
	if _, err := g.Numbered("Diagnostic_Survey", 0); err != nil {
		t.Errorf("released tether should be issuable again: %v", err)
	}
	g.Reserve("Diagnostic_Survey_5")
	g.Release("Diagnostic_Survey_5")
	if _, err := g.Numbered("Diagnostic_Survey", 5); !errors.Is(err, trigger.ErrCollision) {
		t.Errorf("release must not lift a reservation: got %v", err)
	}
	if _, err := g.Numbered("Diagnostic_Survey", -1); err == nil {
		t.Error("negative index should fail")
	}
	if _, err := g.New(""); err == nil {
		t.Error("empty role should fail")
	}
}

func relayFactory(t *testing.T) *intervention.Factory {
	t.Helper()
	f, err := intervention.NewBuiltinFactory()
	if err != nil {
		t.Fatalf("NewBuiltinFactory: %v", err)
	}
	return f
}

func TestRelayChain_Unrolling(t *testing.T) {
	target := trigger.Handle{Role: "MDA_Now", Suffix: 1}
	tests := []struct {
		name       string
		reps       int
		delay      float64
		interval   float64
		wantDelays []float64
	}{
		{"degenerate", 1, 0, 0, nil},
		{"single delayed", 1, 3, 0, []float64{3}},
		{"repeated undelayed", 3, 0, 7, []float64{0, 7, 14}},
		{"repeated delayed", 4, 2, 10, []float64{2, 12, 22, 32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := trigger.RelayChain(relayFactory(t), trigger.Relay{
				Sources:     []string{"NewClinicalCase"},
				Target:      target,
				Repetitions: tt.reps,
				Delay:       tt.delay,
				Interval:    tt.interval,
				Duration:    campaign.NeverExpires,
				Nodes:       campaign.AllNodes(),
				Targeting:   campaign.Cover(1),
			})
			if err != nil {
				t.Fatalf("RelayChain: %v", err)
			}
			var delays []float64
			for _, ev := range events {
				l := ev.Coordinator.Listen
				if l == nil {
					t.Fatal("relay must be a triggered event")
				}
				if diff := cmp.Diff([]string{"NewClinicalCase"}, l.Triggers); diff != "" {
					t.Errorf("triggers mismatch (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff([]string{"MDA_Now_1"}, ev.Signals()); diff != "" {
					t.Errorf("signals mismatch (-want +got):\n%s", diff)
				}
				d := 0.0
				if l.Delay != nil {
					d = l.Delay.Value
				}
				delays = append(delays, d)
			}
			if diff := cmp.Diff(tt.wantDelays, delays); diff != "" {
				t.Errorf("delays mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRelayChain_Errors(t *testing.T) {
	base := trigger.Relay{
		Sources:     []string{"X"},
		Target:      trigger.Handle{Role: "T", Suffix: 1},
		Repetitions: 2,
		Interval:    1,
		Duration:    -1,
	}
	zeroReps := base
	zeroReps.Repetitions = 0
	negDelay := base
	negDelay.Delay = -1
	noTarget := base
	noTarget.Target = trigger.Handle{}
	noSources := base
	noSources.Sources = nil

	tests := []struct {
		name  string
		relay trigger.Relay
		want  error
	}{
		{"zero repetitions", zeroReps, campaign.ErrOutOfRange},
		{"negative delay", negDelay, campaign.ErrOutOfRange},
		{"no target", noTarget, campaign.ErrInvalidConfig},
		{"no sources", noSources, campaign.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := trigger.RelayChain(relayFactory(t), tt.relay)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
