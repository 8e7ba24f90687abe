package wiring

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
	"campaigner/internal/plan"
)

func newBuilder(t *testing.T) *plan.Builder {
	t.Helper()
	f, err := intervention.NewBuiltinFactory()
	if err != nil {
		t.Fatal(err)
	}
	return plan.NewBuilder(f).WithLogger(logging.Discard())
}

// A plan that fails to compose leaves no output file behind.
func TestRun_RejectedPlanWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.yaml")
	src := "name: bad\nentries:\n  - drug: {type: MDA, drug_code: AL, custom_drugs: [{doses: [[Artemether]]}], start_days: [1]}\n"
	if err := os.WriteFile(in, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "campaign.json")

	_, err := Run(newBuilder(t), in, out, 1)
	if !errors.Is(err, campaign.ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output written for a rejected plan: %v", err)
	}
}

func TestRun_JSONPlan(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "plan.json")
	js := `{"name":"nets","entries":[{"scheduled":{"start_day":10,"bednet":{"blocking":{"initial":0.9,"decay_time":730},"killing":{"initial":0.6,"decay_time":1460},"repelling":{"initial":0},"usage":{"initial":1}}}}]}`
	if err := os.WriteFile(in, []byte(js), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := Run(newBuilder(t), in, filepath.Join(dir, "campaign.json"), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Name != "nets" || res.Document.Len() != 1 {
		t.Errorf("result: got name %q with %d events", res.Name, res.Document.Len())
	}
}
