package wiring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"campaigner/internal/campaign"
	"campaigner/internal/drugcampaign"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
	"campaigner/internal/plan"
	"campaigner/internal/presets"
	"campaigner/internal/trigger"
)

// decoded is a campaign document read back as plain JSON values.
type decoded struct {
	Events []map[string]any `json:"Events"`
}

func encodeDoc(doc *campaign.Document) decoded {
	data, err := json.Marshal(doc)
	gomega.Expect(err).To(gomega.Succeed())
	var d decoded
	gomega.Expect(json.Unmarshal(data, &d)).To(gomega.Succeed())
	return d
}

func coordinator(ev map[string]any) map[string]any {
	return ev["Event_Coordinator_Config"].(map[string]any)
}

func triggeredIV(ev map[string]any) map[string]any {
	return coordinator(ev)["Intervention_Config"].(map[string]any)
}

func drugTypes(items []any) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.(map[string]any)["Drug_Type"].(string))
	}
	return out
}

func builtinFactory() *intervention.Factory {
	f, err := intervention.NewBuiltinFactory()
	gomega.Expect(err).To(gomega.Succeed())
	return f
}

var _ = ginkgo.Describe("drug campaign scenarios", func() {
	var (
		doc      *campaign.Document
		composer *drugcampaign.Composer
	)

	ginkgo.BeforeEach(func() {
		doc = campaign.NewDocument()
		composer = drugcampaign.NewComposer(builtinFactory(), trigger.NewSeeded(2024)).WithLogger(logging.Discard())
	})

	ginkgo.It("composes a repeated MDA as one scheduled event", func() {
		r := drugcampaign.NewRequest("MDA", "AL", 11)
		r.Repetitions = 3
		r.Interval = 3
		r.Coverage = 0.3
		_, err := composer.Add(doc, r)
		gomega.Expect(err).To(gomega.Succeed())

		d := encodeDoc(doc)
		gomega.Expect(d.Events).To(gomega.HaveLen(1))
		c := coordinator(d.Events[0])
		gomega.Expect(c["Number_Repetitions"]).To(gomega.BeEquivalentTo(3))
		gomega.Expect(c["Timesteps_Between_Repetitions"]).To(gomega.BeEquivalentTo(3))
		gomega.Expect(c["Demographic_Coverage"]).To(gomega.BeEquivalentTo(0.3))
		iv := c["Intervention_Config"].(map[string]any)
		gomega.Expect(iv["class"]).To(gomega.Equal("MultiInterventionDistributor"))
		gomega.Expect(drugTypes(iv["Intervention_List"].([]any))).To(gomega.Equal([]string{"Artemether", "Lumefantrine"}))
	})

	ginkgo.It("composes a triggered MSAT with a delayed positive branch", func() {
		r := drugcampaign.NewRequest("MSAT", "SPP", 20)
		r.Coverage = 0.78
		r.Triggers = []string{"HappyBirthday"}
		r.Duration = 60
		r.TreatmentDelay = 1
		_, err := composer.Add(doc, r)
		gomega.Expect(err).To(gomega.Succeed())

		d := encodeDoc(doc)
		gomega.Expect(d.Events).To(gomega.HaveLen(2))

		diag := triggeredIV(d.Events[0])
		gomega.Expect(diag["Trigger_Condition_List"]).To(gomega.Equal([]any{"HappyBirthday"}))
		gomega.Expect(diag["Duration"]).To(gomega.BeEquivalentTo(60))
		gomega.Expect(diag["Actual_IndividualIntervention_Config"].(map[string]any)["class"]).To(gomega.Equal("MalariaDiagnostic"))

		gomega.Expect(d.Events[1]["Start_Day"]).To(gomega.BeEquivalentTo(19))
		handler := triggeredIV(d.Events[1])
		gomega.Expect(handler["Duration"]).To(gomega.BeEquivalentTo(61))
		delayed := handler["Actual_IndividualIntervention_Config"].(map[string]any)
		gomega.Expect(delayed["class"]).To(gomega.Equal("DelayedIntervention"))
		gomega.Expect(delayed["Delay_Period_Distribution"]).To(gomega.Equal("CONSTANT_DISTRIBUTION"))
		gomega.Expect(delayed["Delay_Period_Constant"]).To(gomega.BeEquivalentTo(1))
		gomega.Expect(delayed["Actual_IndividualIntervention_Configs"]).NotTo(gomega.BeEmpty())
	})

	ginkgo.It("carries the focal radius onto the cross-node broadcast", func() {
		r := drugcampaign.NewRequest("fMDA", "AL", 1)
		r.Radius = 6
		_, err := composer.Add(doc, r)
		gomega.Expect(err).To(gomega.Succeed())

		var found []float64
		for _, ev := range doc.Events() {
			intervention.Walk(ev.Coordinator.Intervention, func(s intervention.Spec) {
				if b, ok := s.(*intervention.BroadcastToNodes); ok {
					found = append(found, b.MaxDistanceKm)
				}
			})
		}
		gomega.Expect(found).To(gomega.Equal([]float64{6}))
		data, err := json.Marshal(doc)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(string(data)).To(gomega.ContainSubstring(`"Max_Distance_To_Other_Nodes_Km":6`))
	})
})

var _ = ginkgo.Describe("Run", func() {
	var (
		builder *plan.Builder
		dir     string
	)

	ginkgo.BeforeEach(func() {
		builder = plan.NewBuilder(builtinFactory()).WithLogger(logging.Discard())
		dir = ginkgo.GinkgoT().TempDir()
	})

	writePreset := func(name string) string {
		data, err := presets.Raw(name)
		gomega.Expect(err).To(gomega.Succeed())
		path := filepath.Join(dir, name+".yaml")
		gomega.Expect(os.WriteFile(path, data, 0o644)).To(gomega.Succeed())
		return path
	}

	ginkgo.It("writes the campaign document of a plan file", func() {
		out := filepath.Join(dir, "campaign.json")
		res, err := Run(builder, writePreset("fmda"), out, 7)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(res.Seed).To(gomega.BeEquivalentTo(7))

		data, err := os.ReadFile(out)
		gomega.Expect(err).To(gomega.Succeed())
		var d decoded
		gomega.Expect(json.Unmarshal(data, &d)).To(gomega.Succeed())
		gomega.Expect(d.Events).To(gomega.HaveLen(res.Document.Len()))
	})

	ginkgo.It("is byte-identical for one seed and differs only in tether suffixes across seeds", func() {
		path := writePreset("rfmsat-snowball")
		a, b, c := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"), filepath.Join(dir, "c.json")
		resA, err := Run(builder, path, a, 11)
		gomega.Expect(err).To(gomega.Succeed())
		_, err = Run(builder, path, b, 11)
		gomega.Expect(err).To(gomega.Succeed())
		resC, err := Run(builder, path, c, 12)
		gomega.Expect(err).To(gomega.Succeed())

		dataA, _ := os.ReadFile(a)
		dataB, _ := os.ReadFile(b)
		gomega.Expect(dataA).To(gomega.Equal(dataB))

		// Snowball tethers are numbered, not random, so both seeds agree.
		gomega.Expect(resA.Document.CustomEvents()).To(gomega.Equal(resC.Document.CustomEvents()))
		gomega.Expect(strings.Join(resA.Document.CustomEvents(), " ")).To(gomega.ContainSubstring("Diagnostic_Survey_0"))
	})

	ginkgo.It("draws distinct tether suffixes from distinct seeds", func() {
		path := writePreset("msat-triggered")
		resA, err := Run(builder, path, filepath.Join(dir, "a.json"), 1)
		gomega.Expect(err).To(gomega.Succeed())
		resB, err := Run(builder, path, filepath.Join(dir, "b.json"), 2)
		gomega.Expect(err).To(gomega.Succeed())

		ta, tb := resA.Summaries[0].Tethers, resB.Summaries[0].Tethers
		gomega.Expect(ta).To(gomega.HaveLen(2))
		gomega.Expect(ta).NotTo(gomega.Equal(tb))
		for i := range ta {
			gomega.Expect(prefix(ta[i])).To(gomega.Equal(prefix(tb[i])))
		}
	})

	ginkgo.It("reports a missing plan file", func() {
		_, err := Run(builder, filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "out.json"), 1)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("read plan")))
	})
})

// prefix strips the generated suffix of a tether name.
func prefix(tether string) string {
	return tether[:strings.LastIndex(tether, "_")]
}
