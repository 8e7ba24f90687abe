package plan

import (
	"fmt"
	"log/slog"

	"campaigner/internal/campaign"
	"campaigner/internal/cascade"
	"campaigner/internal/drugcampaign"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
	"campaigner/internal/treatseek"
	"campaigner/internal/trigger"
)

// Summary types of the entries that are not drug cascades.
const (
	TreatmentSeeking drugcampaign.Type = "TreatmentSeeking"
	Scheduled        drugcampaign.Type = "Scheduled"
	Triggered        drugcampaign.Type = "Triggered"
)

// Result is a built plan.
type Result struct {
	Name     string
	Seed     uint64
	Document *campaign.Document
	// Summaries has one entry per plan entry, in order.
	Summaries []drugcampaign.Descriptor
	Graph     *cascade.Graph
}

// Builder turns plans into documents. It holds no per-build state and may
// be shared by concurrent builds.
type Builder struct {
	factory *intervention.Factory
	log     *slog.Logger
}

// NewBuilder returns a Builder whose composers build leaves with f.
func NewBuilder(f *intervention.Factory) *Builder {
	return &Builder{factory: f, log: logging.New("plan")}
}

// WithLogger replaces the component logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.log = l
	return b
}

// Build composes every entry of p into a fresh document. seed overrides
// the plan's seed when non-zero; when both are zero a random seed is drawn
// and reported in the result. The finished cascade is checked for cycles
// and dangling tethers.
func (b *Builder) Build(p *Plan, seed uint64) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = p.Seed
	}
	if seed == 0 {
		s, err := trigger.NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	gen := trigger.NewSeeded(seed)
	doc := campaign.NewDocument()
	drugs := drugcampaign.NewComposer(b.factory, gen).WithLogger(b.log)
	seek := treatseek.NewComposer(b.factory).WithLogger(b.log)

	res := &Result{Name: p.Name, Seed: seed, Document: doc}
	for i, e := range p.Entries {
		var (
			sum drugcampaign.Descriptor
			err error
		)
		switch {
		case e.Drug != nil:
			sum, err = drugs.Add(doc, e.Drug.Request())
		case e.TreatmentSeeking != nil:
			sum, err = b.seeking(seek, doc, *e.TreatmentSeeking)
		case e.Scheduled != nil:
			sum, err = b.distribute(doc, Scheduled, *e.Scheduled)
		case e.Triggered != nil:
			sum, err = b.distribute(doc, Triggered, *e.Triggered)
		}
		if err != nil {
			return nil, fmt.Errorf("plan %q entry %d (%s): %w", p.Name, i, e.Kind(), err)
		}
		res.Summaries = append(res.Summaries, sum)
	}

	res.Graph = cascade.Analyze(doc)
	if err := cascade.Validate(res.Graph, gen.Issued); err != nil {
		return nil, fmt.Errorf("plan %q: %w", p.Name, err)
	}
	b.log.Info("built plan", "plan", p.Name, "seed", seed, "events", doc.Len(), "tethers", gen.Tethers())
	return res, nil
}

func (b *Builder) seeking(c *treatseek.Composer, doc *campaign.Document, e SeekEntry) (drugcampaign.Descriptor, error) {
	params := treatseek.Params{
		DrugCode:             e.DrugCode,
		Custom:               e.Custom,
		StartDay:             e.StartDay,
		Duration:             e.Duration,
		Nodes:                nodeSet(e.Nodes),
		Ages:                 e.TargetGroup.Ages,
		Gender:               e.TargetGroup.Gender,
		PropertyRestrictions: e.PropertyRestrictions,
		Broadcast:            e.Broadcast,
		IneligibleDays:       e.IneligibleDays,
	}
	for _, t := range e.Targets {
		ages, err := t.ages()
		if err != nil {
			return drugcampaign.Descriptor{}, err
		}
		params.Targets = append(params.Targets, treatseek.Target{
			Trigger:  t.Trigger,
			Coverage: t.Coverage,
			Seek:     t.Seek,
			Rate:     t.Rate,
			Ages:     ages,
		})
	}
	events, err := c.Add(doc, params)
	if err != nil {
		return drugcampaign.Descriptor{}, err
	}

	d := drugcampaign.Dispensing{Code: e.DrugCode, Custom: e.Custom}
	if d.Code == "" && len(d.Custom) == 0 {
		d.Code = treatseek.DefaultDrugCode
	}
	sum := drugcampaign.Descriptor{Type: TreatmentSeeking, Drugs: d.DrugNames(), Events: len(events)}
	for _, ev := range events {
		sum.Coverage = max(sum.Coverage, ev.Coverage())
	}
	return sum, nil
}

// distribute builds one scheduled or triggered envelope around the entry's
// bednet, spraying, drugs and broadcast, in that order.
func (b *Builder) distribute(doc *campaign.Document, kind drugcampaign.Type, e DistEntry) (drugcampaign.Descriptor, error) {
	var actions []intervention.Spec
	if e.Bednet != nil {
		net, err := b.factory.Bednet(*e.Bednet)
		if err != nil {
			return drugcampaign.Descriptor{}, err
		}
		actions = append(actions, net)
	}
	if e.IRS != nil {
		irs, err := b.factory.IRS(*e.IRS)
		if err != nil {
			return drugcampaign.Descriptor{}, err
		}
		actions = append(actions, irs)
	}
	var drugNames []string
	if e.DrugCode != "" {
		d := drugcampaign.Dispensing{Code: e.DrugCode}
		drugs, err := drugcampaign.Dispense(b.factory, d)
		if err != nil {
			return drugcampaign.Descriptor{}, err
		}
		actions = append(actions, drugs...)
		drugNames = d.DrugNames()
	}
	if e.Broadcast != "" {
		bc, err := b.factory.Broadcast(e.Broadcast)
		if err != nil {
			return drugcampaign.Descriptor{}, err
		}
		actions = append(actions, bc)
	}
	if len(actions) == 0 {
		return drugcampaign.Descriptor{}, fmt.Errorf("%w: nothing to deliver; set bednet, irs, drug_code or broadcast_event", campaign.ErrInvalidConfig)
	}

	t := campaign.Targeting{
		Ages:                 e.TargetGroup.Ages,
		Gender:               e.TargetGroup.Gender,
		PropertyRestrictions: e.PropertyRestrictions,
	}
	if e.TargetCount != nil {
		n := *e.TargetCount
		t.TargetCount = &n
	} else {
		t = t.WithCoverage(e.Coverage)
	}

	var (
		ev  campaign.Event
		err error
	)
	if kind == Scheduled {
		ev, err = campaign.NewScheduled(e.StartDay, campaign.Schedule{Repetitions: e.Repetitions, Interval: e.Interval}, nodeSet(e.Nodes), t, actions...)
	} else {
		l := campaign.Listen{Triggers: e.Triggers, Duration: e.Duration}
		if e.Delay != 0 {
			d := intervention.Constant(e.Delay)
			l.Delay = &d
		}
		ev, err = campaign.NewTriggered(e.StartDay, l, nodeSet(e.Nodes), t, actions...)
	}
	if err != nil {
		return drugcampaign.Descriptor{}, err
	}
	doc.Append(ev)
	return drugcampaign.Descriptor{Type: kind, Coverage: ev.Coverage(), Drugs: drugNames, Events: 1}, nil
}
