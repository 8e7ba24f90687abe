// Package drugcampaign maps a cascade type to a topology of campaign events
// built from envelopes, relays, diagnostic branches and snowballs.
package drugcampaign

import (
	"fmt"
	"log/slog"
	"slices"

	"campaigner/internal/campaign"
	"campaigner/internal/diagnostic"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
	"campaigner/internal/reactive"
	"campaigner/internal/trigger"
)

// Composer dispatches requests to the topology of their type. A Composer
// and its generator belong to one document build.
type Composer struct {
	factory  *intervention.Factory
	tethers  *trigger.Generator
	diag     *diagnostic.Composer
	snowball *reactive.Composer
	log      *slog.Logger
}

// NewComposer returns a Composer building leaves with f and tethers with g.
func NewComposer(f *intervention.Factory, g *trigger.Generator) *Composer {
	return &Composer{
		factory:  f,
		tethers:  g,
		diag:     diagnostic.NewComposer(f, g),
		snowball: reactive.NewComposer(f, g),
		log:      logging.New("drugcampaign"),
	}
}

// WithLogger replaces the logger of c and of the composers it drives.
func (c *Composer) WithLogger(l *slog.Logger) *Composer {
	c.log = l
	c.diag.WithLogger(l)
	c.snowball.WithLogger(l)
	return c
}

// Add composes r and appends its events to doc. On error doc is unchanged.
// A document holds at most one reactive cascade (rfMSAT or rfMDA): its
// level tethers are numbered Diagnostic_Survey_k, so a second one fails
// with trigger.ErrCollision.
func (c *Composer) Add(doc *campaign.Document, r Request) (Descriptor, error) {
	t, err := ParseType(r.Type)
	if err != nil {
		return Descriptor{}, err
	}
	if err := r.validate(); err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", t, err)
	}
	c.tethers.Reserve(doc.CustomEvents()...)

	var (
		events  []campaign.Event
		tethers []string
	)
	switch t {
	case MDA, SMC:
		events, tethers, err = c.mda(t, r)
	case MSAT, MTAT:
		events, tethers, err = c.msat(t, r)
	case FMDA:
		events, tethers, err = c.fmda(r)
	case RFMSAT:
		events, tethers, err = c.snowballCascade(reactive.Survey, r)
	case RFMDA:
		events, tethers, err = c.snowballCascade(reactive.Treat, r)
	}
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", t, err)
	}
	doc.Append(events...)

	d := Descriptor{
		Type:     t,
		Coverage: r.Coverage,
		Drugs:    r.dispensing().DrugNames(),
		Events:   len(events),
		Tethers:  tethers,
	}
	if t == FMDA || t == RFMSAT || t == RFMDA {
		d.TriggerCoverage = r.TriggerCoverage
	}
	c.log.Debug("composed drug campaign", "type", string(t), "events", d.Events, "tethers", len(tethers))
	return d, nil
}

// arm returns the signals the first event of a triggered cascade listens
// on, how long it listens, and the relays feeding it.
func (c *Composer) arm(r Request, role string) ([]string, float64, []campaign.Event, []string, error) {
	relay := trigger.Relay{
		Sources:     r.Triggers,
		Repetitions: r.Repetitions,
		Delay:       r.TriggerDelay,
		Interval:    float64(r.Interval),
		StartDay:    r.firstDay(),
		Duration:    r.Duration,
		Nodes:       r.Nodes,
		Targeting:   campaign.Cover(1),
	}
	if !relay.Needed() {
		return r.Triggers, r.Duration, nil, nil, nil
	}
	h, err := c.tethers.New(role)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	relay.Target = h
	relays, err := trigger.RelayChain(c.factory, relay)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	duration := r.Duration
	if duration != campaign.NeverExpires {
		duration += r.TriggerDelay + float64(r.Repetitions-1)*float64(r.Interval)
	}
	return []string{h.String()}, duration, relays, []string{h.String()}, nil
}

func (c *Composer) mda(t Type, r Request) ([]campaign.Event, []string, error) {
	d := r.dispensing()
	actions, err := Dispense(c.factory, d)
	if err != nil {
		return nil, nil, err
	}
	target := r.targeting(t, r.Coverage)
	if d.Restricts() {
		target = target.WithRestriction(campaign.DrugStatusKey, campaign.DrugStatusNone)
	}

	if !r.triggered() {
		events := make([]campaign.Event, 0, len(r.StartDays))
		for _, day := range r.StartDays {
			ev, err := campaign.NewScheduled(day, r.schedule(), r.Nodes, target, actions...)
			if err != nil {
				return nil, nil, fmt.Errorf("day %d: %w", day, err)
			}
			events = append(events, ev)
		}
		return events, nil, nil
	}

	triggers, duration, events, tethers, err := c.arm(r, string(t)+"_Now")
	if err != nil {
		return nil, nil, err
	}
	ev, err := campaign.NewTriggered(r.firstDay(), campaign.Listen{
		Triggers: triggers,
		Duration: duration,
	}, r.Nodes, target, actions...)
	if err != nil {
		return nil, nil, err
	}
	return append(events, ev), tethers, nil
}

func (c *Composer) msat(t Type, r Request) ([]campaign.Event, []string, error) {
	d := r.dispensing()
	actions, err := Dispense(c.factory, d)
	if err != nil {
		return nil, nil, err
	}
	if r.TreatmentDelay > 0 {
		delayed, err := c.factory.Delayed(intervention.Constant(r.TreatmentDelay), actions...)
		if err != nil {
			return nil, nil, err
		}
		actions = []intervention.Spec{delayed}
	}

	p := diagnostic.Params{
		Test:              r.Test,
		StartDays:         r.StartDays,
		Schedule:          r.schedule(),
		Duration:          r.Duration,
		Nodes:             r.Nodes,
		Targeting:         r.targeting(t, r.Coverage),
		Positive:          actions,
		ExcludeRecentDrug: d.Restricts(),
		Role:              string(t),
	}
	var events []campaign.Event
	var tethers []string
	if r.triggered() {
		p.Triggers, p.Duration, events, tethers, err = c.arm(r, string(t)+"_Now")
		if err != nil {
			return nil, nil, err
		}
		p.StartDays = []int{r.firstDay()}
	}
	res, err := c.diag.Compose(p)
	if err != nil {
		return nil, nil, err
	}
	tethers = append(tethers, res.Positive.String(), res.Negative.String())
	return append(events, res.Events...), tethers, nil
}

func (c *Composer) fmda(r Request) ([]campaign.Event, []string, error) {
	d := r.dispensing()
	actions, err := Dispense(c.factory, d)
	if err != nil {
		return nil, nil, err
	}
	treat, err := c.tethers.New("fMDA_Treat")
	if err != nil {
		return nil, nil, err
	}
	alert, err := c.factory.BroadcastToNodes(treat.String(), r.Radius, r.Selection)
	if err != nil {
		return nil, nil, err
	}

	p := diagnostic.Params{
		Test:      r.Test,
		StartDays: r.StartDays,
		Schedule:  r.schedule(),
		Duration:  r.Duration,
		Nodes:     r.Nodes,
		Targeting: r.targeting(FMDA, r.TriggerCoverage),
		Positive:  []intervention.Spec{alert},
		Role:      string(FMDA),
	}
	var events []campaign.Event
	tethers := []string{treat.String()}
	if r.triggered() {
		var relayed []string
		p.Triggers, p.Duration, events, relayed, err = c.arm(r, "fMDA_Now")
		if err != nil {
			return nil, nil, err
		}
		p.StartDays = []int{r.firstDay()}
		tethers = append(relayed, tethers...)
	}
	res, err := c.diag.Compose(p)
	if err != nil {
		return nil, nil, err
	}

	target := campaign.Cover(r.Coverage)
	if d.Restricts() {
		target = target.WithRestriction(campaign.DrugStatusKey, campaign.DrugStatusNone)
	}
	listen := campaign.Listen{
		Triggers: []string{treat.String()},
		Duration: res.HandlerDuration,
	}
	if r.TreatmentDelay > 0 {
		delay := intervention.Constant(r.TreatmentDelay)
		listen.Delay = &delay
	}
	dose, err := campaign.NewTriggered(res.HandlerStart, listen, r.Nodes, target, actions...)
	if err != nil {
		return nil, nil, fmt.Errorf("treatment event: %w", err)
	}

	tethers = append(tethers, res.Positive.String(), res.Negative.String())
	events = append(events, res.Events...)
	return append(events, dose), tethers, nil
}

func (c *Composer) snowballCascade(mode reactive.Mode, r Request) ([]campaign.Event, []string, error) {
	d := r.dispensing()
	entry := r.Triggers
	if len(entry) == 0 {
		entry = []string{campaign.ReceivedTreatment}
	}
	if d.Broadcast != "" && slices.Contains(entry, d.Broadcast) {
		return nil, nil, fmt.Errorf("%w: reactive drugs cannot broadcast %s, the signal arming the cascade",
			campaign.ErrInvalidConfig, d.Broadcast)
	}
	actions, err := Dispense(c.factory, d)
	if err != nil {
		return nil, nil, err
	}
	target := campaign.Targeting{
		Ages:                 r.Ages,
		Gender:               r.Gender,
		PropertyRestrictions: r.PropertyRestrictions,
	}
	if mode == reactive.Treat && d.Restricts() {
		target = target.WithRestriction(campaign.DrugStatusKey, campaign.DrugStatusNone)
	}

	res, err := c.snowball.Compose(reactive.Params{
		Mode:            mode,
		StartDay:        r.firstDay(),
		Snowball:        r.Snowball,
		Radius:          r.Radius,
		Selection:       r.Selection,
		Test:            r.Test,
		Actions:         actions,
		TriggerCoverage: r.TriggerCoverage,
		Coverage:        r.Coverage,
		Delay:           r.TreatmentDelay,
		Duration:        r.Duration,
		Blackout:        r.Blackout,
		Nodes:           r.Nodes,
		Targeting:       target,
		Entry:           entry,
	})
	if err != nil {
		return nil, nil, err
	}
	tethers := make([]string, len(res.Levels))
	for i, l := range res.Levels {
		tethers[i] = l.Arm.String()
	}
	return res.Events, tethers, nil
}
