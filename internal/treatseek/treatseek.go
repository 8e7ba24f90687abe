// Package treatseek composes treatment-seeking behaviour: individuals who
// fall sick seek care with some probability and rate, and are dispensed
// drugs when they get it.
package treatseek

import (
	"fmt"
	"log/slog"
	"math"

	"campaigner/internal/campaign"
	"campaigner/internal/drugcampaign"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
)

// Target is one care-seeking pathway.
type Target struct {
	// Trigger is the signal that makes an individual seek care.
	Trigger string
	// Coverage models access to care, Seek the probability of seeking it.
	Coverage float64
	Seek     float64
	// Rate is the daily rate of seeking care; 0 seeks immediately.
	Rate float64
	// Ages overrides Params.Ages for this pathway.
	Ages *campaign.AgeRange
}

// DefaultDrugCode is dispensed when Params names no drugs.
const DefaultDrugCode = "AL"

// DefaultTargets are clinical cases at coverage 0.8 with seek 0.6 and rate
// 0.3, and severe cases at coverage 0.8 with seek 0.8 and rate 0.5.
func DefaultTargets() []Target {
	return []Target{
		{Trigger: campaign.NewClinicalCase, Coverage: 0.8, Seek: 0.6, Rate: 0.3},
		{Trigger: campaign.NewSevereCase, Coverage: 0.8, Seek: 0.8, Rate: 0.5},
	}
}

// Params configures treatment seeking. The zero value of every optional
// field picks its default.
type Params struct {
	// Targets defaults to DefaultTargets.
	Targets []Target

	// DrugCode defaults to AL when Custom is empty.
	DrugCode string
	Custom   []intervention.AdherentDrug

	StartDay int
	// Duration is how long care is available; zero means for ever.
	Duration float64
	Nodes    campaign.NodeSet
	// Ages defaults to campaign.Lifespan, Gender to campaign.GenderAll.
	Ages                 *campaign.AgeRange
	Gender               campaign.Gender
	PropertyRestrictions []map[string]string

	// Broadcast is raised once drugs are given; ReceivedTreatment when
	// empty.
	Broadcast      string
	IneligibleDays float64
}

// Composer builds treatment-seeking events.
type Composer struct {
	factory *intervention.Factory
	log     *slog.Logger
}

// NewComposer returns a Composer building leaves with f.
func NewComposer(f *intervention.Factory) *Composer {
	return &Composer{factory: f, log: logging.New("treatseek")}
}

// WithLogger replaces the component logger.
func (c *Composer) WithLogger(l *slog.Logger) *Composer {
	c.log = l
	return c
}

// Add appends one triggered event per target to doc. On error doc is
// unchanged.
func (c *Composer) Add(doc *campaign.Document, p Params) ([]campaign.Event, error) {
	events, err := c.Compose(p)
	if err != nil {
		return nil, err
	}
	doc.Append(events...)
	return events, nil
}

// Compose returns one triggered event per target.
func (c *Composer) Compose(p Params) ([]campaign.Event, error) {
	targets := p.Targets
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	d := drugcampaign.Dispensing{
		Code:           p.DrugCode,
		Custom:         p.Custom,
		IneligibleDays: p.IneligibleDays,
		Broadcast:      p.Broadcast,
	}
	if d.Code == "" && len(d.Custom) == 0 {
		d.Code = DefaultDrugCode
	}
	if d.Broadcast == "" {
		d.Broadcast = campaign.ReceivedTreatment
	}
	actions, err := drugcampaign.Dispense(c.factory, d)
	if err != nil {
		return nil, err
	}
	duration := p.Duration
	if duration == 0 {
		duration = campaign.NeverExpires
	}

	events := make([]campaign.Event, 0, len(targets))
	for i, tg := range targets {
		ev, err := c.event(p, tg, duration, d.Restricts(), actions)
		if err != nil {
			return nil, fmt.Errorf("target %d (%s): %w", i, tg.Trigger, err)
		}
		events = append(events, ev)
	}
	c.log.Debug("composed treatment seeking", "targets", len(events), "drugs", d.DrugNames())
	return events, nil
}

func (c *Composer) event(p Params, tg Target, duration float64, restrict bool, actions []intervention.Spec) (campaign.Event, error) {
	if err := campaign.CheckFraction("coverage", tg.Coverage); err != nil {
		return campaign.Event{}, err
	}
	if err := campaign.CheckFraction("seek", tg.Seek); err != nil {
		return campaign.Event{}, err
	}
	if tg.Rate < 0 || math.IsNaN(tg.Rate) || math.IsInf(tg.Rate, 0) {
		return campaign.Event{}, fmt.Errorf("%w: rate %v must be a non-negative number", campaign.ErrOutOfRange, tg.Rate)
	}

	ages := campaign.Lifespan
	switch {
	case tg.Ages != nil:
		ages = *tg.Ages
	case p.Ages != nil:
		ages = *p.Ages
	}
	gender := p.Gender
	if gender == "" {
		gender = campaign.GenderAll
	}
	t := campaign.Targeting{
		Ages:                 &ages,
		Gender:               gender,
		PropertyRestrictions: p.PropertyRestrictions,
	}.WithCoverage(tg.Coverage * tg.Seek)
	if restrict {
		t = t.WithRestriction(campaign.DrugStatusKey, campaign.DrugStatusNone)
	}

	listen := campaign.Listen{
		Triggers: []string{tg.Trigger},
		Duration: duration,
	}
	if tg.Rate > 0 {
		delay := intervention.Exponential(1 / tg.Rate)
		listen.Delay = &delay
	}
	return campaign.NewTriggered(p.StartDay, listen, p.Nodes, t, actions...)
}
