// Package reactive composes snowball cascades: a treated individual alerts
// the surrounding nodes, which respond with a survey or a drug round, and a
// positive response alerts the nodes around it in turn, for a fixed number
// of levels.
package reactive

import (
	"fmt"
	"log/slog"
	"math"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
	"campaigner/internal/trigger"
)

// SurveyRole names the numbered tethers arming each level.
const SurveyRole = "Diagnostic_Survey"

// Mode is what a level does to the individuals it reaches.
type Mode int

const (
	// Survey tests everyone reached and treats the positives.
	Survey Mode = iota
	// Treat gives drugs to everyone reached.
	Treat
)

func (m Mode) String() string {
	if m == Treat {
		return "treat"
	}
	return "survey"
}

// Params configures one snowball cascade.
type Params struct {
	Mode     Mode
	StartDay int
	// Snowball is the number of re-arming levels after the first.
	Snowball int

	Radius    float64
	Selection intervention.NodeSelection

	// Test is the level diagnostic in Survey mode.
	Test intervention.Test
	// Actions are delivered to positives (Survey) or to everyone (Treat).
	Actions []intervention.Spec

	// TriggerCoverage gates the entry alert, Coverage each level.
	TriggerCoverage float64
	Coverage        float64

	// Delay is the days between an alert and the level's response.
	Delay    float64
	Duration float64
	// Blackout suppresses repeated entry alerts for the same individual.
	Blackout float64

	Nodes     campaign.NodeSet
	Targeting campaign.Targeting

	// Entry are the signals arming the cascade; ReceivedTreatment when
	// empty.
	Entry []string
}

// Level is one unrolled step of a snowball.
type Level struct {
	Index int
	// Arm is the tether the level listens on.
	Arm trigger.Handle
	// Next is the tether a positive response broadcasts, zero on the
	// terminal level.
	Next      trigger.Handle
	Radius    float64
	Selection intervention.NodeSelection
}

// Terminal reports whether l re-arms nothing.
func (l Level) Terminal() bool { return l.Next.IsZero() }

// levelAt describes level k of p. Each call returns an independent value.
func levelAt(k int, p Params) Level {
	sel := p.Selection
	if sel == "" {
		sel = intervention.DistanceOnly
	}
	l := Level{
		Index:     k,
		Arm:       trigger.Handle{Role: SurveyRole, Suffix: uint64(k)},
		Radius:    p.Radius,
		Selection: sel,
	}
	if k < p.Snowball {
		l.Next = trigger.Handle{Role: SurveyRole, Suffix: uint64(k + 1)}
	}
	return l
}

// Levels returns the Snowball+1 level descriptors of p.
func Levels(p Params) []Level {
	out := make([]Level, p.Snowball+1)
	for k := range out {
		out[k] = levelAt(k, p)
	}
	return out
}

// Result is the output of one composition.
type Result struct {
	Events []campaign.Event
	Levels []Level
}

// Composer builds snowball cascades.
type Composer struct {
	factory *intervention.Factory
	tethers *trigger.Generator
	log     *slog.Logger
}

// NewComposer returns a Composer claiming the numbered level tethers from g.
func NewComposer(f *intervention.Factory, g *trigger.Generator) *Composer {
	return &Composer{factory: f, tethers: g, log: logging.New("reactive")}
}

// WithLogger replaces the component logger.
func (c *Composer) WithLogger(l *slog.Logger) *Composer {
	c.log = l
	return c
}

// Compose builds the entry event followed by one event per level.
func (c *Composer) Compose(p Params) (Result, error) {
	if err := validate(p); err != nil {
		return Result{}, err
	}
	entry := p.Entry
	if len(entry) == 0 {
		entry = []string{campaign.ReceivedTreatment}
	}

	levels := Levels(p)
	alert, err := c.factory.BroadcastToNodes(levels[0].Arm.String(), levels[0].Radius, levels[0].Selection)
	if err != nil {
		return Result{}, err
	}
	var blackout *campaign.Blackout
	if p.Blackout > 0 {
		blackout = &campaign.Blackout{Period: p.Blackout}
	}
	first, err := campaign.NewTriggered(p.StartDay, campaign.Listen{
		Triggers: entry,
		Duration: p.Duration,
		Blackout: blackout,
	}, p.Nodes, campaign.Cover(p.TriggerCoverage), alert)
	if err != nil {
		return Result{}, fmt.Errorf("entry event: %w", err)
	}
	events := []campaign.Event{first}

	for _, l := range levels {
		ev, err := c.levelEvent(l, p)
		if err != nil {
			return Result{}, fmt.Errorf("level %d: %w", l.Index, err)
		}
		events = append(events, ev)
	}
	claimed := make([]string, 0, len(levels))
	for _, l := range levels {
		h, err := c.tethers.Numbered(l.Arm.Role, int(l.Arm.Suffix))
		if err != nil {
			c.tethers.Release(claimed...)
			return Result{}, err
		}
		claimed = append(claimed, h.String())
	}

	c.log.Debug("composed snowball", "mode", p.Mode.String(), "levels", len(levels), "events", len(events))
	return Result{Events: events, Levels: levels}, nil
}

func (c *Composer) levelEvent(l Level, p Params) (campaign.Event, error) {
	response := append([]intervention.Spec(nil), p.Actions...)
	if !l.Terminal() {
		rearm, err := c.factory.BroadcastToNodes(l.Next.String(), l.Radius, l.Selection)
		if err != nil {
			return campaign.Event{}, err
		}
		response = append(response, rearm)
	}

	action := intervention.Bundle(response...)
	if p.Mode == Survey {
		test := p.Test
		if test == (intervention.Test{}) {
			test = intervention.DefaultTest()
		}
		var err error
		action, err = c.factory.Diagnostic(test, action, nil)
		if err != nil {
			return campaign.Event{}, err
		}
	}

	listen := campaign.Listen{
		Triggers: []string{l.Arm.String()},
		Duration: p.Duration,
	}
	if p.Delay > 0 {
		d := intervention.Constant(p.Delay)
		listen.Delay = &d
	}
	return campaign.NewTriggered(p.StartDay, listen, p.Nodes, p.Targeting.WithCoverage(p.Coverage), action)
}

func validate(p Params) error {
	if p.Snowball < 0 {
		return fmt.Errorf("%w: snowball depth %d is negative", campaign.ErrOutOfRange, p.Snowball)
	}
	if math.IsNaN(p.Radius) || math.IsInf(p.Radius, 0) || p.Radius < 0 {
		return fmt.Errorf("%w: radius %v must be a non-negative number", campaign.ErrOutOfRange, p.Radius)
	}
	if err := campaign.CheckFraction("trigger coverage", p.TriggerCoverage); err != nil {
		return err
	}
	if err := campaign.CheckFraction("coverage", p.Coverage); err != nil {
		return err
	}
	if p.Delay < 0 || math.IsNaN(p.Delay) {
		return fmt.Errorf("%w: delay %v is negative", campaign.ErrOutOfRange, p.Delay)
	}
	if len(p.Actions) == 0 {
		return fmt.Errorf("%w: snowball needs drug actions", campaign.ErrInvalidConfig)
	}
	return nil
}
