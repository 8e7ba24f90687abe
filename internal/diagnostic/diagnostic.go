// Package diagnostic composes "test, then act on the outcome" cascades: a
// diagnostic event whose positive and negative outcomes broadcast tethers,
// and one handler event per non-empty branch listening on its tether.
package diagnostic

import (
	"fmt"
	"log/slog"
	"slices"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
	"campaigner/internal/logging"
	"campaigner/internal/trigger"
)

// Params configures one diagnostic cascade.
type Params struct {
	// Test defaults to intervention.DefaultTest when zero.
	Test intervention.Test

	// StartDays schedules one diagnostic event per day. When Triggers is
	// set the diagnostic listens instead and only the first start day is
	// used (0 when StartDays is empty).
	StartDays []int
	// Schedule repeats each scheduled diagnostic; zero means Once.
	Schedule campaign.Schedule

	Triggers []string
	// Delay postpones the test after a trigger.
	Delay *intervention.Delay
	// Duration is the diagnostic's listening duration; handlers listen for
	// one day longer. NeverExpires keeps everything armed.
	Duration float64

	Nodes     campaign.NodeSet
	Targeting campaign.Targeting

	Positive []intervention.Spec
	Negative []intervention.Spec

	// ExcludeRecentDrug limits the positive handler to individuals whose
	// DrugStatus is None.
	ExcludeRecentDrug bool

	// Role prefixes the outcome tethers; "Diagnostic" when empty.
	Role string
}

// Result is the output of one composition.
type Result struct {
	Events   []campaign.Event
	Positive trigger.Handle
	Negative trigger.Handle
	// HandlerStart and HandlerDuration are the listening window of the
	// branch handlers, also used by composers chaining their own handlers.
	// The window opens a day before the earliest diagnostic and stays open
	// until the listening duration of the last scheduled firing has passed.
	HandlerStart    int
	HandlerDuration float64
}

// Composer builds diagnostic cascades.
type Composer struct {
	factory *intervention.Factory
	tethers *trigger.Generator
	log     *slog.Logger
}

// NewComposer returns a Composer minting tethers from g.
func NewComposer(f *intervention.Factory, g *trigger.Generator) *Composer {
	return &Composer{factory: f, tethers: g, log: logging.New("diagnostic")}
}

// WithLogger replaces the component logger.
func (c *Composer) WithLogger(l *slog.Logger) *Composer {
	c.log = l
	return c
}

// Compose builds the diagnostic event followed by the branch handlers.
// Nothing is returned on error.
func (c *Composer) Compose(p Params) (Result, error) {
	if len(p.StartDays) == 0 && len(p.Triggers) == 0 {
		return Result{}, fmt.Errorf("%w: diagnostic needs start days or trigger conditions", campaign.ErrInvalidConfig)
	}
	role := p.Role
	if role == "" {
		role = "Diagnostic"
	}

	pos, err := c.tethers.New(role + "_Positive")
	if err != nil {
		return Result{}, err
	}
	neg, err := c.tethers.New(role + "_Negative")
	if err != nil {
		return Result{}, err
	}
	posOutcome, err := c.outcome(campaign.TestedPositive, pos)
	if err != nil {
		return Result{}, err
	}
	negOutcome, err := c.outcome(campaign.TestedNegative, neg)
	if err != nil {
		return Result{}, err
	}
	spec := p.Test
	if spec == (intervention.Test{}) {
		spec = intervention.DefaultTest()
	}
	test, err := c.factory.Diagnostic(spec, posOutcome, negOutcome)
	if err != nil {
		return Result{}, err
	}

	var (
		events      []campaign.Event
		first, last int
	)
	if len(p.Triggers) > 0 {
		if len(p.StartDays) > 0 {
			first = p.StartDays[0]
		}
		ev, err := campaign.NewTriggered(first, campaign.Listen{
			Triggers: p.Triggers,
			Delay:    p.Delay,
			Duration: p.Duration,
		}, p.Nodes, p.Targeting, test)
		if err != nil {
			return Result{}, fmt.Errorf("diagnostic event: %w", err)
		}
		events = append(events, ev)
	} else {
		sched := p.Schedule
		if sched == (campaign.Schedule{}) {
			sched = campaign.Once
		}
		first = slices.Min(p.StartDays)
		last = FinalFiring(slices.Max(p.StartDays), sched)
		for _, day := range p.StartDays {
			ev, err := campaign.NewScheduled(day, sched, p.Nodes, p.Targeting, test)
			if err != nil {
				return Result{}, fmt.Errorf("diagnostic event on day %d: %w", day, err)
			}
			events = append(events, ev)
		}
	}

	start, duration := HandlerWindow(first, p.Duration)
	if last > first && duration != campaign.NeverExpires {
		duration += float64(last - first)
	}
	if start != first-1 {
		c.log.Warn("branch handler start clamped", "diagnostic_start", first, "handler_start", start)
	}
	res := Result{Positive: pos, Negative: neg, HandlerStart: start, HandlerDuration: duration}

	branches := []struct {
		tether  trigger.Handle
		actions []intervention.Spec
		target  campaign.Targeting
	}{
		{pos, p.Positive, c.positiveTargeting(p)},
		{neg, p.Negative, campaign.Cover(1)},
	}
	for _, b := range branches {
		if len(b.actions) == 0 {
			continue
		}
		ev, err := campaign.NewTriggered(start, campaign.Listen{
			Triggers: []string{b.tether.String()},
			Duration: duration,
		}, p.Nodes, b.target, b.actions...)
		if err != nil {
			return Result{}, fmt.Errorf("branch handler %s: %w", b.tether, err)
		}
		events = append(events, ev)
	}

	res.Events = events
	c.log.Debug("composed diagnostic cascade",
		"role", role, "events", len(events), "positive", pos.String(), "negative", neg.String())
	return res, nil
}

// HandlerWindow returns the start day and listening duration of a branch
// handler for a diagnostic starting at day with listening duration d. The
// handler is armed a day early; a day-0 diagnostic clamps it to day 0.
func HandlerWindow(day int, d float64) (int, float64) {
	start := max(day-1, 0)
	if d == campaign.NeverExpires {
		return start, campaign.NeverExpires
	}
	return start, d + 1
}

// FinalFiring is the day of the last repetition of a scheduled event
// starting at day.
func FinalFiring(day int, s campaign.Schedule) int {
	if s.Repetitions <= 1 {
		return day
	}
	return day + (s.Repetitions-1)*s.Interval
}

// outcome is the action list of one diagnostic result: the stable
// broadcast followed by the tether broadcast.
func (c *Composer) outcome(stable string, tether trigger.Handle) (intervention.Spec, error) {
	s, err := c.factory.Broadcast(stable)
	if err != nil {
		return nil, err
	}
	t, err := c.factory.Broadcast(tether.String())
	if err != nil {
		return nil, err
	}
	return intervention.Bundle(s, t), nil
}

func (c *Composer) positiveTargeting(p Params) campaign.Targeting {
	t := campaign.Cover(1)
	if p.ExcludeRecentDrug {
		t = t.WithRestriction(campaign.DrugStatusKey, campaign.DrugStatusNone)
	}
	return t
}
