package campaign

import (
	"encoding/json"
	"fmt"
	"math"

	"campaigner/internal/intervention"
)

// NeverExpires is the listening duration of a triggered event that stays
// armed for the rest of the simulation.
const NeverExpires = -1

// Schedule fires an event at its start day and then Repetitions-1 more
// times, Interval days apart.
type Schedule struct {
	Repetitions int
	Interval    int
}

// Once is a Schedule firing a single time.
var Once = Schedule{Repetitions: 1}

// Blackout suppresses re-triggering the same individual within Period days.
// Event, when set, is broadcast instead of the suppressed delivery.
type Blackout struct {
	Period            float64
	Event             string
	OnFirstOccurrence bool
}

// Listen arms an event on named signals.
type Listen struct {
	// Triggers are OR-matched signal names.
	Triggers []string
	// Delay postpones delivery after a trigger; nil delivers immediately.
	Delay *intervention.Delay
	// Duration is how long the event stays armed; NeverExpires for ever.
	Duration float64
	// ResidentsOnly limits recipients to individuals whose home is the node.
	ResidentsOnly bool
	Blackout      *Blackout
}

// Coordinator governs who receives Intervention and when. Exactly one of
// Schedule and Listen is set.
type Coordinator struct {
	Targeting    Targeting
	Schedule     *Schedule
	Listen       *Listen
	Intervention intervention.Spec
}

// Event is one entry of a campaign document. Events are built by NewScheduled
// or NewTriggered and are not modified afterwards.
type Event struct {
	StartDay    int
	Nodes       NodeSet
	Coordinator Coordinator
}

// NewScheduled builds an event firing at day on sched. The interval is
// ignored when sched repeats once.
func NewScheduled(day int, sched Schedule, nodes NodeSet, t Targeting, items ...intervention.Spec) (Event, error) {
	if err := checkDay(day); err != nil {
		return Event{}, err
	}
	if sched.Repetitions < 1 {
		return Event{}, fmt.Errorf("%w: repetitions %d must be at least 1", ErrOutOfRange, sched.Repetitions)
	}
	if sched.Repetitions == 1 {
		sched.Interval = 0
	} else if sched.Interval < 1 {
		return Event{}, fmt.Errorf("%w: interval %d between %d repetitions must be at least 1",
			ErrOutOfRange, sched.Interval, sched.Repetitions)
	}
	payload, err := payloadOf(items)
	if err != nil {
		return Event{}, err
	}
	if err := t.Validate(); err != nil {
		return Event{}, err
	}
	return Event{
		StartDay: day,
		Nodes:    Nodes(nodes.IDs()...),
		Coordinator: Coordinator{
			Targeting:    t.Clone(),
			Schedule:     &sched,
			Intervention: payload,
		},
	}, nil
}

// NewTriggered builds an event starting at day that delivers items to
// individuals broadcasting any of l.Triggers.
func NewTriggered(day int, l Listen, nodes NodeSet, t Targeting, items ...intervention.Spec) (Event, error) {
	if err := checkDay(day); err != nil {
		return Event{}, err
	}
	if len(l.Triggers) == 0 {
		return Event{}, fmt.Errorf("%w: triggered event needs at least one trigger", ErrInvalidConfig)
	}
	for _, tr := range l.Triggers {
		if tr == "" {
			return Event{}, fmt.Errorf("%w: empty trigger name", ErrInvalidConfig)
		}
	}
	if l.Duration != NeverExpires && (l.Duration < 0 || math.IsNaN(l.Duration)) {
		return Event{}, fmt.Errorf("%w: duration %v must be -1 or non-negative", ErrOutOfRange, l.Duration)
	}
	if l.Delay != nil {
		if err := l.Delay.Validate(); err != nil {
			return Event{}, fmt.Errorf("%w: delay: %w", ErrOutOfRange, err)
		}
	}
	if l.Blackout != nil && (l.Blackout.Period < 0 || math.IsNaN(l.Blackout.Period)) {
		return Event{}, fmt.Errorf("%w: blackout period %v is negative", ErrOutOfRange, l.Blackout.Period)
	}
	payload, err := payloadOf(items)
	if err != nil {
		return Event{}, err
	}
	if err := t.Validate(); err != nil {
		return Event{}, err
	}

	listen := Listen{
		Triggers:      append([]string(nil), l.Triggers...),
		Duration:      l.Duration,
		ResidentsOnly: l.ResidentsOnly,
	}
	if l.Delay != nil && !l.Delay.IsZero() {
		d := *l.Delay
		listen.Delay = &d
	}
	if l.Blackout != nil {
		b := *l.Blackout
		listen.Blackout = &b
	}
	return Event{
		StartDay: day,
		Nodes:    Nodes(nodes.IDs()...),
		Coordinator: Coordinator{
			Targeting:    t.Clone(),
			Listen:       &listen,
			Intervention: payload,
		},
	}, nil
}

// Triggered reports whether the event listens for signals.
func (e Event) Triggered() bool { return e.Coordinator.Listen != nil }

// Triggers returns the signals the event listens on, nil for scheduled events.
func (e Event) Triggers() []string {
	if e.Coordinator.Listen == nil {
		return nil
	}
	return append([]string(nil), e.Coordinator.Listen.Triggers...)
}

// Signals returns every signal the event's payload may broadcast.
func (e Event) Signals() []string {
	signals := intervention.Signals(e.Coordinator.Intervention)
	if l := e.Coordinator.Listen; l != nil && l.Blackout != nil && l.Blackout.Event != "" {
		signals = append(signals, l.Blackout.Event)
	}
	return signals
}

// Coverage is the effective coverage the coordinator applies.
func (e Event) Coverage() float64 { return e.Coordinator.Targeting.CoverageValue() }

func checkDay(day int) error {
	if day < 0 {
		return fmt.Errorf("%w: start day %d is negative", ErrOutOfRange, day)
	}
	return nil
}

func payloadOf(items []intervention.Spec) (intervention.Spec, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: event needs at least one intervention", ErrInvalidConfig)
	}
	for i, it := range items {
		if it == nil {
			return nil, fmt.Errorf("%w: intervention %d is nil", ErrInvalidConfig, i)
		}
	}
	return intervention.Bundle(items...), nil
}

const coordinatorClass = "StandardInterventionDistributionEventCoordinator"

func (e Event) MarshalJSON() ([]byte, error) {
	c := e.Coordinator
	var coord map[string]any
	switch {
	case c.Schedule != nil:
		coord = c.Targeting.fields()
		coord["Number_Repetitions"] = c.Schedule.Repetitions
		coord["Timesteps_Between_Repetitions"] = intervalField(*c.Schedule)
		coord["Intervention_Config"] = c.Intervention
	case c.Listen != nil:
		coord = Targeting{}.fields()
		coord["Number_Repetitions"] = 1
		coord["Timesteps_Between_Repetitions"] = -1
		coord["Intervention_Config"] = triggeredConfig(c)
	default:
		return nil, fmt.Errorf("%w: event has neither a schedule nor a trigger", ErrInvalidConfig)
	}
	coord["class"] = coordinatorClass

	return json.Marshal(map[string]any{
		"class":                    "CampaignEvent",
		"Start_Day":                e.StartDay,
		"Nodeset_Config":           e.Nodes,
		"Event_Coordinator_Config": coord,
	})
}

func intervalField(s Schedule) int {
	if s.Repetitions == 1 {
		return -1
	}
	return s.Interval
}

func triggeredConfig(c Coordinator) map[string]any {
	l := c.Listen
	m := c.Targeting.fields()
	m["class"] = "NodeLevelHealthTriggeredIV"
	m["Trigger_Condition_List"] = l.Triggers
	m["Duration"] = l.Duration
	m["Target_Residents_Only"] = boolField(l.ResidentsOnly)

	payload := c.Intervention
	if l.Delay != nil {
		items := []intervention.Spec{payload}
		if multi, ok := payload.(*intervention.Multi); ok {
			items = multi.Items
		}
		payload = &intervention.Delayed{Delay: *l.Delay, Items: items}
	}
	m["Actual_IndividualIntervention_Config"] = payload

	if b := l.Blackout; b != nil {
		m["Blackout_Period"] = b.Period
		m["Blackout_Event_Trigger"] = b.Event
		m["Blackout_On_First_Occurrence"] = boolField(b.OnFirstOccurrence)
	}
	return m
}

func boolField(b bool) int {
	if b {
		return 1
	}
	return 0
}
