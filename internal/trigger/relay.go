package trigger

import (
	"fmt"
	"math"

	"campaigner/internal/campaign"
	"campaigner/internal/intervention"
)

// Relay describes a chain forwarding Sources into Target, once per
// repetition.
type Relay struct {
	Sources     []string
	Target      Handle
	Repetitions int
	// Delay and Interval are in days; relay k forwards after
	// Delay + k*Interval.
	Delay    float64
	Interval float64

	StartDay  int
	Duration  float64
	Nodes     campaign.NodeSet
	Targeting campaign.Targeting
}

// Needed reports whether r produces any relay event. A single undelayed
// repetition needs none: the downstream event listens on Sources directly.
func (r Relay) Needed() bool {
	return !(r.Repetitions == 1 && r.Delay == 0)
}

// RelayChain returns one triggered event per repetition, each listening on
// r.Sources and broadcasting r.Target after its offset.
func RelayChain(f *intervention.Factory, r Relay) ([]campaign.Event, error) {
	if r.Repetitions < 1 {
		return nil, fmt.Errorf("%w: relay repetitions %d must be at least 1", campaign.ErrOutOfRange, r.Repetitions)
	}
	if r.Delay < 0 || math.IsNaN(r.Delay) {
		return nil, fmt.Errorf("%w: relay delay %v is negative", campaign.ErrOutOfRange, r.Delay)
	}
	if r.Repetitions > 1 && (r.Interval < 0 || math.IsNaN(r.Interval)) {
		return nil, fmt.Errorf("%w: relay interval %v is negative", campaign.ErrOutOfRange, r.Interval)
	}
	if r.Target.IsZero() {
		return nil, fmt.Errorf("%w: relay has no target tether", campaign.ErrInvalidConfig)
	}
	if !r.Needed() {
		return nil, nil
	}

	out := make([]campaign.Event, 0, r.Repetitions)
	for k := range r.Repetitions {
		broadcast, err := f.Broadcast(r.Target.String())
		if err != nil {
			return nil, err
		}
		delay := intervention.Constant(r.Delay + float64(k)*r.Interval)
		ev, err := campaign.NewTriggered(r.StartDay, campaign.Listen{
			Triggers: r.Sources,
			Delay:    &delay,
			Duration: r.Duration,
		}, r.Nodes, r.Targeting, broadcast)
		if err != nil {
			return nil, fmt.Errorf("relay %d: %w", k, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
