package intervention

import (
	"fmt"
	"math"
)

// DelayKind is the distribution a delay is drawn from.
type DelayKind string

const (
	DelayConstant    DelayKind = "CONSTANT_DISTRIBUTION"
	DelayExponential DelayKind = "EXPONENTIAL_DISTRIBUTION"
)

// Delay postpones delivery by a constant number of days or by an
// exponentially distributed number of days with mean Value.
type Delay struct {
	Kind  DelayKind
	Value float64
}

// Constant returns a fixed delay of days.
func Constant(days float64) Delay { return Delay{Kind: DelayConstant, Value: days} }

// Exponential returns an exponentially distributed delay with the given mean.
func Exponential(mean float64) Delay { return Delay{Kind: DelayExponential, Value: mean} }

// IsZero reports whether d delays nothing.
func (d Delay) IsZero() bool {
	return d.Kind == "" || (d.Kind == DelayConstant && d.Value == 0)
}

// Validate checks a constant delay is non-negative and an exponential mean is
// strictly positive.
func (d Delay) Validate() error {
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
		return fmt.Errorf("%w: delay %v is not finite", ErrInvalid, d.Value)
	}
	switch d.Kind {
	case DelayConstant:
		if d.Value < 0 {
			return fmt.Errorf("%w: constant delay %v is negative", ErrInvalid, d.Value)
		}
	case DelayExponential:
		if d.Value <= 0 {
			return fmt.Errorf("%w: exponential delay mean %v must be positive", ErrInvalid, d.Value)
		}
	default:
		return fmt.Errorf("%w: unknown delay distribution %q", ErrInvalid, d.Kind)
	}
	return nil
}

func (d Delay) String() string {
	if d.Kind == DelayExponential {
		return fmt.Sprintf("exp(%g)", d.Value)
	}
	return fmt.Sprintf("%g", d.Value)
}

func (d Delay) params() map[string]any {
	p := map[string]any{"Delay_Period_Distribution": string(d.Kind)}
	if d.Kind == DelayExponential {
		p["Delay_Period_Exponential"] = d.Value
	} else {
		p["Delay_Period_Constant"] = d.Value
	}
	return p
}

// Delayed delivers Items after Delay.
type Delayed struct {
	Delay Delay
	Items []Spec
}

func (*Delayed) Class() string { return "DelayedIntervention" }
func (*Delayed) sealed()       {}

func (d *Delayed) Params() map[string]any { return d.Delay.params() }

func (d *Delayed) MarshalJSON() ([]byte, error) {
	return encode(d.Class(), d.Params(), map[string]any{
		"Actual_IndividualIntervention_Configs": d.Items,
	})
}

// Multi delivers Items together, in order.
type Multi struct {
	Items []Spec
}

func (*Multi) Class() string          { return "MultiInterventionDistributor" }
func (*Multi) sealed()                {}
func (*Multi) Params() map[string]any { return map[string]any{} }

func (m *Multi) MarshalJSON() ([]byte, error) {
	return encode(m.Class(), nil, map[string]any{"Intervention_List": m.Items})
}
