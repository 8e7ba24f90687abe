package intervention

import (
	"fmt"
	"math"

	"campaigner/internal/schema"
)

// Factory builds interventions and validates each against a schema at
// construction time.
type Factory struct {
	schema schema.Provider
}

// NewFactory returns a Factory validating against p.
func NewFactory(p schema.Provider) *Factory {
	return &Factory{schema: p}
}

// engineForever is the engine's "no limit" duration, the largest float32.
const engineForever = 3.40282e+38

// NewBuiltinFactory returns a Factory validating against the embedded class
// descriptions.
func NewBuiltinFactory() (*Factory, error) {
	reg, err := schema.Builtin()
	if err != nil {
		return nil, err
	}
	return NewFactory(reg), nil
}

// Check validates s and every payload nested inside it.
func (f *Factory) Check(s Spec) error {
	if s == nil {
		return fmt.Errorf("%w: nil intervention", ErrInvalid)
	}
	var err error
	Walk(s, func(n Spec) {
		if err != nil {
			return
		}
		c, cerr := f.schema.Class(n.Class())
		if cerr != nil {
			err = cerr
			return
		}
		err = c.Validate(n.Params())
	})
	return err
}

// Drugs returns one AntimalarialDrug per name, in order.
func (f *Factory) Drugs(names ...string) ([]Spec, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one drug is required", ErrInvalid)
	}
	out := make([]Spec, 0, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty drug name", ErrInvalid)
		}
		d := &AntimalarialDrug{Drug: name, Cost: 1}
		if err := f.Check(d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Adherent validates a caller-configured drug course and returns a copy.
func (f *Factory) Adherent(cfg AdherentDrug) (Spec, error) {
	if len(cfg.Doses) == 0 || len(cfg.DrugNames()) == 0 {
		return nil, fmt.Errorf("%w: adherent drug needs at least one dose", ErrInvalid)
	}
	if len(cfg.NonAdherenceOptions) != len(cfg.NonAdherenceDistribution) {
		return nil, fmt.Errorf("%w: %d non-adherence options but %d probabilities",
			ErrInvalid, len(cfg.NonAdherenceOptions), len(cfg.NonAdherenceDistribution))
	}
	d := cfg
	d.Doses = make([][]string, len(cfg.Doses))
	for i, dose := range cfg.Doses {
		d.Doses[i] = append([]string(nil), dose...)
	}
	d.NonAdherenceOptions = append([]string(nil), cfg.NonAdherenceOptions...)
	d.NonAdherenceDistribution = append([]float64(nil), cfg.NonAdherenceDistribution...)
	if cfg.Adherence != nil {
		d.Adherence = make(map[string]any, len(cfg.Adherence))
		for k, v := range cfg.Adherence {
			d.Adherence[k] = v
		}
	}
	if d.DoseInterval == 0 {
		d.DoseInterval = 1
	}
	if d.Cost == 0 {
		d.Cost = 1
	}
	if err := f.Check(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Broadcast returns a BroadcastEvent for event.
func (f *Factory) Broadcast(event string) (Spec, error) {
	if event == "" {
		return nil, fmt.Errorf("%w: broadcast event name is empty", ErrInvalid)
	}
	b := &BroadcastEvent{Event: event}
	if err := f.Check(b); err != nil {
		return nil, err
	}
	return b, nil
}

// BroadcastToNodes returns a cross-node broadcast of event reaching nodes
// within radiusKm (per sel) and always the sender's own node.
func (f *Factory) BroadcastToNodes(event string, radiusKm float64, sel NodeSelection) (Spec, error) {
	if event == "" {
		return nil, fmt.Errorf("%w: broadcast event name is empty", ErrInvalid)
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		return nil, fmt.Errorf("%w: radius %v must be a non-negative number", ErrInvalid, radiusKm)
	}
	if sel == "" {
		sel = DistanceOnly
	}
	b := &BroadcastToNodes{Event: event, MaxDistanceKm: radiusKm, Selection: sel, IncludeMyNode: true}
	if err := f.Check(b); err != nil {
		return nil, err
	}
	return b, nil
}

// PropertyChange sets key to value, reverting after revert days when
// revert is positive.
func (f *Factory) PropertyChange(key, value string, revert float64) (Spec, error) {
	if key == "" || value == "" {
		return nil, fmt.Errorf("%w: property change needs a key and a value", ErrInvalid)
	}
	p := &PropertyChange{Key: key, Value: value, Revert: revert, DailyProbability: 1, MaxDuration: engineForever}
	if err := f.Check(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Diagnostic wraps a test around its outcome payloads.
func (f *Factory) Diagnostic(test Test, positive, negative Spec) (Spec, error) {
	t, err := ParseDiagnosticType(string(test.Type))
	if err != nil {
		return nil, err
	}
	test.Type = t
	d := &Diagnostic{Test: test, Positive: positive, Negative: negative}
	if err := f.Check(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delayed wraps items in delay.
func (f *Factory) Delayed(delay Delay, items ...Spec) (Spec, error) {
	if err := delay.Validate(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: delayed intervention needs at least one payload", ErrInvalid)
	}
	d := &Delayed{Delay: delay, Items: append([]Spec(nil), items...)}
	if err := f.Check(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Bednet validates and copies a bednet configuration.
func (f *Factory) Bednet(cfg SimpleBednet) (Spec, error) {
	b := cfg
	if err := f.Check(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// IRS validates and copies an indoor residual spraying configuration.
func (f *Factory) IRS(cfg IRSHousing) (Spec, error) {
	i := cfg
	if err := f.Check(&i); err != nil {
		return nil, err
	}
	return &i, nil
}
