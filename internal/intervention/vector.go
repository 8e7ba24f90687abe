package intervention

// Waning describes how an effect decays over time.
type Waning struct {
	Class     string  `yaml:"class" json:"class"`
	Initial   float64 `yaml:"initial" json:"initial"`
	DecayTime float64 `yaml:"decay_time,omitempty" json:"decay_time,omitempty"`
	BoxTime   float64 `yaml:"box_time,omitempty" json:"box_time,omitempty"`
}

func (w Waning) config() map[string]any {
	class := w.Class
	if class == "" {
		class = "WaningEffectExponential"
	}
	m := map[string]any{"class": class, "Initial_Effect": w.Initial}
	if w.DecayTime > 0 {
		m["Decay_Time_Constant"] = w.DecayTime
	}
	if w.BoxTime > 0 {
		m["Box_Duration"] = w.BoxTime
	}
	return m
}

// SimpleBednet distributes an insecticide-treated net.
type SimpleBednet struct {
	Blocking  Waning  `yaml:"blocking" json:"blocking"`
	Killing   Waning  `yaml:"killing" json:"killing"`
	Repelling Waning  `yaml:"repelling" json:"repelling"`
	Usage     Waning  `yaml:"usage" json:"usage"`
	Cost      float64 `yaml:"cost" json:"cost"`
}

func (*SimpleBednet) Class() string { return "SimpleBednet" }
func (*SimpleBednet) sealed()       {}

func (b *SimpleBednet) Params() map[string]any {
	return map[string]any{"Cost_To_Consumer": b.Cost}
}

func (b *SimpleBednet) MarshalJSON() ([]byte, error) {
	return encode(b.Class(), b.Params(), map[string]any{
		"Blocking_Config":  b.Blocking.config(),
		"Killing_Config":   b.Killing.config(),
		"Repelling_Config": b.Repelling.config(),
		"Usage_Config":     b.Usage.config(),
	})
}

// IRSHousing sprays the receiving individual's house with insecticide.
type IRSHousing struct {
	Killing   Waning  `yaml:"killing" json:"killing"`
	Repelling Waning  `yaml:"repelling" json:"repelling"`
	Cost      float64 `yaml:"cost" json:"cost"`
}

func (*IRSHousing) Class() string { return "IRSHousingModification" }
func (*IRSHousing) sealed()       {}

func (i *IRSHousing) Params() map[string]any {
	return map[string]any{"Cost_To_Consumer": i.Cost}
}

func (i *IRSHousing) MarshalJSON() ([]byte, error) {
	return encode(i.Class(), i.Params(), map[string]any{
		"Killing_Config":   i.Killing.config(),
		"Repelling_Config": i.Repelling.config(),
	})
}
