package intervention

import (
	"fmt"
	"strings"
)

// DiagnosticType is the measurement a diagnostic performs.
type DiagnosticType string

const (
	BloodSmearParasites  DiagnosticType = "BLOOD_SMEAR_PARASITES"
	BloodSmearGametocyte DiagnosticType = "BLOOD_SMEAR_GAMETOCYTES"
	PCRParasites         DiagnosticType = "PCR_PARASITES"
	PCRGametocytes       DiagnosticType = "PCR_GAMETOCYTES"
	PfHRP2               DiagnosticType = "PF_HRP2"
	TrueInfectionStatus  DiagnosticType = "TRUE_INFECTION_STATUS"
	TrueParasiteDensity  DiagnosticType = "TRUE_PARASITE_DENSITY"
	Fever                DiagnosticType = "FEVER"
)

var diagnosticTypes = []DiagnosticType{
	BloodSmearParasites, BloodSmearGametocyte, PCRParasites, PCRGametocytes,
	PfHRP2, TrueInfectionStatus, TrueParasiteDensity, Fever,
}

// ParseDiagnosticType resolves a diagnostic type name, case-insensitively.
func ParseDiagnosticType(s string) (DiagnosticType, error) {
	for _, t := range diagnosticTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDiagnostic, s)
}

// Test parameterizes a diagnostic measurement.
type Test struct {
	Type        DiagnosticType `yaml:"type" json:"type"`
	Threshold   float64        `yaml:"threshold" json:"threshold"`
	Sensitivity float64        `yaml:"sensitivity" json:"sensitivity"`
}

// DefaultTest is a blood smear with a 40/uL detection threshold and
// sensitivity 0.1.
func DefaultTest() Test {
	return Test{Type: BloodSmearParasites, Threshold: 40, Sensitivity: 0.1}
}

// Diagnostic tests the receiving individual and delivers Positive or
// Negative depending on the outcome.
type Diagnostic struct {
	Test     Test
	Positive Spec
	Negative Spec
}

func (*Diagnostic) Class() string { return "MalariaDiagnostic" }
func (*Diagnostic) sealed()       {}

func (d *Diagnostic) Params() map[string]any {
	return map[string]any{
		"Diagnostic_Type":         string(d.Test.Type),
		"Detection_Threshold":     d.Test.Threshold,
		"Measurement_Sensitivity": d.Test.Sensitivity,
		"Event_Or_Config":         "Config",
	}
}

func (d *Diagnostic) MarshalJSON() ([]byte, error) {
	nested := make(map[string]any, 2)
	if d.Positive != nil {
		nested["Positive_Diagnosis_Config"] = d.Positive
	}
	if d.Negative != nil {
		nested["Negative_Diagnosis_Config"] = d.Negative
	}
	return encode(d.Class(), d.Params(), nested)
}
