package campaign

// Signals the engine raises on its own. Cascades may listen on these
// without declaring them.
const (
	Births           = "Births"
	EveryUpdate      = "EveryUpdate"
	HappyBirthday    = "HappyBirthday"
	NewInfection     = "NewInfectionEvent"
	NewClinicalCase  = "NewClinicalCase"
	NewSevereCase    = "NewSevereCase"
	InfectionCleared = "InfectionCleared"
	TestedPositive   = "TestedPositive"
	TestedNegative   = "TestedNegative"
)

var builtinEvents = make(map[string]bool)

func init() {
	for _, name := range []string{
		Births, EveryUpdate, HappyBirthday, NewInfection, NewClinicalCase,
		NewSevereCase, InfectionCleared, TestedPositive, TestedNegative,
		"Emigrating", "Immigrating", "GaveBirth", "Pregnant", "DiseaseDeaths",
		"NonDiseaseDeaths", "PropertyChange", "NewlySymptomatic",
		"SymptomaticCleared", "NewMalariaInfectionObject", "ExposureComplete",
		"InterventionDisqualified",
	} {
		builtinEvents[name] = true
	}
}

// IsBuiltinEvent reports whether name is raised by the engine itself.
func IsBuiltinEvent(name string) bool { return builtinEvents[name] }

// ReceivedTreatment is broadcast by treated individuals and arms reactive
// cascades. It is not built in and must be declared.
const ReceivedTreatment = "Received_Treatment"
