// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output and tables. Keep raw codes for JSON
// fields, map keys, and equality comparisons.
package display

import "strings"

// --- Cascade Types ---

var cascadeTypes = map[string]string{
	"MDA":              "Mass Drug Administration",
	"SMC":              "Seasonal Malaria Chemoprevention",
	"MSAT":             "Mass Screen and Treat",
	"MTAT":             "Mass Test and Treat",
	"fMDA":             "Focal MDA",
	"rfMSAT":           "Reactive Focal MSAT",
	"rfMDA":            "Reactive Focal MDA",
	"TreatmentSeeking": "Treatment Seeking",
	"Scheduled":        "Scheduled Distribution",
	"Triggered":        "Triggered Distribution",
}

// CascadeType returns the human-readable name for a cascade type.
// Unknown types are returned as-is.
func CascadeType(code string) string {
	if name, ok := cascadeTypes[code]; ok {
		return name
	}
	return code
}

// CascadeTypeWithCode returns "Focal MDA (fMDA)" format.
func CascadeTypeWithCode(code string) string {
	if name, ok := cascadeTypes[code]; ok {
		return name + " (" + code + ")"
	}
	return code
}

// --- Drug Codes ---

var drugCodes = map[string]string{
	"AL":      "Artemether-Lumefantrine",
	"ALP":     "Artemether-Lumefantrine + Primaquine",
	"ASAQ":    "Artesunate-Amodiaquine",
	"DP":      "Dihydroartemisinin-Piperaquine",
	"DPP":     "Dihydroartemisinin-Piperaquine + Primaquine",
	"PPQ":     "Piperaquine",
	"DHA_PQ":  "Dihydroartemisinin + Primaquine",
	"DHA":     "Dihydroartemisinin",
	"PMQ":     "Primaquine",
	"DA":      "Dihydroartemisinin + Abstract",
	"CQ":      "Chloroquine",
	"SP":      "Sulfadoxine-Pyrimethamine",
	"SPP":     "Sulfadoxine-Pyrimethamine + Primaquine",
	"SPA":     "Sulfadoxine-Pyrimethamine + Amodiaquine",
	"Vehicle": "Vehicle (placebo)",
}

// DrugCode returns the regimen name for a drug code.
// "DP" -> "Dihydroartemisinin-Piperaquine".
func DrugCode(code string) string {
	if name, ok := drugCodes[code]; ok {
		return name
	}
	return code
}

// DrugCodeWithCode returns "Artemether-Lumefantrine (AL)" format.
func DrugCodeWithCode(code string) string {
	if name, ok := drugCodes[code]; ok {
		return name + " (" + code + ")"
	}
	return code
}

// --- Diagnostics ---

var diagnostics = map[string]string{
	"BLOOD_SMEAR_PARASITES":   "Blood Smear (parasites)",
	"BLOOD_SMEAR_GAMETOCYTES": "Blood Smear (gametocytes)",
	"PCR_PARASITES":           "PCR (parasites)",
	"PCR_GAMETOCYTES":         "PCR (gametocytes)",
	"PF_HRP2":                 "PfHRP2 Rapid Test",
	"TRUE_INFECTION_STATUS":   "True Infection Status",
	"TRUE_PARASITE_DENSITY":   "True Parasite Density",
	"FEVER":                   "Fever",
}

// Diagnostic returns the human-readable name for a diagnostic type.
func Diagnostic(code string) string {
	if name, ok := diagnostics[code]; ok {
		return name
	}
	return code
}

// --- Paths ---

// Path joins cascade steps into a readable chain.
// ["E0", "E1", "E0"] -> "E0 -> E1 -> E0"
func Path(steps []string) string {
	return strings.Join(steps, " -> ")
}
