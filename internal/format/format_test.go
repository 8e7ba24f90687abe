package format_test

import (
	"strings"
	"testing"

	"campaigner/internal/cascade"
	"campaigner/internal/drugcampaign"
	"campaigner/internal/format"
)

func TestNewTable_ASCII(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Event", "Day")
	tb.Row("E0", 11)
	out := tb.String()

	for _, want := range []string{"Event", "E0", "11", "───"} {
		if !containsFold(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNewTable_MarkdownFooter(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Type", "Events")
	tb.Row("MDA", 1)
	tb.Footer("TOTAL", 1)
	out := tb.String()

	for _, want := range []string{"| Type", "---", "TOTAL"} {
		if !containsFold(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]format.Mode{"": format.ASCII, "ASCII": format.ASCII, "md": format.Markdown, "markdown": format.Markdown} {
		got, err := format.ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := format.ParseMode("html"); err == nil {
		t.Error("ParseMode(html) should fail")
	}
}

func TestCascade(t *testing.T) {
	rows := []cascade.Row{
		{ID: "E0", StartDay: 20, Kind: "triggered", Window: "60d", Coverage: "0.78", Listens: "HappyBirthday", Emits: "MSAT_Positive_1", Actions: "MalariaDiagnostic"},
		{ID: "E1", StartDay: 19, Kind: "triggered", Window: "61d", Coverage: "1", Listens: "MSAT_Positive_1", Actions: "AntimalarialDrug"},
	}
	out := format.Cascade(rows, format.Markdown)
	for _, want := range []string{"HappyBirthday", "MSAT_Positive_1", "61d", "2 events"} {
		if !containsFold(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestDescriptors(t *testing.T) {
	out := format.Descriptors([]drugcampaign.Descriptor{
		{Type: drugcampaign.MDA, Coverage: 0.3, Drugs: []string{"Artemether", "Lumefantrine"}, Events: 1},
		{Type: drugcampaign.FMDA, Coverage: 0.9, TriggerCoverage: 0.5, Drugs: []string{"DHA"}, Events: 3, Tethers: []string{"fMDA_Treat_1"}},
	}, format.ASCII)
	for _, want := range []string{"Artemether+Lumefantrine", "Focal MDA", "fMDA_Treat_1", "0.5", "TOTAL", "4"} {
		if !containsFold(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Diagnostic_Survey_0", 30, "Diagnostic_Survey_0"},
		{"Diagnostic_Survey_0", 10, "Diagnos..."},
		{"abcdef", 3, "abc"},
		{"ünïcödé", 5, "ün..."},
	}
	for _, tc := range tests {
		if got := format.Truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

// containsFold matches ignoring case; ASCII headers and footers render
// upper-cased.
func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
