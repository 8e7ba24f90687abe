package format

import (
	"strings"

	"campaigner/internal/cascade"
	"campaigner/internal/display"
	"campaigner/internal/drugcampaign"
)

// Cascade renders one row per event of an analysed document.
func Cascade(rows []cascade.Row, m Mode) string {
	tb := NewTable(m)
	tb.Header("Event", "Day", "Kind", "Window", "Coverage", "Listens", "Emits", "Actions")
	tb.Columns(
		ColumnConfig{Number: 2, Align: AlignRight},
		ColumnConfig{Number: 5, Align: AlignRight},
		ColumnConfig{Number: 8, MaxWidth: 48},
	)
	for _, r := range rows {
		tb.Row(r.ID, r.StartDay, r.Kind, r.Window, r.Coverage, r.Listens, r.Emits, r.Actions)
	}
	tb.Footer("", "", "", "", "", "", "", plural(len(rows), "event"))
	return tb.String()
}

// Descriptors renders the summaries of the drug campaigns in one build.
func Descriptors(ds []drugcampaign.Descriptor, m Mode) string {
	tb := NewTable(m)
	tb.Header("Type", "Strategy", "Coverage", "Trigger coverage", "Drugs", "Events", "Tethers")
	tb.Columns(ColumnConfig{Number: 6, Align: AlignRight})
	total := 0
	for _, d := range ds {
		tc := "-"
		if d.TriggerCoverage > 0 {
			tc = formatFloat(d.TriggerCoverage)
		}
		tb.Row(string(d.Type), display.CascadeType(string(d.Type)), formatFloat(d.Coverage), tc, strings.Join(d.Drugs, "+"), d.Events, Truncate(strings.Join(d.Tethers, " "), 60))
		total += d.Events
	}
	tb.Footer("", "", "", "", "TOTAL", total, "")
	return tb.String()
}

// Listing renders name/description pairs.
func Listing(header [2]string, items [][2]string, m Mode) string {
	tb := NewTable(m)
	tb.Header(header[0], header[1])
	tb.Columns(ColumnConfig{Number: 2, MaxWidth: 72})
	for _, it := range items {
		tb.Row(it[0], it[1])
	}
	return tb.String()
}
