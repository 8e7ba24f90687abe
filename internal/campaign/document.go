package campaign

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Document is the ordered list of events forming one campaign file. It is
// written by a single composer at a time and is not safe for concurrent use.
type Document struct {
	events []Event
}

// NewDocument returns an empty document.
func NewDocument() *Document { return &Document{} }

// Append adds events in order.
func (d *Document) Append(events ...Event) {
	d.events = append(d.events, events...)
}

// Events returns a copy of the event list.
func (d *Document) Events() []Event {
	return append([]Event(nil), d.events...)
}

// Len returns the number of events.
func (d *Document) Len() int { return len(d.events) }

// CustomEvents returns every signal name the document listens on or
// broadcasts that is not a built-in engine event, sorted. The engine
// configuration must declare these before the campaign can run.
func (d *Document) CustomEvents() []string {
	seen := make(map[string]bool)
	for _, e := range d.events {
		for _, s := range e.Triggers() {
			seen[s] = true
		}
		for _, s := range e.Signals() {
			seen[s] = true
		}
	}
	var out []string
	for s := range seen {
		if !IsBuiltinEvent(s) {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func (d *Document) MarshalJSON() ([]byte, error) {
	events := d.events
	if events == nil {
		events = []Event{}
	}
	return json.Marshal(struct {
		Events      []Event `json:"Events"`
		UseDefaults int     `json:"Use_Defaults"`
	}{Events: events, UseDefaults: 1})
}

// WriteFile writes the indented JSON document to path.
func (d *Document) WriteFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal campaign: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write campaign: %w", err)
	}
	return nil
}
