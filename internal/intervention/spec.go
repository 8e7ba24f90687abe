// Package intervention holds the leaf actions a campaign event delivers and
// the composite wrappers around them.
//
// Every kind is an explicit variant of the sealed Spec union. Variants are
// plain values; Factory builds them and validates their parameters against a
// schema.Provider so a document never carries a parameter the engine would
// reject.
package intervention

import (
	"encoding/json"
	"sort"
)

// Spec is one node of an intervention payload tree.
type Spec interface {
	// Class is the engine class name emitted as the "class" discriminator.
	Class() string
	// Params returns the variant's own scalar parameters, keyed by their
	// engine names. Nested payloads are not included.
	Params() map[string]any
	json.Marshaler
	sealed()
}

// Bundle returns the payload delivering items together: the item itself
// when there is exactly one, a Multi otherwise.
func Bundle(items ...Spec) Spec {
	if len(items) == 1 {
		return items[0]
	}
	return &Multi{Items: append([]Spec(nil), items...)}
}

// Children returns the payloads nested directly inside s.
func Children(s Spec) []Spec {
	switch v := s.(type) {
	case *Multi:
		return v.Items
	case *Delayed:
		return v.Items
	case *Diagnostic:
		var out []Spec
		if v.Positive != nil {
			out = append(out, v.Positive)
		}
		if v.Negative != nil {
			out = append(out, v.Negative)
		}
		return out
	}
	return nil
}

// Walk visits s and every nested payload depth-first, parents first.
func Walk(s Spec, fn func(Spec)) {
	if s == nil {
		return
	}
	fn(s)
	for _, c := range Children(s) {
		Walk(c, fn)
	}
}

// Signals returns the sorted, de-duplicated names of every event broadcast
// anywhere inside s, including cross-node broadcasts and both diagnostic
// outcomes.
func Signals(s Spec) []string {
	seen := make(map[string]bool)
	Walk(s, func(n Spec) {
		switch v := n.(type) {
		case *BroadcastEvent:
			seen[v.Event] = true
		case *BroadcastToNodes:
			seen[v.Event] = true
		}
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Classes returns the class names inside s in visiting order.
func Classes(s Spec) []string {
	var out []string
	Walk(s, func(n Spec) { out = append(out, n.Class()) })
	return out
}

func encode(class string, params map[string]any, nested map[string]any) ([]byte, error) {
	m := make(map[string]any, len(params)+len(nested)+1)
	for k, v := range params {
		m[k] = v
	}
	for k, v := range nested {
		m[k] = v
	}
	m["class"] = class
	return json.Marshal(m)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
