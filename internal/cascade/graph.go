// Package cascade analyses the signal graph of a campaign document: which
// events arm which, whether the wiring loops, and whether every tether has
// a sender.
package cascade

import (
	"fmt"
	"slices"

	"campaigner/internal/campaign"
	"campaigner/internal/display"
)

// Node is one event of the document.
type Node struct {
	ID      string
	Event   campaign.Event
	Listens []string
	Emits   []string
}

// Edge connects an event broadcasting Signal to an event listening on it.
type Edge struct {
	From   int
	To     int
	Signal string
}

// Graph is the signal graph of a document. Node i is event i.
type Graph struct {
	Nodes []Node
	Edges []Edge

	edgeIndex map[int][]Edge
	senders   map[string][]int
}

// Analyze builds the graph of doc's events.
func Analyze(doc *campaign.Document) *Graph {
	events := doc.Events()
	g := &Graph{
		Nodes:     make([]Node, len(events)),
		edgeIndex: make(map[int][]Edge),
		senders:   make(map[string][]int),
	}
	for i, ev := range events {
		g.Nodes[i] = Node{
			ID:      fmt.Sprintf("E%d", i),
			Event:   ev,
			Listens: ev.Triggers(),
			Emits:   ev.Signals(),
		}
		for _, s := range g.Nodes[i].Emits {
			g.senders[s] = append(g.senders[s], i)
		}
	}
	for to, n := range g.Nodes {
		for _, s := range n.Listens {
			for _, from := range g.senders[s] {
				e := Edge{From: from, To: to, Signal: s}
				g.Edges = append(g.Edges, e)
				g.edgeIndex[from] = append(g.edgeIndex[from], e)
			}
		}
	}
	return g
}

// EdgesFrom returns the edges leaving node i in document order.
func (g *Graph) EdgesFrom(i int) []Edge { return g.edgeIndex[i] }

// Senders returns the nodes broadcasting signal.
func (g *Graph) Senders(signal string) []int {
	return slices.Clone(g.senders[signal])
}

// External returns the sorted signals listened on that no event in the
// document broadcasts: engine events and signals raised by other
// campaigns.
func (g *Graph) External() []string {
	var out []string
	for _, n := range g.Nodes {
		for _, s := range n.Listens {
			if len(g.senders[s]) == 0 && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Validate reports the first cycle as ErrCycle and the first tether,
// as decided by isTether, that is listened on but never broadcast as
// ErrDanglingTether. A nil isTether checks cycles only.
func Validate(g *Graph, isTether func(string) bool) error {
	if path := g.findCycle(); path != nil {
		ids := make([]string, len(path))
		for i, n := range path {
			ids[i] = g.Nodes[n].ID
		}
		return fmt.Errorf("%w: %s", ErrCycle, display.Path(ids))
	}
	if isTether == nil {
		return nil
	}
	for _, s := range g.External() {
		if isTether(s) {
			return fmt.Errorf("%w: %s", ErrDanglingTether, s)
		}
	}
	return nil
}

// findCycle returns a node path whose last node equals its first, or nil.
func (g *Graph) findCycle() []int {
	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(g.Nodes))
	var stack []int

	var visit func(n int) []int
	visit = func(n int) []int {
		state[n] = active
		stack = append(stack, n)
		for _, e := range g.edgeIndex[n] {
			switch state[e.To] {
			case active:
				start := slices.Index(stack, e.To)
				return append(slices.Clone(stack[start:]), e.To)
			case unvisited:
				if p := visit(e.To); p != nil {
					return p
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}
	for n := range g.Nodes {
		if state[n] == unvisited {
			if p := visit(n); p != nil {
				return p
			}
		}
	}
	return nil
}
