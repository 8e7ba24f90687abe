package cascade

import (
	"fmt"
	"strings"

	"campaigner/internal/intervention"
)

// Render returns a Mermaid flowchart of g. Signals no event broadcasts
// appear as rounded source nodes.
func Render(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, s := range g.External() {
		fmt.Fprintf(&b, "    %s([\"%s\"])\n", signalID(s), s)
	}
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", n.ID, label(n))
	}
	for _, s := range g.External() {
		for _, n := range g.Nodes {
			for _, l := range n.Listens {
				if l == s {
					fmt.Fprintf(&b, "    %s --> %s\n", signalID(s), n.ID)
				}
			}
		}
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "    %s -->|\"%s\"| %s\n", g.Nodes[e.From].ID, e.Signal, g.Nodes[e.To].ID)
	}
	return b.String()
}

func label(n Node) string {
	kind := "scheduled"
	if n.Event.Triggered() {
		kind = "triggered"
	}
	return fmt.Sprintf("%s day %d %s: %s", n.ID, n.Event.StartDay, kind, actionSummary(n))
}

// actionSummary lists the leaf classes of the event's payload.
func actionSummary(n Node) string {
	var leaves []string
	intervention.Walk(n.Event.Coordinator.Intervention, func(s intervention.Spec) {
		if len(intervention.Children(s)) == 0 {
			leaves = append(leaves, s.Class())
		}
	})
	return strings.Join(leaves, ", ")
}

func signalID(s string) string {
	var b strings.Builder
	b.WriteString("S_")
	for _, r := range s {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
