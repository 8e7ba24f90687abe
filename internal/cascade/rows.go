package cascade

import (
	"strconv"
	"strings"
)

// Row is the tabular view of one event.
type Row struct {
	ID       string
	StartDay int
	Kind     string
	Window   string
	Coverage string
	Listens  string
	Emits    string
	Actions  string
}

// Rows returns one Row per node of g.
func Rows(g *Graph) []Row {
	out := make([]Row, len(g.Nodes))
	for i, n := range g.Nodes {
		ev := n.Event
		r := Row{
			ID:       n.ID,
			StartDay: ev.StartDay,
			Listens:  strings.Join(n.Listens, " "),
			Emits:    strings.Join(n.Emits, " "),
			Actions:  actionSummary(n),
		}
		if tc := ev.Coordinator.Targeting.TargetCount; tc != nil {
			r.Coverage = "n=" + strconv.Itoa(*tc)
		} else {
			r.Coverage = strconv.FormatFloat(ev.Coverage(), 'g', -1, 64)
		}
		if l := ev.Coordinator.Listen; l != nil {
			r.Kind = "triggered"
			r.Window = "for ever"
			if l.Duration >= 0 {
				r.Window = strconv.FormatFloat(l.Duration, 'g', -1, 64) + "d"
			}
			if l.Delay != nil {
				r.Window += " +" + l.Delay.String()
			}
		} else if s := ev.Coordinator.Schedule; s != nil {
			r.Kind = "scheduled"
			r.Window = "x" + strconv.Itoa(s.Repetitions)
			if s.Repetitions > 1 {
				r.Window += " every " + strconv.Itoa(s.Interval) + "d"
			}
		}
		out[i] = r
	}
	return out
}
