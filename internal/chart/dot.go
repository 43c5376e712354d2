package chart

import (
	"bytes"
	"fmt"
	"sort"
)

// Edge represents a transition edge.
type Edge struct {
	From  string
	To    string
	Label string
}

// ExportDOT generates Graphviz DOT source for the chart. The state named by
// current, if any, is highlighted.
func ExportDOT(cfg Config, current string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", cfg.ID)
	buf.WriteString(`  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	fmt.Fprintf(&buf, "  __start [shape=point];\n  __start -> %q;\n", cfg.Initial)

	for _, s := range cfg.States {
		attrs := ""
		if s.Final {
			attrs += " shape=doublecircle"
		}
		if s.ID == current {
			attrs += " style=filled fillcolor=lightgreen"
		}
		fmt.Fprintf(&buf, "  %q [label=%q%s];\n", s.ID, s.ID, attrs)
	}

	for _, e := range collectEdges(cfg) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// collectEdges collects all transitions in state order, events sorted by name.
// Guarded transitions are labelled "event [guard]".
func collectEdges(cfg Config) []Edge {
	var edges []Edge
	for _, s := range cfg.States {
		events := make([]string, 0, len(s.On))
		for event := range s.On {
			events = append(events, event)
		}
		sort.Strings(events)
		for _, event := range events {
			for _, t := range s.On[event] {
				label := event
				if t.Guard != "" {
					label = fmt.Sprintf("%s [%s]", event, t.Guard)
				}
				edges = append(edges, Edge{From: s.ID, To: t.Target, Label: label})
			}
		}
	}
	return edges
}
