package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/step"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the description and status lines in node labels.
	// When false, only the label is shown.
	Detailed bool

	// Pinned pins every node to its stored canvas position instead of
	// letting the dot engine compute a fresh top-down layout.
	Pinned bool
}

// ToDOT converts a procedure graph to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes are filled by health status and the root keeps a distinct shape.
// With [Options.Pinned] the source carries a layout=neato attribute and
// per-node positions, so rendering reproduces the editor placement.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
	}
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label, opts.Pinned)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.Data.Label
	}

	parts := []string{n.Data.Label}
	if n.Data.Description != "" {
		parts = append(parts, n.Data.Description)
	}
	parts = append(parts, "run: "+string(n.Data.Execution), "health: "+string(n.Data.Health))
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, label string, pinned bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.IsRoot() {
		attrs = append(attrs, "shape=ellipse", "penwidth=2")
	}
	if fill := healthFill(n.Data.Health); fill != "" {
		attrs = append(attrs, "fillcolor="+fill)
	}
	if pinned {
		// Canvas y grows downward, Graphviz y grows upward.
		attrs = append(attrs, fmt.Sprintf(`pos="%.0f,%.0f!"`, n.Position.X, -n.Position.Y))
	}
	return attrs
}

// healthFill maps a health status to a Graphviz fill color. Unknown health
// keeps the default white fill.
func healthFill(h step.HealthStatus) string {
	switch h {
	case step.HealthHealthy:
		return "palegreen"
	case step.HealthWarning:
		return "khaki"
	case step.HealthCritical:
		return "lightcoral"
	case step.HealthError:
		return "tomato"
	}
	return ""
}
