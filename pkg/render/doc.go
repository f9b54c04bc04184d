// Package render draws procedure graphs as node-link diagrams.
//
// # Overview
//
// This package produces the read-only visualization of a procedure: nodes
// appear as boxes connected by arrows, filled with the health status they
// last reported. It backs the console's render endpoint and the render
// CLI command.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := render.ToDOT(g, render.Options{})
//	svg, err := render.RenderSVG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the description and both statuses
//   - Pinned: nodes keep their stored canvas positions instead of getting
//     a fresh top-down layout
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// Plain diagrams use top-to-bottom layout (rankdir=TB) with rounded box
// nodes. Pinned diagrams embed a layout=neato attribute and per-node
// positions, so the same [RenderSVG] call reproduces the editor placement.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. No external Graphviz installation is required.
package render
