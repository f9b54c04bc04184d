// Package pkg provides the core libraries for sopgraph procedure editing.
//
// # Overview
//
// Sopgraph edits operational diagnostic procedures: trees of steps an
// operator walks through when triaging an incident. Internally every
// procedure is edited as a directed graph so that steps keep stable
// identities across mutations. The pkg directory is organized into three
// main areas:
//
//  1. Domain model ([step], [graph], [graph/layout], [editor])
//  2. Input/output ([io], [render])
//  3. Infrastructure ([store], [cache], [observability], [errors])
//
// # Architecture
//
// The typical data flow through sopgraph:
//
//	Procedure JSON (tree or graph shape)
//	         ↓
//	    [io] package (shape detection + decoding)
//	         ↓
//	    [graph] package (editable graph, tree conversion)
//	         ↓
//	    [editor] package (add/edit/delete/copy mutations)
//	         ↓
//	    [graph/layout] package (canvas positions)
//	         ↓
//	    [render] package (DOT/SVG preview)
//
// # Quick Start
//
// Load a stored procedure, mutate it, and stage the result for saving:
//
//	import (
//	    "github.com/opsdeck/sopgraph/pkg/editor"
//	    "github.com/opsdeck/sopgraph/pkg/graph"
//	    sopio "github.com/opsdeck/sopgraph/pkg/io"
//	)
//
//	// 1. Load a stored procedure
//	doc, _ := sopio.ImportJSON("triage.json")
//
//	// 2. Open an editing session
//	sess, _ := editor.Open(doc.Tree, logger)
//
//	// 3. Mutate the graph
//	root, _ := sess.Graph().Root()
//	sess.AddChild(root.ID, graph.NodeData{
//	    Label:       "Check disk",
//	    Description: "df on the affected host",
//	})
//
//	// 4. Recompute positions and stage for saving
//	sess.Arrange()
//	tree, _ := sess.Stage()
//
// # Main Packages
//
// ## Domain Model
//
// [step] - The step tree model: labels, descriptions, execution and health
// statuses, recursive validation, and the JSON schema the server enforces
// on uploads.
//
// [graph] - Directed graph of identified nodes with insertion-ordered
// adjacency. Converts trees to graphs ([graph.FromStep]) and back
// ([graph.Graph.ToStep]), and validates structure (single root, no cycles).
//
// [graph/layout] - Canvas positioning. [layout.Arrange] recomputes the
// whole graph level by level; [layout.ChildPoint] places a single new
// child near its parent without disturbing the rest.
//
// [editor] - Editing sessions over a graph: add, edit, delete, and copy
// steps, then stage the result, which converts back to a tree and
// validates it before any save.
//
// ## Input/Output
//
// [io] - Wire format handling. Detects whether a JSON document carries a
// tree or a graph and decodes either into a [io.Document].
//
// [render] - Node-link visualization. Produces Graphviz DOT text and
// renders it to SVG in-process.
//
// ## Infrastructure
//
// [store] - Procedure persistence. MemoryStore for tests, FileStore for
// single-node deployments, MongoStore for shared ones.
//
// [cache] - Render artifact caching with file, Redis, and no-op backends
// plus hashed cache keys.
//
// [observability] - Hook registries that instrument rendering and cache
// traffic without coupling the core packages to a logging backend.
//
// [errors] - Error taxonomy shared by the CLI and server: typed domain
// errors plus field-path validation errors that survive serialization.
//
// # Common Workflows
//
// Convert between shapes:
//
//	g, _ := graph.FromStep(tree)
//	tree, _ = g.ToStep()
//
// Validate before saving:
//
//	if err := step.Validate(&tree); err != nil {
//	    var verr *step.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("fix step %q before saving\n", verr.Label)
//	    }
//	}
//
// Render a preview:
//
//	dot := render.ToDOT(g, render.Options{Detailed: true})
//	svg, _ := render.RenderSVG(dot)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/graph/...     # Specific package
//	go test -run Example        # Examples only
//
// [step]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/step
// [graph]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/graph
// [graph/layout]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/graph/layout
// [editor]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/editor
// [io]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/io
// [render]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/render
// [store]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/store
// [cache]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/cache
// [observability]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/opsdeck/sopgraph/pkg/errors
package pkg
