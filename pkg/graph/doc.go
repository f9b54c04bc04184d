// Package graph provides the editable canvas form of diagnostic procedures:
// positioned nodes connected by directed edges.
//
// # Architecture
//
// The package sits between the persisted tree form and the editing surfaces:
//
//   - pkg/step.Step: persisted tree (storage boundary)
//   - [Graph]: in-memory editing structure (this package)
//   - [Snapshot]: wire form of a Graph for the canvas API, files, and caching
//
// [FromStep] expands a tree into a graph with an initial balanced placement;
// [Graph.ToStep] flattens a graph back into a tree. A graph → tree → graph
// round trip preserves structure, labels, and statuses.
//
// # Ordering
//
// Sibling order is edge insertion order, never node order. [Graph.Children]
// returns child IDs in the order their edges were added, and both conversion
// and layout consume that order. Node insertion order is kept as well so
// [Graph.Nodes], [Graph.Sources], and [Graph.Root] are deterministic.
//
// # Deleting Nodes
//
// [Graph.RemoveNode] detaches, it does not destroy: the node and every edge
// touching it are removed, and its descendants stay in the graph as orphans.
// Orphans are unreachable from the root, so they silently drop out of the
// tree on the next [Graph.ToStep]. Deleting the root is never meaningful;
// callers gate delete controls with [Node.CanDelete].
//
// # Integrity
//
// The mutation methods keep the arena and adjacency indexes consistent but do
// not enforce tree shape. Use [Graph.Validate] before conversion or rendering
// when a graph arrives from outside the editor.
//
// # Concurrency
//
// Graph is not safe for concurrent use. Each editing session owns one Graph;
// share nothing, or synchronize externally.
package graph
