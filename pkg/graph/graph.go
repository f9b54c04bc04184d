package graph

import (
	"errors"
	"slices"

	"github.com/opsdeck/sopgraph/pkg/step"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrInvalidNodeKind is returned by [Graph.AddNode] when the node kind
	// is not one of the known kinds.
	ErrInvalidNodeKind = errors.New("unknown node kind")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source
	// node does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target
	// node does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by [Graph.RemoveNode] when the node does
	// not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrNoRootNode is returned by [Graph.Validate] when no node carries
	// [KindRoot]. Every well-formed procedure graph has exactly one root.
	ErrNoRootNode = errors.New("graph has no root node")

	// ErrMultipleRootNodes is returned by [Graph.Validate] when more than
	// one node carries [KindRoot].
	ErrMultipleRootNodes = errors.New("graph has multiple root nodes")

	// ErrMultipleParents is returned by [Graph.Validate] when a node has
	// more than one inbound edge. Such a node would be serialized once per
	// path by [Graph.ToStep].
	ErrMultipleParents = errors.New("node has multiple parents")

	// ErrCyclicGraph is returned by [Graph.Validate] and [Graph.ToStep]
	// when a directed cycle is detected. Cycles are found with depth-first
	// search using white/gray/black coloring.
	ErrCyclicGraph = errors.New("graph contains a cycle")
)

// Canvas geometry. The initial tree placement and the layout engine both
// derive positions from these.
const (
	RootX     = 400 // x anchor of the root node
	RootY     = 50  // y anchor of the root node
	ColumnGap = 200 // horizontal distance between sibling columns
	RowGap    = 150 // vertical distance between consecutive rows
)

// CopyOffset is added to both coordinates when a node is duplicated, so the
// copy lands visibly next to its original.
const CopyOffset = 50

// CopySuffix is appended to a duplicated node's label.
const CopySuffix = " (copy)"

// NodeKind distinguishes the protected entry node from ordinary steps.
type NodeKind string

const (
	// KindRoot marks the single entry node of a procedure graph. Root nodes
	// cannot be deleted and their label is pinned to step.RootLabel.
	KindRoot NodeKind = "root"
	// KindStep marks an ordinary procedure step.
	KindStep NodeKind = "step"
)

// Valid reports whether k is one of the known node kinds.
func (k NodeKind) Valid() bool { return k == KindRoot || k == KindStep }

// EdgeKindSmoothstep is the kind assigned to every edge. The canvas renders
// all connections with the same smoothed right-angle routing.
const EdgeKindSmoothstep = "smoothstep"

// Point is a position on the canvas in pixel coordinates. Y grows downward.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// NodeData is the editable payload of a node: what the operator reads and
// what the statuses report.
type NodeData struct {
	Label       string               `json:"label" bson:"label"`
	Description string               `json:"description" bson:"description"`
	Execution   step.ExecutionStatus `json:"execution_status" bson:"execution_status"`
	Health      step.HealthStatus    `json:"health_status" bson:"health_status"`
}

// Node is a positioned vertex of the procedure graph.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Kind     NodeKind `json:"kind" bson:"kind"`
	Position Point    `json:"position" bson:"position"`
	Data     NodeData `json:"data" bson:"data"`
}

// IsRoot reports whether the node is the protected entry node.
func (n *Node) IsRoot() bool { return n.Kind == KindRoot }

// CanDelete reports whether delete controls should be offered for this node.
// Only the root is protected. The mutation layer does not enforce this;
// callers are expected to check before removing.
func (n *Node) CanDelete() bool { return n.Kind != KindRoot }

// Edge is a directed connection from a parent node to a child node.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Kind   string `json:"kind,omitempty" bson:"kind,omitempty"`
}

// edgeID mints the canvas identifier for a source→target connection.
func edgeID(source, target string) string {
	return "e-" + source + "-" + target
}

// Graph is a procedure graph under edit: an id-keyed node arena with
// adjacency lists kept in edge insertion order.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []string // node IDs in insertion order
	edges    []Edge
	outgoing map[string][]string // nodeID -> child IDs, edge insertion order
	incoming map[string][]string // nodeID -> parent IDs, edge insertion order
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the node ID
// is empty, ErrDuplicateNodeID if a node with the same ID already exists, or
// ErrInvalidNodeKind for an unknown kind. An empty kind defaults to
// [KindStep].
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Kind == "" {
		n.Kind = KindStep
	}
	if !n.Kind.Valid() {
		return ErrInvalidNodeKind
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Returns
// ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is missing.
// An empty edge ID is minted from the endpoints and an empty kind defaults
// to [EdgeKindSmoothstep].
//
// Edge insertion order is sibling order: the children of a node are visited
// in the order their edges were added.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	if e.ID == "" {
		e.ID = edgeID(e.Source, e.Target)
	}
	if e.Kind == "" {
		e.Kind = EdgeKindSmoothstep
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Target)
	g.incoming[e.Target] = append(g.incoming[e.Target], e.Source)
	return nil
}

// RemoveNode removes the node and every edge touching it. Returns
// ErrUnknownNode if the node does not exist.
//
// The removal does not cascade: descendants stay in the graph as orphans.
// Orphans are unreachable from the root and drop out of the tree on the next
// ToStep. Root protection is not enforced here - see [Node.CanDelete].
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return ErrUnknownNode
	}

	for _, parent := range g.incoming[id] {
		g.outgoing[parent] = slices.DeleteFunc(g.outgoing[parent], func(s string) bool { return s == id })
	}
	for _, child := range g.outgoing[id] {
		g.incoming[child] = slices.DeleteFunc(g.incoming[child], func(s string) bool { return s == id })
	}
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.Source == id || e.Target == id })

	delete(g.outgoing, id)
	delete(g.incoming, id)
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	return nil
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node in the graph, so
// position and data edits through it affect the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Root returns the first node carrying [KindRoot] in insertion order, or
// nil and false when the graph has none.
func (g *Graph) Root() (*Node, bool) {
	for _, id := range g.order {
		if n := g.nodes[id]; n.IsRoot() {
			return n, true
		}
	}
	return nil, false
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order. Modifications to the
// returned slice do not affect the graph.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs of the node's children in sibling order (edge
// insertion order). Returns nil if the node has no children or doesn't
// exist. The returned slice is a read-only view.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes with edges to this node. Returns nil if
// the node has no parents or doesn't exist. The returned slice is a
// read-only view.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node, which is
// its current child count. Returns 0 if the node doesn't exist.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Sources returns nodes with no incoming edges in insertion order. For a
// well-formed graph this is just the root; after deletions it also contains
// orphaned subtree heads and parentless copies.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// Validate checks graph integrity and returns nil if valid. It verifies:
//
//  1. All edges connect existing nodes
//  2. Exactly one node carries [KindRoot]
//  3. No node has more than one parent
//  4. The graph is acyclic
//
// The mutation methods never produce violations on their own; use Validate
// on graphs that arrive from files or API payloads before converting or
// rendering them.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return ErrInvalidEdgeEndpoint
		}
	}

	roots := 0
	for _, id := range g.order {
		if g.nodes[id].IsRoot() {
			roots++
		}
	}
	if roots == 0 {
		return ErrNoRootNode
	}
	if roots > 1 {
		return ErrMultipleRootNodes
	}

	for _, id := range g.order {
		if len(g.incoming[id]) > 1 {
			return ErrMultipleParents
		}
	}

	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrCyclicGraph
			}
		}
	}
	return nil
}
