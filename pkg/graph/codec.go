package graph

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the wire form of a [Graph]: the node-link JSON the canvas
// consumes and the shape cached and shipped over the API.
//
// Node order is graph insertion order and edge order is sibling order, so
// re-importing a snapshot reproduces the graph exactly.
type Snapshot struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Snapshot captures the graph's wire form. Nodes are copied by value, so
// mutating the snapshot never affects the graph.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Nodes: make([]Node, 0, len(g.order)),
		Edges: g.Edges(),
	}
	for _, id := range g.order {
		s.Nodes = append(s.Nodes, *g.nodes[id])
	}
	return s
}

// FromSnapshot rebuilds a Graph from its wire form. Errors are wrapped with
// the offending node or edge for context.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	for _, n := range s.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", e.Source, e.Target, err)
		}
	}
	return g, nil
}

// Marshal encodes the graph as indented snapshot JSON.
func Marshal(g *Graph) ([]byte, error) {
	return json.MarshalIndent(g.Snapshot(), "", "  ")
}

// Unmarshal decodes snapshot JSON and rebuilds the graph.
func Unmarshal(data []byte) (*Graph, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return FromSnapshot(s)
}
