package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/opsdeck/sopgraph/pkg/step"
)

// FromStep expands a procedure tree into its editable graph form.
//
// The root is anchored at (RootX, RootY) with its label pinned to
// step.RootLabel. Each sibling group is placed on one centered row: n
// siblings at tree depth L sit at y = RowGap + L*RowGap, spread around
// x = RootX with one ColumnGap between columns. Rows from this initial
// placement sit one RowGap below the rows a full relayout produces;
// running the layout engine once normalizes them.
//
// Step IDs are reused as node IDs when present; steps without one get a
// fresh identifier. One smoothstep edge is added per parent→child pair, in
// child order, so sibling order survives the expansion.
//
// FromStep fails only when the tree itself is malformed, e.g. duplicate
// step IDs.
func FromStep(root step.Step) (*Graph, error) {
	g := New()

	rootNode := Node{
		ID:       nodeID(root.ID),
		Kind:     KindRoot,
		Position: Point{X: RootX, Y: RootY},
		Data: NodeData{
			Label:       step.RootLabel,
			Description: root.Description,
			Execution:   root.Execution,
			Health:      root.Health,
		},
	}
	if err := g.AddNode(rootNode); err != nil {
		return nil, fmt.Errorf("add root node: %w", err)
	}

	if err := g.placeChildren(root.Children, rootNode.ID, 1); err != nil {
		return nil, err
	}
	return g, nil
}

// placeChildren adds one centered row of sibling nodes at the given tree
// depth and recurses into their children.
func (g *Graph) placeChildren(children []step.Step, parentID string, depth int) error {
	n := len(children)
	for i, child := range children {
		node := Node{
			ID:   nodeID(child.ID),
			Kind: KindStep,
			Position: Point{
				X: RootX + float64(i)*ColumnGap - float64(n-1)*ColumnGap/2,
				Y: RowGap + float64(depth)*RowGap,
			},
			Data: NodeData{
				Label:       child.Label,
				Description: child.Description,
				Execution:   child.Execution,
				Health:      child.Health,
			},
		}
		if err := g.AddNode(node); err != nil {
			return fmt.Errorf("add node %q: %w", child.Label, err)
		}
		if err := g.AddEdge(Edge{Source: parentID, Target: node.ID}); err != nil {
			return fmt.Errorf("add edge %s→%s: %w", parentID, node.ID, err)
		}
		if err := g.placeChildren(child.Children, node.ID, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeID returns the stored step ID, or mints a fresh one when absent.
func nodeID(stepID string) string {
	if stepID != "" {
		return stepID
	}
	return uuid.NewString()
}

// ToStep flattens the graph back into a procedure tree.
//
// The tree is built depth-first from the root node, children in sibling
// order. Node IDs, labels, descriptions, and statuses carry over; the root
// label is forced to step.RootLabel regardless of what the root node
// claims. Empty child lists stay nil so leaves serialize without a children
// key.
//
// A graph without a root node flattens to step.Default rather than an
// error: the console treats a procedure with no canvas state as not yet
// authored. Orphaned nodes are unreachable from the root and are dropped.
// A directed cycle reachable from the root returns ErrCyclicGraph.
func (g *Graph) ToStep() (step.Step, error) {
	root, ok := g.Root()
	if !ok {
		return step.Default(), nil
	}

	onPath := make(map[string]bool, len(g.nodes))
	s, err := g.buildStep(root, onPath)
	if err != nil {
		return step.Step{}, err
	}
	s.Label = step.RootLabel
	return s, nil
}

func (g *Graph) buildStep(n *Node, onPath map[string]bool) (step.Step, error) {
	onPath[n.ID] = true
	defer delete(onPath, n.ID)

	s := step.Step{
		ID:          n.ID,
		Label:       n.Data.Label,
		Description: n.Data.Description,
		Execution:   n.Data.Execution,
		Health:      n.Data.Health,
	}

	for _, childID := range g.outgoing[n.ID] {
		if onPath[childID] {
			return step.Step{}, ErrCyclicGraph
		}
		child, ok := g.nodes[childID]
		if !ok {
			return step.Step{}, ErrInvalidEdgeEndpoint
		}
		cs, err := g.buildStep(child, onPath)
		if err != nil {
			return step.Step{}, err
		}
		s.Children = append(s.Children, cs)
	}
	return s, nil
}
