package graph_test

import (
	"fmt"

	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/step"
)

func ExampleFromStep() {
	tree := step.Step{
		ID:          "r",
		Label:       "Start",
		Description: "Entry point",
		Children: []step.Step{
			{ID: "lag", Label: "Check replica lag", Description: "pt-heartbeat"},
			{ID: "disk", Label: "Check disk", Description: "df -h"},
		},
	}

	g, err := graph.FromStep(tree)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	root, _ := g.Root()
	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Root at:", root.Position.X, root.Position.Y)
	fmt.Println("Children:", g.Children("r"))
	// Output:
	// Nodes: 3
	// Root at: 400 50
	// Children: [lag disk]
}

func ExampleGraph_ToStep() {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "r", Kind: graph.KindRoot, Data: graph.NodeData{Description: "entry"}})
	_ = g.AddNode(graph.Node{ID: "a", Data: graph.NodeData{Label: "Restart worker", Description: "systemctl restart"}})
	_ = g.AddEdge(graph.Edge{Source: "r", Target: "a"})

	tree, err := g.ToStep()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Root label:", tree.Label)
	fmt.Println("First child:", tree.Children[0].Label)
	// Output:
	// Root label: Start
	// First child: Restart worker
}

func ExampleGraph_RemoveNode() {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "r", Kind: graph.KindRoot})
	_ = g.AddNode(graph.Node{ID: "mid", Data: graph.NodeData{Label: "Middle"}})
	_ = g.AddNode(graph.Node{ID: "leaf", Data: graph.NodeData{Label: "Leaf"}})
	_ = g.AddEdge(graph.Edge{Source: "r", Target: "mid"})
	_ = g.AddEdge(graph.Edge{Source: "mid", Target: "leaf"})

	// Removing the middle node detaches it; the leaf stays as an orphan.
	_ = g.RemoveNode("mid")

	fmt.Println("Nodes left:", g.NodeCount())
	fmt.Println("Edges left:", g.EdgeCount())

	tree, _ := g.ToStep()
	fmt.Println("Steps after flatten:", tree.Count())
	// Output:
	// Nodes left: 2
	// Edges left: 0
	// Steps after flatten: 1
}
