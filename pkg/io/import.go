package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/step"
)

// ErrUnknownShape is returned when a document carries neither wire form.
var ErrUnknownShape = errors.New("document is neither a procedure tree nor a graph")

// Shape identifies which wire form a document uses.
type Shape string

const (
	// ShapeTree is the nested form procedures are stored and validated in.
	ShapeTree Shape = "tree"
	// ShapeGraph is the flat node-link form the editor canvas works on.
	ShapeGraph Shape = "graph"
)

// Document is one decoded procedure in whichever shape the source used.
// Exactly one of Tree and Graph is populated, selected by Shape.
type Document struct {
	Shape Shape
	Tree  step.Step
	Graph *graph.Graph
}

// TreeDocument wraps a tree for export.
func TreeDocument(s step.Step) *Document { return &Document{Shape: ShapeTree, Tree: s} }

// GraphDocument wraps a graph for export.
func GraphDocument(g *graph.Graph) *Document { return &Document{Shape: ShapeGraph, Graph: g} }

// AsGraph returns the document as an editable graph, expanding trees.
func (d *Document) AsGraph() (*graph.Graph, error) {
	if d.Shape == ShapeGraph {
		return d.Graph, nil
	}
	return graph.FromStep(d.Tree)
}

// AsTree returns the document as a procedure tree, flattening graphs.
// Flattening fails with graph.ErrCyclicGraph on cyclic graphs.
func (d *Document) AsTree() (step.Step, error) {
	if d.Shape == ShapeTree {
		return d.Tree, nil
	}
	return d.Graph.ToStep()
}

// DetectShape inspects raw JSON and reports which wire form it carries.
// A top-level "nodes" key marks a graph and a "step" key marks a tree.
func DetectShape(data []byte) (Shape, error) {
	var probe struct {
		Nodes json.RawMessage `json:"nodes"`
		Step  json.RawMessage `json:"step"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	switch {
	case probe.Nodes != nil:
		return ShapeGraph, nil
	case probe.Step != nil:
		return ShapeTree, nil
	}
	return "", ErrUnknownShape
}

// ReadJSON decodes a procedure document from r, detecting the wire form.
//
// ReadJSON returns an error if the JSON is malformed, if the document is
// neither wire form, or if a graph document violates graph constraints
// (duplicate node IDs, edges referencing unknown nodes). Errors are wrapped
// with the offending node or edge for context.
//
// The returned document is independent of r and can be modified safely
// after ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return decode(data)
}

// ImportJSON reads the JSON file at path and returns the decoded document.
//
// ImportJSON returns the same validation errors as [ReadJSON]; failures are
// wrapped with the file path for context.
func ImportJSON(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	doc, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return doc, nil
}

func decode(data []byte) (*Document, error) {
	shape, err := DetectShape(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{Shape: shape}
	switch shape {
	case ShapeGraph:
		g, err := graph.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		doc.Graph = g
	case ShapeTree:
		s, err := step.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		doc.Tree = s
	}
	return doc, nil
}
