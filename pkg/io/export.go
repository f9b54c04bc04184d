package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/opsdeck/sopgraph/pkg/step"
)

// WriteJSON encodes a document as indented JSON in its own shape.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(doc *Document, w io.Writer) error {
	switch doc.Shape {
	case ShapeGraph:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc.Graph.Snapshot()); err != nil {
			return fmt.Errorf("encode graph: %w", err)
		}
		return nil
	case ShapeTree:
		return step.Write(doc.Tree, w)
	}
	return ErrUnknownShape
}

// ExportJSON writes a document to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}
