// Package io provides JSON import and export for procedure documents.
//
// # Overview
//
// Procedures travel in two wire forms: the nested tree they are stored and
// validated in, and the flat node-link graph the editor canvas works on.
// This package reads either form from a file or stream, reports which one
// it found, and writes both back out. The CLI's file commands are built on
// it, so convert, layout, and render all accept whichever form a file
// happens to hold.
//
// # JSON Formats
//
// A tree document is a single recursive step object:
//
//	{
//	  "id": "root-1",
//	  "step": "Start",
//	  "description": "entry point",
//	  "children": [...]
//	}
//
// A graph document has top-level "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "root-1", "kind": "root", ...}],
//	  "edges": [{"source": "root-1", "target": "a", ...}]
//	}
//
// [DetectShape] tells the two apart by their top-level keys: a "nodes" key
// marks a graph, a "step" key marks a tree.
//
// # Import
//
// Use [ImportJSON] to read a document from a file path, or [ReadJSON] to
// read from any io.Reader:
//
//	doc, err := io.ImportJSON("procedure.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g, err := doc.AsGraph()
//
// The [Document.AsGraph] and [Document.AsTree] accessors convert on demand,
// so callers work in the form they need regardless of what the file held.
//
// # Export
//
// Use [ExportJSON] to write a document to a file, or [WriteJSON] to write
// to any io.Writer:
//
//	err := io.ExportJSON(io.TreeDocument(tree), "output.json")
//
// Output is indented JSON in the document's own shape and round-trips
// through [ReadJSON] identically.
package io
