package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	stdio "io"

	"github.com/charmbracelet/log"

	"github.com/opsdeck/sopgraph/pkg/io"
)

const treeFixtureJSON = `{
	"id": "root-1",
	"step": "Start",
	"description": "Entry point",
	"execution_status": "pending",
	"health_status": "unknown",
	"children": [
		{
			"id": "queue-1",
			"step": "Check queue",
			"description": "Inspect the queue",
			"execution_status": "success",
			"health_status": "healthy"
		}
	]
}`

func newTestCLI() *CLI {
	return New(stdio.Discard, log.FatalLevel)
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunConvertTreeToGraph(t *testing.T) {
	input := writeFixture(t, "proc.json", treeFixtureJSON)
	output := filepath.Join(filepath.Dir(input), "out.json")

	if err := newTestCLI().runConvert(input, "", output); err != nil {
		t.Fatalf("runConvert() error: %v", err)
	}

	doc, err := io.ImportJSON(output)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if doc.Shape != io.ShapeGraph {
		t.Fatalf("output shape = %s, want %s", doc.Shape, io.ShapeGraph)
	}
	g, err := doc.AsGraph()
	if err != nil {
		t.Fatalf("AsGraph() error: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("graph = %d nodes/%d edges, want 2/1", g.NodeCount(), g.EdgeCount())
	}
}

func TestRunConvertDefaultOutput(t *testing.T) {
	input := writeFixture(t, "proc.json", treeFixtureJSON)

	if err := newTestCLI().runConvert(input, "", ""); err != nil {
		t.Fatalf("runConvert() error: %v", err)
	}

	want := strings.TrimSuffix(input, ".json") + ".graph.json"
	if _, err := os.Stat(want); err != nil {
		t.Errorf("default output %s missing: %v", want, err)
	}
}

func TestRunConvertRoundTrip(t *testing.T) {
	input := writeFixture(t, "proc.json", treeFixtureJSON)
	graphPath := filepath.Join(filepath.Dir(input), "graph.json")
	treePath := filepath.Join(filepath.Dir(input), "tree.json")

	c := newTestCLI()
	if err := c.runConvert(input, "", graphPath); err != nil {
		t.Fatalf("tree to graph: %v", err)
	}
	if err := c.runConvert(graphPath, "", treePath); err != nil {
		t.Fatalf("graph to tree: %v", err)
	}

	doc, err := io.ImportJSON(treePath)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	tree, err := doc.AsTree()
	if err != nil {
		t.Fatalf("AsTree() error: %v", err)
	}
	if tree.Count() != 2 {
		t.Errorf("round-tripped count = %d, want 2", tree.Count())
	}
	if len(tree.Children) != 1 || tree.Children[0].Label != "Check queue" {
		t.Errorf("round-tripped children = %+v", tree.Children)
	}
}

func TestRunConvertForcedTarget(t *testing.T) {
	input := writeFixture(t, "proc.json", treeFixtureJSON)
	output := filepath.Join(filepath.Dir(input), "same.json")

	if err := newTestCLI().runConvert(input, "tree", output); err != nil {
		t.Fatalf("runConvert() error: %v", err)
	}

	doc, err := io.ImportJSON(output)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if doc.Shape != io.ShapeTree {
		t.Errorf("output shape = %s, want %s", doc.Shape, io.ShapeTree)
	}
}

func TestRunConvertUnknownTarget(t *testing.T) {
	input := writeFixture(t, "proc.json", treeFixtureJSON)

	err := newTestCLI().runConvert(input, "yaml", "")
	if err == nil || !strings.Contains(err.Error(), "unknown target form") {
		t.Errorf("runConvert() error = %v, want unknown target form", err)
	}
}

func TestRunConvertMissingInput(t *testing.T) {
	if err := newTestCLI().runConvert(filepath.Join(t.TempDir(), "missing.json"), "", ""); err == nil {
		t.Error("runConvert() should fail for a missing input file")
	}
}
