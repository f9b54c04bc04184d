package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/step"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	nodes := []graph.Node{
		{
			ID:       "root-1",
			Kind:     graph.KindRoot,
			Position: graph.Point{X: 400, Y: 50},
			Data: graph.NodeData{
				Label:       "Start",
				Description: "entry point",
				Execution:   step.ExecutionPending,
				Health:      step.HealthUnknown,
			},
		},
		{
			ID:       "a",
			Position: graph.Point{X: 300, Y: 200},
			Data: graph.NodeData{
				Label:       "Check queue depth",
				Description: "inspect the backlog",
				Execution:   step.ExecutionSuccess,
				Health:      step.HealthHealthy,
			},
		},
		{
			ID:       "b",
			Position: graph.Point{X: 500, Y: 200},
			Data: graph.NodeData{
				Label:       "Check consumers",
				Description: "count active consumers",
				Execution:   step.ExecutionFailed,
				Health:      step.HealthCritical,
			},
		},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s) error: %v", n.ID, err)
		}
	}
	for _, e := range []graph.Edge{
		{Source: "root-1", Target: "a"},
		{Source: "root-1", Target: "b"},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge error: %v", err)
		}
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"root-1" [label="Start", shape=ellipse`,
		`label="Check queue depth", fillcolor=palegreen`,
		`label="Check consumers", fillcolor=lightcoral`,
		`"root-1" -> "a";`,
		`"root-1" -> "b";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "layout=neato") {
		t.Error("plain DOT should not pin the layout engine")
	}
	if strings.Contains(dot, "pos=") {
		t.Error("plain DOT should not carry positions")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{Detailed: true})

	for _, want := range []string{
		"inspect the backlog",
		"run: success",
		"health: critical",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTPinned(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{Pinned: true})

	for _, want := range []string{
		"layout=neato;",
		`pos="400,-50!"`,
		`pos="300,-200!"`,
		`pos="500,-200!"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("pinned DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestHealthFill(t *testing.T) {
	tests := []struct {
		health step.HealthStatus
		want   string
	}{
		{step.HealthUnknown, ""},
		{step.HealthHealthy, "palegreen"},
		{step.HealthWarning, "khaki"},
		{step.HealthCritical, "lightcoral"},
		{step.HealthError, "tomato"},
	}
	for _, tt := range tests {
		if got := healthFill(tt.health); got != tt.want {
			t.Errorf("healthFill(%s) = %q, want %q", tt.health, got, tt.want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{})

	svg, err := RenderSVG(dot)
	if err != nil {
		t.Fatalf("RenderSVG error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("output is not SVG")
	}
	if !bytes.Contains(svg, []byte("Check queue depth")) {
		t.Error("node label missing from SVG")
	}
}

func TestRenderSVGPinned(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{Pinned: true})

	svg, err := RenderSVG(dot)
	if err != nil {
		t.Fatalf("RenderSVG error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("output is not SVG")
	}
}

func TestRenderSVGBadDOT(t *testing.T) {
	if _, err := RenderSVG("digraph {"); err == nil {
		t.Error("expected error for malformed DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="8pt" height="6pt" viewBox="0.00 0.00 216.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)

	out := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 216.00 116.00" width="216" height="116">`
	if !bytes.Contains(out, []byte(want)) {
		t.Errorf("normalized tag missing from:\n%s", out)
	}
}

func TestNormalizeViewBoxPassThrough(t *testing.T) {
	in := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(in); !bytes.Equal(got, in) {
		t.Error("svg without viewBox should pass through unchanged")
	}
}
