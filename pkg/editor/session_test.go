package editor

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/step"
)

func testLogger() *log.Logger { return log.New(io.Discard) }

func ptr[T any](v T) *T { return &v }

func sampleTree() step.Step {
	return step.Step{
		ID:          "root-1",
		Label:       "Start",
		Description: "entry point",
		Execution:   step.ExecutionPending,
		Health:      step.HealthUnknown,
		Children: []step.Step{
			{
				ID:          "a",
				Label:       "Check queue depth",
				Description: "inspect the backlog",
				Execution:   step.ExecutionSuccess,
				Health:      step.HealthHealthy,
			},
			{
				ID:          "b",
				Label:       "Check consumers",
				Description: "count active consumers",
				Execution:   step.ExecutionPending,
				Health:      step.HealthWarning,
			},
		},
	}
}

func openSample(t *testing.T) *Session {
	t.Helper()
	s, err := Open(sampleTree(), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func mustAddChild(t *testing.T, s *Session, parentID string, data graph.NodeData) *graph.Node {
	t.Helper()
	n, err := s.AddChild(parentID, data)
	if err != nil {
		t.Fatalf("AddChild(%s) error = %v", parentID, err)
	}
	return n
}

func TestNew(t *testing.T) {
	s := New(testLogger())
	g := s.Graph()

	if got := g.NodeCount(); got != 1 {
		t.Fatalf("NodeCount() = %d, want 1", got)
	}
	if got := g.EdgeCount(); got != 0 {
		t.Errorf("EdgeCount() = %d, want 0", got)
	}

	root, ok := g.Root()
	if !ok {
		t.Fatal("Root() not found in blank session")
	}
	if root.Data.Label != step.RootLabel {
		t.Errorf("root label = %q, want %q", root.Data.Label, step.RootLabel)
	}
	if want := (graph.Point{X: 400, Y: 50}); root.Position != want {
		t.Errorf("root position = %v, want %v", root.Position, want)
	}
}

func TestOpen(t *testing.T) {
	s := openSample(t)
	g := s.Graph()

	if got := g.NodeCount(); got != 3 {
		t.Errorf("NodeCount() = %d, want 3", got)
	}
	if got := g.EdgeCount(); got != 2 {
		t.Errorf("EdgeCount() = %d, want 2", got)
	}

	a, ok := g.Node("a")
	if !ok {
		t.Fatal("stored id was not reused")
	}
	if a.Data.Label != "Check queue depth" {
		t.Errorf("label = %q, want %q", a.Data.Label, "Check queue depth")
	}
}

func TestOpenDuplicateStoredIDs(t *testing.T) {
	tree := sampleTree()
	tree.Children[1].ID = "a"

	if _, err := Open(tree, testLogger()); !errors.Is(err, graph.ErrDuplicateNodeID) {
		t.Errorf("Open() error = %v, want %v", err, graph.ErrDuplicateNodeID)
	}
}

func TestAddChildPlacement(t *testing.T) {
	s := New(testLogger())
	root, _ := s.Graph().Root()

	first := mustAddChild(t, s, root.ID, graph.NodeData{Label: "Check DNS", Description: "d"})
	second := mustAddChild(t, s, root.ID, graph.NodeData{Label: "Check certs", Description: "d"})
	third := mustAddChild(t, s, root.ID, graph.NodeData{Label: "Check LB", Description: "d"})

	if want := (graph.Point{X: 400, Y: 200}); first.Position != want {
		t.Errorf("first child at %v, want %v", first.Position, want)
	}
	if want := (graph.Point{X: 200, Y: 200}); second.Position != want {
		t.Errorf("second child at %v, want %v", second.Position, want)
	}
	if want := (graph.Point{X: 600, Y: 200}); third.Position != want {
		t.Errorf("third child at %v, want %v", third.Position, want)
	}

	// Placement is parent-relative: a parent at (400, 200) with one child
	// sends the next one to its left branch.
	grand1 := mustAddChild(t, s, first.ID, graph.NodeData{Label: "Flush cache", Description: "d"})
	grand2 := mustAddChild(t, s, first.ID, graph.NodeData{Label: "Rotate key", Description: "d"})

	if want := (graph.Point{X: 400, Y: 350}); grand1.Position != want {
		t.Errorf("first grandchild at %v, want %v", grand1.Position, want)
	}
	if want := (graph.Point{X: 200, Y: 350}); grand2.Position != want {
		t.Errorf("second grandchild at %v, want %v", grand2.Position, want)
	}

	wantChildren := []string{first.ID, second.ID, third.ID}
	gotChildren := s.Graph().Children(root.ID)
	if len(gotChildren) != len(wantChildren) {
		t.Fatalf("Children() = %v, want %v", gotChildren, wantChildren)
	}
	for i := range wantChildren {
		if gotChildren[i] != wantChildren[i] {
			t.Errorf("Children()[%d] = %q, want %q", i, gotChildren[i], wantChildren[i])
		}
	}
}

func TestAddChildDefaultsStatuses(t *testing.T) {
	s := New(testLogger())
	root, _ := s.Graph().Root()

	n := mustAddChild(t, s, root.ID, graph.NodeData{Label: "Check disk", Description: "df on the host"})

	if n.Data.Execution != step.ExecutionPending {
		t.Errorf("execution = %q, want %q", n.Data.Execution, step.ExecutionPending)
	}
	if n.Data.Health != step.HealthUnknown {
		t.Errorf("health = %q, want %q", n.Data.Health, step.HealthUnknown)
	}
	if n.Kind != graph.KindStep {
		t.Errorf("kind = %q, want %q", n.Kind, graph.KindStep)
	}
}

func TestAddChildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		parent  string
		data    graph.NodeData
		wantErr error
	}{
		{
			name:    "UnknownParent",
			parent:  "missing",
			data:    graph.NodeData{Label: "X"},
			wantErr: graph.ErrUnknownNode,
		},
		{
			name:    "UnknownExecutionStatus",
			parent:  "root-1",
			data:    graph.NodeData{Label: "X", Execution: "done"},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "UnknownHealthStatus",
			parent:  "root-1",
			data:    graph.NodeData{Label: "X", Health: "green"},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openSample(t)
			if _, err := s.AddChild(tt.parent, tt.data); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddChild() error = %v, want %v", err, tt.wantErr)
			}
			if got := s.Graph().NodeCount(); got != 3 {
				t.Errorf("NodeCount() after failed add = %d, want 3", got)
			}
		})
	}
}

func TestEditNode(t *testing.T) {
	tests := []struct {
		name  string
		patch NodePatch
		want  graph.NodeData
	}{
		{
			name:  "LabelOnly",
			patch: NodePatch{Label: ptr("Check broker queue")},
			want: graph.NodeData{
				Label:       "Check broker queue",
				Description: "inspect the backlog",
				Execution:   step.ExecutionSuccess,
				Health:      step.HealthHealthy,
			},
		},
		{
			name:  "DescriptionOnly",
			patch: NodePatch{Description: ptr("depth via rabbitmqctl")},
			want: graph.NodeData{
				Label:       "Check queue depth",
				Description: "depth via rabbitmqctl",
				Execution:   step.ExecutionSuccess,
				Health:      step.HealthHealthy,
			},
		},
		{
			name: "BothStatuses",
			patch: NodePatch{
				Execution: ptr(step.ExecutionFailed),
				Health:    ptr(step.HealthCritical),
			},
			want: graph.NodeData{
				Label:       "Check queue depth",
				Description: "inspect the backlog",
				Execution:   step.ExecutionFailed,
				Health:      step.HealthCritical,
			},
		},
		{
			name:  "EmptyPatchIsNoOp",
			patch: NodePatch{},
			want: graph.NodeData{
				Label:       "Check queue depth",
				Description: "inspect the backlog",
				Execution:   step.ExecutionSuccess,
				Health:      step.HealthHealthy,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openSample(t)
			n, err := s.EditNode("a", tt.patch)
			if err != nil {
				t.Fatalf("EditNode() error = %v", err)
			}
			if n.Data != tt.want {
				t.Errorf("data = %+v, want %+v", n.Data, tt.want)
			}
			if n.Position != (graph.Point{X: 300, Y: 300}) {
				t.Errorf("position changed to %v", n.Position)
			}
		})
	}
}

func TestEditNodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		patch   NodePatch
		wantErr error
	}{
		{
			name:    "UnknownNode",
			id:      "missing",
			patch:   NodePatch{Label: ptr("X")},
			wantErr: graph.ErrUnknownNode,
		},
		{
			name:    "UnknownExecutionStatus",
			id:      "a",
			patch:   NodePatch{Execution: ptr(step.ExecutionStatus("done"))},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "UnknownHealthStatus",
			id:      "a",
			patch:   NodePatch{Health: ptr(step.HealthStatus("green"))},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openSample(t)
			if _, err := s.EditNode(tt.id, tt.patch); !errors.Is(err, tt.wantErr) {
				t.Errorf("EditNode() error = %v, want %v", err, tt.wantErr)
			}

			// A rejected patch must not apply partially.
			if a, ok := s.Graph().Node("a"); ok && a.Data.Label != "Check queue depth" {
				t.Errorf("data modified by rejected patch: %+v", a.Data)
			}
		})
	}
}

func TestDeleteNodeLeavesOrphans(t *testing.T) {
	s := openSample(t)
	a1 := mustAddChild(t, s, "a", graph.NodeData{Label: "Purge queue", Description: "drain it"})

	if err := s.DeleteNode("a"); err != nil {
		t.Fatalf("DeleteNode() error = %v", err)
	}

	g := s.Graph()
	if got := g.NodeCount(); got != 3 {
		t.Errorf("NodeCount() = %d, want 3", got)
	}
	if got := g.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}
	if _, ok := g.Node(a1.ID); !ok {
		t.Error("child of deleted node was removed")
	}
	if got := g.InDegree(a1.ID); got != 0 {
		t.Errorf("orphan InDegree = %d, want 0", got)
	}
}

func TestDeleteNodeUnknown(t *testing.T) {
	s := openSample(t)
	if err := s.DeleteNode("missing"); !errors.Is(err, graph.ErrUnknownNode) {
		t.Errorf("DeleteNode() error = %v, want %v", err, graph.ErrUnknownNode)
	}
}

func TestDeleteNodeRoot(t *testing.T) {
	s := openSample(t)

	root, _ := s.Graph().Root()
	if root.CanDelete() {
		t.Error("CanDelete() = true for root, want false")
	}

	// The session does not second-guess callers; the capability check above
	// is what UIs consult before offering the gesture.
	if err := s.DeleteNode(root.ID); err != nil {
		t.Fatalf("DeleteNode(root) error = %v", err)
	}
	if _, ok := s.Graph().Root(); ok {
		t.Error("root still present after delete")
	}
}

func TestCopyNode(t *testing.T) {
	s := openSample(t)
	mustAddChild(t, s, "a", graph.NodeData{Label: "Purge queue", Description: "drain it"})

	dup, err := s.CopyNode("a")
	if err != nil {
		t.Fatalf("CopyNode() error = %v", err)
	}

	if dup.ID == "a" || dup.ID == "" {
		t.Errorf("copy id = %q, want a fresh id", dup.ID)
	}
	if want := "Check queue depth (copy)"; dup.Data.Label != want {
		t.Errorf("copy label = %q, want %q", dup.Data.Label, want)
	}
	if dup.Data.Description != "inspect the backlog" {
		t.Errorf("copy description = %q, want original's", dup.Data.Description)
	}
	if want := (graph.Point{X: 350, Y: 350}); dup.Position != want {
		t.Errorf("copy position = %v, want %v", dup.Position, want)
	}

	g := s.Graph()
	if got := g.InDegree(dup.ID); got != 0 {
		t.Errorf("copy InDegree = %d, want 0 (parentless)", got)
	}
	if got := g.OutDegree(dup.ID); got != 0 {
		t.Errorf("copy OutDegree = %d, want 0 (edges not duplicated)", got)
	}
	if got := g.OutDegree("a"); got != 1 {
		t.Errorf("original OutDegree = %d, want 1", got)
	}
}

func TestCopyNodeRootBecomesStep(t *testing.T) {
	s := openSample(t)

	dup, err := s.CopyNode("root-1")
	if err != nil {
		t.Fatalf("CopyNode() error = %v", err)
	}
	if dup.Kind != graph.KindStep {
		t.Errorf("copy kind = %q, want %q", dup.Kind, graph.KindStep)
	}
	if !dup.CanDelete() {
		t.Error("CanDelete() = false for a root copy, want true")
	}
	if want := "Start (copy)"; dup.Data.Label != want {
		t.Errorf("copy label = %q, want %q", dup.Data.Label, want)
	}
}

func TestCopyNodeUnknown(t *testing.T) {
	s := openSample(t)
	if _, err := s.CopyNode("missing"); !errors.Is(err, graph.ErrUnknownNode) {
		t.Errorf("CopyNode() error = %v, want %v", err, graph.ErrUnknownNode)
	}
}

func TestCopyThenRewire(t *testing.T) {
	s := openSample(t)

	dup, err := s.CopyNode("b")
	if err != nil {
		t.Fatalf("CopyNode() error = %v", err)
	}
	if err := s.Graph().AddEdge(graph.Edge{Source: "root-1", Target: dup.ID}); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}

	tree, err := s.Stage()
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if got := len(tree.Children); got != 3 {
		t.Fatalf("root has %d children, want 3", got)
	}
	if want := "Check consumers (copy)"; tree.Children[2].Label != want {
		t.Errorf("last child label = %q, want %q", tree.Children[2].Label, want)
	}
}

func TestArrangeNormalizesPlacement(t *testing.T) {
	s := openSample(t)
	g := s.Graph()

	// Initial conversion parks depth-1 rows at y=300; a relayout lifts them
	// onto the regular grid.
	s.Arrange()

	tests := []struct {
		id   string
		want graph.Point
	}{
		{id: "root-1", want: graph.Point{X: 400, Y: 50}},
		{id: "a", want: graph.Point{X: 300, Y: 200}},
		{id: "b", want: graph.Point{X: 500, Y: 200}},
	}
	for _, tt := range tests {
		n, ok := g.Node(tt.id)
		if !ok {
			t.Fatalf("node %s missing", tt.id)
		}
		if n.Position != tt.want {
			t.Errorf("node %s at %v, want %v", tt.id, n.Position, tt.want)
		}
	}
}

func TestStage(t *testing.T) {
	s := openSample(t)

	tree, err := s.Stage()
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if got := tree.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	if tree.Label != step.RootLabel {
		t.Errorf("root label = %q, want %q", tree.Label, step.RootLabel)
	}
	if got := len(tree.Children); got != 2 {
		t.Fatalf("root has %d children, want 2", got)
	}
	if tree.Children[0].Label != "Check queue depth" || tree.Children[1].Label != "Check consumers" {
		t.Errorf("children order = [%q %q]", tree.Children[0].Label, tree.Children[1].Label)
	}
}

func TestStageDropsOrphans(t *testing.T) {
	s := openSample(t)
	mustAddChild(t, s, "a", graph.NodeData{Label: "Purge queue", Description: "drain it"})

	if err := s.DeleteNode("a"); err != nil {
		t.Fatalf("DeleteNode() error = %v", err)
	}

	tree, err := s.Stage()
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if got := tree.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	if got := len(tree.Children); got != 1 || tree.Children[0].Label != "Check consumers" {
		t.Errorf("children = %+v, want just the consumers check", tree.Children)
	}
}

func TestStageValidationKeepsSessionOpen(t *testing.T) {
	s := New(testLogger())
	root, _ := s.Graph().Root()

	// A blank procedure has no root description yet.
	_, err := s.Stage()
	var verr *step.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Stage() error = %v, want a validation error", err)
	}
	if verr.Label != step.RootLabel {
		t.Errorf("failing label = %q, want %q", verr.Label, step.RootLabel)
	}

	if _, err := s.EditNode(root.ID, NodePatch{Description: ptr("triage entry")}); err != nil {
		t.Fatalf("EditNode() error = %v", err)
	}
	if _, err := s.Stage(); err != nil {
		t.Errorf("Stage() after fix error = %v", err)
	}
}

func TestStageNamesFailingStep(t *testing.T) {
	s := openSample(t)
	if _, err := s.EditNode("b", NodePatch{Description: ptr("   ")}); err != nil {
		t.Fatalf("EditNode() error = %v", err)
	}

	_, err := s.Stage()
	var verr *step.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Stage() error = %v, want a validation error", err)
	}
	if verr.Label != "Check consumers" {
		t.Errorf("failing label = %q, want %q", verr.Label, "Check consumers")
	}

	if got := s.Graph().NodeCount(); got != 3 {
		t.Errorf("NodeCount() after failed stage = %d, want 3", got)
	}
}

func TestStageCycle(t *testing.T) {
	s := openSample(t)
	if err := s.Graph().AddEdge(graph.Edge{Source: "a", Target: "root-1"}); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}

	if _, err := s.Stage(); !errors.Is(err, graph.ErrCyclicGraph) {
		t.Errorf("Stage() error = %v, want %v", err, graph.ErrCyclicGraph)
	}
}
