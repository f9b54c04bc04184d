package cli

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/opsdeck/sopgraph/pkg/editor"
	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/step"
)

func testSession(t *testing.T) *editor.Session {
	t.Helper()
	tree := step.Step{
		ID:          "root-1",
		Label:       "Start",
		Description: "Entry point",
		Execution:   step.ExecutionPending,
		Health:      step.HealthUnknown,
		Children: []step.Step{{
			ID:          "queue-1",
			Label:       "Check queue",
			Description: "Inspect the queue",
			Execution:   step.ExecutionPending,
			Health:      step.HealthUnknown,
		}},
	}
	sess, err := editor.Open(tree, log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return sess
}

// key translates a readable key name into the bubbletea message for it.
func key(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drive feeds key names through Update and returns the final model.
func drive(t *testing.T, m tea.Model, keys ...string) EditModel {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	result, ok := m.(EditModel)
	if !ok {
		t.Fatalf("unexpected model type %T", m)
	}
	return result
}

func TestEditModelAddChild(t *testing.T) {
	sess := testSession(t)
	m := drive(t, NewEditModel(sess, "test.json"),
		"a", "Check disk", "enter", "df on the host", "enter")

	g := sess.Graph()
	if g.NodeCount() != 3 {
		t.Fatalf("node count = %d, want 3", g.NodeCount())
	}
	children := g.Children("root-1")
	if len(children) != 2 {
		t.Fatalf("root has %d children, want 2", len(children))
	}
	added, ok := g.Node(children[1])
	if !ok {
		t.Fatal("added child not found")
	}
	if added.Data.Label != "Check disk" || added.Data.Description != "df on the host" {
		t.Errorf("added data = %+v", added.Data)
	}
	if added.Data.Execution != step.ExecutionPending || added.Data.Health != step.HealthUnknown {
		t.Errorf("added statuses = %s/%s, want pending/unknown", added.Data.Execution, added.Data.Health)
	}
	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse", m.mode)
	}
}

func TestEditModelAddChildEscapeCancels(t *testing.T) {
	sess := testSession(t)
	drive(t, NewEditModel(sess, "test.json"), "a", "Check disk", "esc")

	if got := sess.Graph().NodeCount(); got != 2 {
		t.Errorf("node count = %d, want 2 after cancel", got)
	}
}

func TestEditModelEditNode(t *testing.T) {
	sess := testSession(t)
	drive(t, NewEditModel(sess, "test.json"),
		"down", "e", " depth", "enter", " hourly", "enter")

	n, _ := sess.Graph().Node("queue-1")
	if n.Data.Label != "Check queue depth" {
		t.Errorf("label = %q, want %q", n.Data.Label, "Check queue depth")
	}
	if n.Data.Description != "Inspect the queue hourly" {
		t.Errorf("description = %q, want %q", n.Data.Description, "Inspect the queue hourly")
	}
}

func TestEditModelStatusCycle(t *testing.T) {
	sess := testSession(t)
	drive(t, NewEditModel(sess, "test.json"), "x", "x", "h")

	root, _ := sess.Graph().Node("root-1")
	if root.Data.Execution != step.ExecutionSuccess {
		t.Errorf("execution = %s, want %s", root.Data.Execution, step.ExecutionSuccess)
	}
	if root.Data.Health != step.HealthHealthy {
		t.Errorf("health = %s, want %s", root.Data.Health, step.HealthHealthy)
	}
}

func TestEditModelDeleteProtectsRoot(t *testing.T) {
	sess := testSession(t)
	m := drive(t, NewEditModel(sess, "test.json"), "d")

	if got := sess.Graph().NodeCount(); got != 2 {
		t.Errorf("node count = %d, want 2", got)
	}
	if !strings.Contains(m.status, "entry step") {
		t.Errorf("status = %q, want refusal naming the entry step", m.status)
	}
}

func TestEditModelDeleteOrphansChildren(t *testing.T) {
	tree := step.Step{
		ID: "root-1", Label: "Start", Description: "Entry point",
		Execution: step.ExecutionPending, Health: step.HealthUnknown,
		Children: []step.Step{{
			ID: "a", Label: "Check broker", Description: "d",
			Execution: step.ExecutionPending, Health: step.HealthUnknown,
			Children: []step.Step{{
				ID: "b", Label: "Check consumers", Description: "d",
				Execution: step.ExecutionPending, Health: step.HealthUnknown,
			}},
		}},
	}
	sess, err := editor.Open(tree, log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	m := drive(t, NewEditModel(sess, "test.json"), "down", "d")

	if got := sess.Graph().NodeCount(); got != 2 {
		t.Fatalf("node count = %d, want 2", got)
	}
	if len(m.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.rows))
	}
	if m.rows[1].id != "b" || !m.rows[1].orphan {
		t.Errorf("row 1 = %+v, want orphaned b", m.rows[1])
	}
	if !strings.Contains(m.View(), "unattached") {
		t.Error("view does not show the unattached section")
	}
}

func TestEditModelCopyAndAttach(t *testing.T) {
	sess := testSession(t)
	m := drive(t, NewEditModel(sess, "test.json"),
		"down", "c", // copy Check queue
		"down", "w", // select the copy, start attach
		"up", "up", "enter") // pick the root as parent

	g := sess.Graph()
	if g.NodeCount() != 3 {
		t.Fatalf("node count = %d, want 3", g.NodeCount())
	}
	children := g.Children("root-1")
	if len(children) != 2 {
		t.Fatalf("root has %d children, want 2", len(children))
	}
	dup, _ := g.Node(children[1])
	if dup.Data.Label != "Check queue (copy)" {
		t.Errorf("copy label = %q, want %q", dup.Data.Label, "Check queue (copy)")
	}
	for _, row := range m.rows {
		if row.orphan {
			t.Errorf("row %s still orphaned after attach", row.id)
		}
	}
}

func TestEditModelAttachRejectsOwnSubtree(t *testing.T) {
	sess := testSession(t)
	m := drive(t, NewEditModel(sess, "test.json"),
		"down", "c", // copy Check queue
		"down", "w", // select the copy, start attach
		"enter") // try to attach under itself

	if !strings.Contains(m.status, "own subtree") {
		t.Errorf("status = %q, want subtree refusal", m.status)
	}
	if got := sess.Graph().InDegree(m.rows[2].id); got != 0 {
		t.Errorf("copy in-degree = %d, want 0", got)
	}
}

func TestEditModelAttachRequiresOrphan(t *testing.T) {
	sess := testSession(t)
	m := drive(t, NewEditModel(sess, "test.json"), "down", "w")

	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse", m.mode)
	}
	if !strings.Contains(m.status, "unattached") {
		t.Errorf("status = %q, want unattached refusal", m.status)
	}
}

func TestEditModelArrange(t *testing.T) {
	sess := testSession(t)
	drive(t, NewEditModel(sess, "test.json"), "g")

	root, _ := sess.Graph().Node("root-1")
	child, _ := sess.Graph().Node("queue-1")
	if root.Position != (graph.Point{X: 400, Y: 50}) {
		t.Errorf("root position = %v, want (400, 50)", root.Position)
	}
	if child.Position != (graph.Point{X: 400, Y: 200}) {
		t.Errorf("child position = %v, want (400, 200)", child.Position)
	}
}

func TestEditModelSaveBlocksOnEmptyDescription(t *testing.T) {
	sess := testSession(t)
	m := drive(t, NewEditModel(sess, "test.json"),
		"a", "Check disk", "enter", "enter", // empty description
		"s")

	if m.staged != nil {
		t.Fatal("invalid tree was staged")
	}
	if !strings.Contains(m.status, "Check disk") {
		t.Errorf("status = %q, want the failing step named", m.status)
	}
}

func TestEditModelSave(t *testing.T) {
	sess := testSession(t)
	m := drive(t, NewEditModel(sess, "test.json"),
		"a", "Check disk", "enter", "df on the host", "enter",
		"s")

	if m.staged == nil {
		t.Fatal("valid tree was not staged")
	}
	if got := m.staged.Count(); got != 3 {
		t.Errorf("staged count = %d, want 3", got)
	}
}

func TestEditModelQuitDiscards(t *testing.T) {
	sess := testSession(t)
	m := drive(t, NewEditModel(sess, "test.json"), "a", "Check disk", "enter", "enter", "q")

	if m.staged != nil {
		t.Error("quit staged a tree")
	}
}

func TestEditModelView(t *testing.T) {
	sess := testSession(t)
	m := NewEditModel(sess, "triage.json")

	view := m.View()
	for _, want := range []string{"Edit triage.json", "Start", "Check queue", "2 steps", "2 levels"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNextStatusCycles(t *testing.T) {
	if got := nextExecution(step.ExecutionSkipped); got != step.ExecutionPending {
		t.Errorf("nextExecution wrapped to %s, want %s", got, step.ExecutionPending)
	}
	if got := nextExecution("bogus"); got != step.ExecutionPending {
		t.Errorf("nextExecution(bogus) = %s, want %s", got, step.ExecutionPending)
	}
	if got := nextHealth(step.HealthUnknown); got != step.HealthHealthy {
		t.Errorf("nextHealth = %s, want %s", got, step.HealthHealthy)
	}
	if got := nextHealth(step.HealthError); got != step.HealthUnknown {
		t.Errorf("nextHealth wrapped to %s, want %s", got, step.HealthUnknown)
	}
}
