package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/sopgraph/pkg/editor"
	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/graph/layout"
	"github.com/opsdeck/sopgraph/pkg/step"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// Status cycle orders for the x and h keys.
var (
	executionCycle = []step.ExecutionStatus{
		step.ExecutionPending,
		step.ExecutionRunning,
		step.ExecutionSuccess,
		step.ExecutionFailed,
		step.ExecutionSkipped,
	}
	healthCycle = []step.HealthStatus{
		step.HealthUnknown,
		step.HealthHealthy,
		step.HealthWarning,
		step.HealthCritical,
		step.HealthError,
	}
)

// editMode tracks what the next keypress means.
type editMode int

const (
	modeBrowse      editMode = iota // navigating the tree
	modeLabel                       // typing a label
	modeDescription                 // typing a description
	modeAttach                      // picking a parent for an unattached step
)

// editRow is one visible line of the tree view.
type editRow struct {
	id     string
	depth  int
	orphan bool
}

// =============================================================================
// EditModel - Interactive procedure editor
// =============================================================================

// EditModel is the bubbletea model for the interactive procedure editor.
// Mutations go through the session; the row list is rebuilt after each one.
type EditModel struct {
	Sess *editor.Session
	Name string

	rows   []editRow
	cursor int
	offset int
	height int

	mode   editMode
	input  textinput.Model
	target string // node the input flow or attach applies to
	adding bool   // input flow creates a new child instead of editing
	draft  string // label captured while the description is typed
	status string

	staged *step.Step
}

// NewEditModel creates an editor model over an open session.
func NewEditModel(sess *editor.Session, name string) EditModel {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 48

	m := EditModel{
		Sess:   sess,
		Name:   name,
		height: 15,
		input:  ti,
	}
	m.refresh()
	return m
}

// refresh rebuilds the visible rows: the tree depth-first from the root,
// then unattached subtrees. The cursor is clamped to the new row count.
func (m *EditModel) refresh() {
	g := m.Sess.Graph()
	m.rows = m.rows[:0]

	visited := make(map[string]bool)
	if root, ok := g.Root(); ok {
		m.walk(root.ID, 0, false, visited)
	}
	for _, n := range g.Nodes() {
		if !visited[n.ID] && g.InDegree(n.ID) == 0 {
			m.walk(n.ID, 0, true, visited)
		}
	}
	for _, n := range g.Nodes() {
		if !visited[n.ID] {
			m.rows = append(m.rows, editRow{id: n.ID, orphan: true})
		}
	}

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *EditModel) walk(id string, depth int, orphan bool, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	m.rows = append(m.rows, editRow{id: id, depth: depth, orphan: orphan})
	for _, child := range m.Sess.Graph().Children(id) {
		m.walk(child, depth+1, orphan, visited)
	}
}

// selected returns the node under the cursor.
func (m *EditModel) selected() (*graph.Node, bool) {
	if len(m.rows) == 0 {
		return nil, false
	}
	return m.Sess.Graph().Node(m.rows[m.cursor].id)
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeLabel, modeDescription:
			return m.updateInput(msg)
		case modeAttach:
			return m.updateAttach(msg)
		default:
			return m.updateBrowse(msg)
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	default:
		if m.mode == modeLabel || m.mode == modeDescription {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m EditModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "a":
		if sel, ok := m.selected(); ok {
			m.mode = modeLabel
			m.adding = true
			m.target = sel.ID
			m.status = ""
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		}

	case "e":
		if sel, ok := m.selected(); ok {
			m.mode = modeLabel
			m.adding = false
			m.target = sel.ID
			m.status = ""
			m.input.SetValue(sel.Data.Label)
			m.input.Focus()
			return m, textinput.Blink
		}

	case "x":
		if sel, ok := m.selected(); ok {
			next := nextExecution(sel.Data.Execution)
			if _, err := m.Sess.EditNode(sel.ID, editor.NodePatch{Execution: &next}); err != nil {
				m.status = err.Error()
			}
		}

	case "h":
		if sel, ok := m.selected(); ok {
			next := nextHealth(sel.Data.Health)
			if _, err := m.Sess.EditNode(sel.ID, editor.NodePatch{Health: &next}); err != nil {
				m.status = err.Error()
			}
		}

	case "c":
		if sel, ok := m.selected(); ok {
			dup, err := m.Sess.CopyNode(sel.ID)
			if err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.status = fmt.Sprintf("Copied %q - select it and press w to attach", dup.Data.Label)
			m.refresh()
		}

	case "w":
		if sel, ok := m.selected(); ok {
			if !m.rows[m.cursor].orphan || m.Sess.Graph().InDegree(sel.ID) != 0 {
				m.status = "Only unattached steps can be attached"
				return m, nil
			}
			m.mode = modeAttach
			m.target = sel.ID
			m.status = "Select the new parent and press enter"
		}

	case "d":
		if sel, ok := m.selected(); ok {
			if !sel.CanDelete() {
				m.status = "The entry step cannot be deleted"
				return m, nil
			}
			label := sel.Data.Label
			if err := m.Sess.DeleteNode(sel.ID); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.status = fmt.Sprintf("Deleted %q - its children are unattached", label)
			m.refresh()
		}

	case "g":
		m.Sess.Arrange()
		m.status = "Recomputed layout"

	case "s":
		tree, err := m.Sess.Stage()
		if err != nil {
			var verr *step.ValidationError
			if errors.As(err, &verr) {
				m.status = fmt.Sprintf("Step %q has an empty description", verr.Label)
			} else {
				m.status = err.Error()
			}
			return m, nil
		}
		m.staged = &tree
		return m, tea.Quit
	}
	return m, nil
}

func (m EditModel) updateAttach(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.mode = modeBrowse
		m.status = ""

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "enter":
		sel, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeBrowse
		if sel.ID == m.target || m.reachable(m.target, sel.ID) {
			m.status = "A step cannot be attached under its own subtree"
			return m, nil
		}
		if err := m.Sess.Graph().AddEdge(graph.Edge{Source: sel.ID, Target: m.target}); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Attached under %q", sel.Data.Label)
		m.refresh()
	}
	return m, nil
}

func (m EditModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeLabel:
			if value == "" {
				m.status = "Label cannot be empty"
				return m, nil
			}
			m.draft = value
			m.mode = modeDescription
			m.input.SetValue("")
			if !m.adding {
				if n, ok := m.Sess.Graph().Node(m.target); ok {
					m.input.SetValue(n.Data.Description)
				}
			}
			return m, nil

		case modeDescription:
			if m.adding {
				if _, err := m.Sess.AddChild(m.target, graph.NodeData{Label: m.draft, Description: value}); err != nil {
					m.status = err.Error()
				} else {
					m.status = fmt.Sprintf("Added %q", m.draft)
				}
			} else {
				label, desc := m.draft, value
				if _, err := m.Sess.EditNode(m.target, editor.NodePatch{Label: &label, Description: &desc}); err != nil {
					m.status = err.Error()
				} else {
					m.status = fmt.Sprintf("Updated %q", label)
				}
			}
			m.mode = modeBrowse
			m.input.Blur()
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// moveCursor shifts the cursor by delta and keeps it inside the window.
func (m *EditModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor > len(m.rows)-1 {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// reachable reports whether to can be reached from from along child edges.
func (m *EditModel) reachable(from, to string) bool {
	g := m.Sess.Graph()
	queue := []string{from}
	seen := map[string]bool{from: true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return true
		}
		for _, child := range g.Children(id) {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return false
}

func (m EditModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edit " + m.Name))
	b.WriteString("\n")
	if m.mode == modeAttach {
		b.WriteString(listDimStyle.Render("↑/↓ pick parent  ⏎ attach  esc cancel"))
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ move  a add  e edit  x run  h health  c copy  w attach  d delete  g arrange  s save  q quit"))
	}
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	orphanHeader := false
	for i := m.offset; i < end; i++ {
		row := m.rows[i]
		n, ok := m.Sess.Graph().Node(row.id)
		if !ok {
			continue
		}

		if row.orphan && !orphanHeader {
			b.WriteString(listDimStyle.Render("  ── unattached ──"))
			b.WriteString("\n")
			orphanHeader = true
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		label := n.Data.Label
		labelStyle := listNormalStyle
		if i == m.cursor {
			labelStyle = listSelectedStyle
		} else if row.orphan {
			labelStyle = listDimStyle
		}

		badges := executionStyle(n.Data.Execution).Render(string(n.Data.Execution)) +
			listDimStyle.Render(" · ") +
			healthStyle(n.Data.Health).Render(string(n.Data.Health))

		b.WriteString(cursor + strings.Repeat("  ", row.depth) + labelStyle.Render(label) + "  " + badges)
		b.WriteString("\n")
	}

	if m.mode == modeLabel || m.mode == modeDescription {
		prompt := "Label"
		if m.mode == modeDescription {
			prompt = "Description"
		}
		b.WriteString("\n")
		b.WriteString(StyleHighlight.Render(prompt+":") + " " + m.input.View())
		b.WriteString("\n")
	}

	g := m.Sess.Graph()
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] · %d steps · %d levels",
		m.cursor+1, len(m.rows), g.NodeCount(), len(layout.Levels(g)))))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("  " + m.status))
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// nextExecution returns the execution status after e in cycle order.
func nextExecution(e step.ExecutionStatus) step.ExecutionStatus {
	for i, s := range executionCycle {
		if s == e {
			return executionCycle[(i+1)%len(executionCycle)]
		}
	}
	return executionCycle[0]
}

// nextHealth returns the health status after h in cycle order.
func nextHealth(h step.HealthStatus) step.HealthStatus {
	for i, s := range healthCycle {
		if s == h {
			return healthCycle[(i+1)%len(healthCycle)]
		}
	}
	return healthCycle[0]
}
