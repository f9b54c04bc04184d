// Package editor drives one interactive editing session over a procedure
// graph.
//
// A [Session] owns a single graph from open to save. UI layers (the terminal
// editor, the console API) call one method per user gesture: AddChild,
// EditNode, DeleteNode, CopyNode, Arrange. Mutations never validate the whole
// graph; integrity is checked once at the end, when [Session.Stage] flattens
// the graph back into a step tree and runs the pre-save validator over it.
//
// # Usage
//
// Open a stored procedure, mutate it, stage the result:
//
//	sess, err := editor.Open(proc.Tree, logger)
//	if err != nil {
//		return err
//	}
//	child, err := sess.AddChild(parentID, graph.NodeData{Label: "Check quota"})
//	if err != nil {
//		return err
//	}
//	tree, err := sess.Stage()
//	if err != nil {
//		return err // tree invalid, session stays open for fixes
//	}
//
// Sessions are not safe for concurrent use. Every session serves one operator
// editing one procedure; the console holds one session per open editor tab.
package editor

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/graph/layout"
	"github.com/opsdeck/sopgraph/pkg/step"
)

// ErrInvalidStatus is returned by [Session.AddChild] and [Session.EditNode]
// when a patch or payload carries an unknown execution or health status.
var ErrInvalidStatus = errors.New("invalid status value")

// Session is one in-flight edit of a procedure graph.
//
// The zero value is not usable - use New or Open.
type Session struct {
	graph  *graph.Graph
	logger *log.Logger
}

// New creates a session holding a blank procedure: a lone root node.
func New(logger *log.Logger) *Session {
	s, _ := Open(step.Default(), logger) // a default tree has no stored ids, so conversion cannot fail
	return s
}

// Open creates a session over an existing procedure tree. If logger is nil,
// the default logger is used.
func Open(root step.Step, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Default()
	}
	g, err := graph.FromStep(root)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened session", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return &Session{graph: g, logger: logger}, nil
}

// Graph returns the session's underlying graph. Callers may read it freely
// and may wire edges directly (re-parenting a copy, for example); node
// creation and removal should go through the session methods so placement
// and logging stay consistent.
func (s *Session) Graph() *graph.Graph { return s.graph }

// AddChild creates a step node under parent and connects it with one edge.
// The node is placed by [layout.ChildPoint] relative to the parent's current
// position and child count, and receives a fresh id. Empty statuses in data
// default to [step.ExecutionPending] and [step.HealthUnknown]; anything else
// must be a valid status value.
func (s *Session) AddChild(parentID string, data graph.NodeData) (*graph.Node, error) {
	parent, ok := s.graph.Node(parentID)
	if !ok {
		return nil, fmt.Errorf("add child of %s: %w", parentID, graph.ErrUnknownNode)
	}

	if data.Execution == "" {
		data.Execution = step.ExecutionPending
	}
	if data.Health == "" {
		data.Health = step.HealthUnknown
	}
	if !data.Execution.Valid() {
		return nil, fmt.Errorf("execution status %q: %w", data.Execution, ErrInvalidStatus)
	}
	if !data.Health.Valid() {
		return nil, fmt.Errorf("health status %q: %w", data.Health, ErrInvalidStatus)
	}

	n := graph.Node{
		ID:       uuid.NewString(),
		Kind:     graph.KindStep,
		Position: layout.ChildPoint(parent.Position, s.graph.OutDegree(parentID)),
		Data:     data,
	}
	if err := s.graph.AddNode(n); err != nil {
		return nil, err
	}
	if err := s.graph.AddEdge(graph.Edge{Source: parentID, Target: n.ID}); err != nil {
		return nil, err
	}

	s.logger.Debug("added child", "parent", parentID, "node", n.ID, "label", data.Label)
	node, _ := s.graph.Node(n.ID)
	return node, nil
}

// NodePatch is a partial update for one node's data. Nil fields keep their
// current value, so an empty patch is a no-op.
type NodePatch struct {
	Label       *string               `json:"label,omitempty"`
	Description *string               `json:"description,omitempty"`
	Execution   *step.ExecutionStatus `json:"execution_status,omitempty"`
	Health      *step.HealthStatus    `json:"health_status,omitempty"`
}

// EditNode merges patch into one node's data. Structure and position are
// untouched. Statuses carried by the patch must be valid values. The root's
// label can be patched like any other node's, but flattening pins it back to
// [step.RootLabel].
func (s *Session) EditNode(id string, patch NodePatch) (*graph.Node, error) {
	n, ok := s.graph.Node(id)
	if !ok {
		return nil, fmt.Errorf("edit %s: %w", id, graph.ErrUnknownNode)
	}
	if patch.Execution != nil && !patch.Execution.Valid() {
		return nil, fmt.Errorf("execution status %q: %w", *patch.Execution, ErrInvalidStatus)
	}
	if patch.Health != nil && !patch.Health.Valid() {
		return nil, fmt.Errorf("health status %q: %w", *patch.Health, ErrInvalidStatus)
	}

	if patch.Label != nil {
		n.Data.Label = *patch.Label
	}
	if patch.Description != nil {
		n.Data.Description = *patch.Description
	}
	if patch.Execution != nil {
		n.Data.Execution = *patch.Execution
	}
	if patch.Health != nil {
		n.Data.Health = *patch.Health
	}

	s.logger.Debug("edited node", "node", id)
	return n, nil
}

// DeleteNode removes one node and every edge touching it. Children are not
// removed; they stay behind as orphans and drop out of the tree on the next
// Stage. Root protection is not enforced here - callers decide what is
// deletable via [graph.Node.CanDelete] before offering the gesture.
func (s *Session) DeleteNode(id string) error {
	if err := s.graph.RemoveNode(id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.logger.Debug("deleted node", "node", id)
	return nil
}

// CopyNode duplicates one node's data into a fresh step node offset by
// [graph.CopyOffset] on both axes, with [graph.CopySuffix] appended to the
// label. No edges are copied: the duplicate starts parentless and joins the
// tree only once the caller wires an edge to it; until then Stage drops it
// like any other orphan. Copies are always ordinary step nodes, even when
// the source is the root.
func (s *Session) CopyNode(id string) (*graph.Node, error) {
	src, ok := s.graph.Node(id)
	if !ok {
		return nil, fmt.Errorf("copy %s: %w", id, graph.ErrUnknownNode)
	}

	dup := graph.Node{
		ID:   uuid.NewString(),
		Kind: graph.KindStep,
		Position: graph.Point{
			X: src.Position.X + graph.CopyOffset,
			Y: src.Position.Y + graph.CopyOffset,
		},
		Data: src.Data,
	}
	dup.Data.Label += graph.CopySuffix

	if err := s.graph.AddNode(dup); err != nil {
		return nil, err
	}

	s.logger.Debug("copied node", "source", id, "copy", dup.ID)
	node, _ := s.graph.Node(dup.ID)
	return node, nil
}

// Arrange recomputes every node position with the whole-graph layout.
func (s *Session) Arrange() {
	layout.Arrange(s.graph)
	s.logger.Debug("arranged graph", "nodes", s.graph.NodeCount())
}

// Stage flattens the session's graph into a step tree and runs the pre-save
// validator over it. The returned tree is what gets persisted; orphaned
// nodes are not part of it. Stage does not modify the session, so a failed
// validation leaves the graph open for further edits.
func (s *Session) Stage() (step.Step, error) {
	tree, err := s.graph.ToStep()
	if err != nil {
		return step.Step{}, err
	}
	if err := step.Validate(&tree); err != nil {
		return step.Step{}, err
	}
	s.logger.Debug("staged tree", "steps", tree.Count())
	return tree, nil
}
