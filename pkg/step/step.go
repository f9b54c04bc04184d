package step

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// RootLabel is the fixed label of the root step. Conversions force it in
// both directions so the entry point of a procedure stays recognizable no
// matter what a stored document claims.
const RootLabel = "Start"

// Step is one node of a diagnostic procedure tree. Children are ordered;
// their order is the order an operator works through them.
//
// The zero value is an unnamed step with no statuses and no children. Use
// Default for the canonical empty procedure.
type Step struct {
	ID          string          `json:"id,omitempty" bson:"id,omitempty"`
	Label       string          `json:"step" bson:"step"`
	Description string          `json:"description" bson:"description"`
	Execution   ExecutionStatus `json:"execution_status" bson:"execution_status"`
	Health      HealthStatus    `json:"health_status" bson:"health_status"`
	Children    []Step          `json:"children,omitempty" bson:"children,omitempty"`
}

// Default returns the single-step tree used when a procedure has no stored
// tree yet: a Start root, pending execution, unknown health, no children.
func Default() Step {
	return Step{
		Label:     RootLabel,
		Execution: ExecutionPending,
		Health:    HealthUnknown,
	}
}

// Clone returns a deep copy of the tree. Mutating the copy never affects
// the original.
func (s Step) Clone() Step {
	out := s
	if s.Children != nil {
		out.Children = make([]Step, len(s.Children))
		for i, c := range s.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Count returns the number of steps in the tree, including s itself.
func (s Step) Count() int {
	n := 1
	for _, c := range s.Children {
		n += c.Count()
	}
	return n
}

// Depth returns the number of levels in the tree. A single step has depth 1.
func (s Step) Depth() int {
	max := 0
	for _, c := range s.Children {
		if d := c.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// Walk calls fn for s and every descendant in depth-first order, parents
// before children and siblings in child order. The depth argument is 0 for
// s itself. Mutations through the pointer are visible in the tree.
func (s *Step) Walk(fn func(st *Step, depth int)) {
	s.walk(fn, 0)
}

func (s *Step) walk(fn func(st *Step, depth int), depth int) {
	fn(s, depth)
	for i := range s.Children {
		s.Children[i].walk(fn, depth+1)
	}
}

// Marshal encodes the tree as indented JSON in the wire format.
func Marshal(s Step) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal decodes a wire-format tree from JSON bytes.
func Unmarshal(data []byte) (Step, error) {
	var s Step
	if err := json.Unmarshal(data, &s); err != nil {
		return Step{}, fmt.Errorf("decode tree: %w", err)
	}
	return s, nil
}

// Read decodes a wire-format tree from r. Read does not close r.
func Read(r io.Reader) (Step, error) {
	var s Step
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Step{}, fmt.Errorf("decode tree: %w", err)
	}
	return s, nil
}

// Write encodes the tree as indented JSON to w.
func Write(s Step, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}

// ReadFile decodes a wire-format tree from the file at path.
func ReadFile(path string) (Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return Step{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes the tree as indented JSON to the file at path.
func WriteFile(s Step, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(s, f)
}
