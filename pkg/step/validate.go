package step

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilTree is returned by [Validate] when the tree is nil.
var ErrNilTree = errors.New("procedure tree is nil")

// ValidationError identifies the first step that fails pre-save validation.
// The console surfaces offending steps by label, so the label is carried
// rather than a path or index.
type ValidationError struct {
	Label string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %q has an empty description", e.Label)
}

// Validate checks that every step in the tree carries a non-empty
// description. Whitespace-only descriptions count as empty. Steps are
// visited depth-first with parents before children and siblings in order,
// and the first failure short-circuits as a [*ValidationError] naming that
// step's label.
//
// Validate runs when an edited tree is staged for saving, never on
// individual edits.
func Validate(s *Step) error {
	if s == nil {
		return ErrNilTree
	}
	if strings.TrimSpace(s.Description) == "" {
		return &ValidationError{Label: s.Label}
	}
	for i := range s.Children {
		if err := Validate(&s.Children[i]); err != nil {
			return err
		}
	}
	return nil
}
