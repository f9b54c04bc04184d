package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/io"
	"github.com/opsdeck/sopgraph/pkg/step"
)

// validateCommand creates the validate command for pre-save checks.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [procedure.json]",
		Short: "Validate a procedure before saving",
		Long: `Validate a procedure before saving.

Tree input is checked against the wire schema, then every step must carry a
non-empty description. Graph input is checked structurally (single root,
acyclic, at most one parent per node), flattened, and validated the same
way. The first failing step is named.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}

	return cmd
}

// runValidate checks one document and reports the verdict.
func (c *CLI) runValidate(input string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	shape, err := io.DetectShape(data)
	if err != nil {
		return fmt.Errorf("validate %s: %w", input, err)
	}

	var tree step.Step
	switch shape {
	case io.ShapeTree:
		if err := step.ValidateWire(data); err != nil {
			var serr *step.SchemaError
			if errors.As(err, &serr) {
				printError("Document fails the wire schema")
				for _, v := range serr.Violations {
					printDetail("%s", v)
				}
				return errors.New("schema validation failed")
			}
			return err
		}
		tree, err = step.Unmarshal(data)
		if err != nil {
			return err
		}

	case io.ShapeGraph:
		g, err := graph.Unmarshal(data)
		if err != nil {
			printError("Graph is not well formed")
			return err
		}
		if err := g.Validate(); err != nil {
			printError("Graph is not well formed")
			return err
		}
		tree, err = g.ToStep()
		if err != nil {
			return err
		}
		if dropped := g.NodeCount() - tree.Count(); dropped > 0 {
			printWarning("%d unattached nodes are not part of the tree", dropped)
		}
	}

	if err := step.Validate(&tree); err != nil {
		var verr *step.ValidationError
		if errors.As(err, &verr) {
			printError("Step %q has an empty description", verr.Label)
			return errors.New("validation failed")
		}
		return err
	}

	printSuccess("Procedure is valid")
	printStats(tree.Count(), tree.Count()-1, false)
	return nil
}
