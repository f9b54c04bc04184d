package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsdeck/sopgraph/pkg/io"
)

// convertCommand creates the convert command for switching wire forms.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "convert [procedure.json]",
		Short: "Convert a procedure between tree and graph form",
		Long: `Convert a procedure between its two wire forms.

The tree form is the nested step document the store persists; the graph form
is the node-link document the canvas consumes. The input form is detected
automatically and converted to the other one unless --to forces a target.

Converting a graph back to a tree requires it to be acyclic; orphaned nodes
are dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(args[0], to, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<form>.json)")
	cmd.Flags().StringVar(&to, "to", "", "target form: tree or graph (default: the other form)")

	return cmd
}

// runConvert loads the document, converts it, and writes the result.
func (c *CLI) runConvert(input, to, output string) error {
	doc, err := io.ImportJSON(input)
	if err != nil {
		return err
	}

	target := io.Shape(to)
	if to == "" {
		target = io.ShapeGraph
		if doc.Shape == io.ShapeGraph {
			target = io.ShapeTree
		}
	}

	track := newProgress(c.Logger)

	var out *io.Document
	switch target {
	case io.ShapeTree:
		tree, err := doc.AsTree()
		if err != nil {
			return fmt.Errorf("convert to tree: %w", err)
		}
		out = io.TreeDocument(tree)
	case io.ShapeGraph:
		g, err := doc.AsGraph()
		if err != nil {
			return fmt.Errorf("convert to graph: %w", err)
		}
		out = io.GraphDocument(g)
	default:
		return fmt.Errorf("unknown target form %q", to)
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = fmt.Sprintf("%s.%s.json", base, target)
	}

	if err := io.ExportJSON(out, outputPath); err != nil {
		return err
	}

	steps, edges := documentStats(out)
	track.done(fmt.Sprintf("Converted %d steps", steps))

	printSuccess("Converted to %s form", target)
	printFile(outputPath)
	printStats(steps, edges, false)
	printNewline()
	if target == io.ShapeGraph {
		printNextStep("Layout", "sopgraph layout "+outputPath)
	} else {
		printNextStep("Validate", "sopgraph validate "+outputPath)
	}

	return nil
}

// documentStats reports step and edge counts for either wire form.
func documentStats(doc *io.Document) (steps, edges int) {
	if doc.Shape == io.ShapeGraph {
		return doc.Graph.NodeCount(), doc.Graph.EdgeCount()
	}
	return doc.Tree.Count(), doc.Tree.Count() - 1
}
