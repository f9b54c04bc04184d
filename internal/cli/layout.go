package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsdeck/sopgraph/pkg/graph/layout"
	"github.com/opsdeck/sopgraph/pkg/io"
)

// layoutCommand creates the layout command for recomputing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Recompute node positions for a procedure graph",
		Long: `Recompute node positions for a procedure graph.

The layout command arranges every node level by level below the root: the
root at its fixed anchor, each level one row down, siblings centered around
the root column. Tree input is expanded to a graph first. Nodes unreachable
from the root keep their stored positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")

	return cmd
}

// runLayout loads the graph, arranges it, and writes the result.
func (c *CLI) runLayout(input, output string) error {
	doc, err := io.ImportJSON(input)
	if err != nil {
		return err
	}
	g, err := doc.AsGraph()
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	track := newProgress(c.Logger)
	layout.Arrange(g)
	track.done(fmt.Sprintf("Arranged %d nodes", g.NodeCount()))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := io.ExportJSON(io.GraphDocument(g), outputPath); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), false)
	printNewline()
	printNextStep("Render", "sopgraph render "+outputPath)

	return nil
}
