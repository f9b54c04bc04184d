package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/opsdeck/sopgraph/pkg/editor"
	"github.com/opsdeck/sopgraph/pkg/io"
)

// editCommand creates the edit command for the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit [procedure.json]",
		Short: "Edit a procedure tree interactively",
		Long: `Edit a procedure tree interactively.

The editor shows the tree with execution and health statuses and supports
adding, editing, copying, attaching, and deleting steps, plus recomputing
the layout. Saving validates the tree first; a step with an empty
description blocks the save and is named, and the session stays open for
fixes.

Without an argument the editor starts from a blank procedure.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runEdit(input, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: the input file)")

	return cmd
}

// runEdit opens the session, runs the editor, and writes the staged tree.
func (c *CLI) runEdit(input, output string) error {
	var sess *editor.Session
	if input == "" {
		sess = editor.New(c.Logger)
	} else {
		doc, err := io.ImportJSON(input)
		if err != nil {
			return err
		}
		tree, err := doc.AsTree()
		if err != nil {
			return fmt.Errorf("load procedure %s: %w", input, err)
		}
		sess, err = editor.Open(tree, c.Logger)
		if err != nil {
			return fmt.Errorf("open procedure %s: %w", input, err)
		}
	}

	outputPath := output
	if outputPath == "" {
		outputPath = input
	}
	if outputPath == "" {
		outputPath = "procedure.json"
	}

	p := tea.NewProgram(NewEditModel(sess, filepath.Base(outputPath)))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	result, ok := finalModel.(EditModel)
	if !ok {
		return fmt.Errorf("unexpected model type from bubbletea: %T", finalModel)
	}

	if result.staged == nil {
		printInfo("Discarded edits")
		return nil
	}

	if err := io.ExportJSON(io.TreeDocument(*result.staged), outputPath); err != nil {
		return err
	}

	printSuccess("Procedure saved")
	printFile(outputPath)
	printStats(result.staged.Count(), result.staged.Count()-1, false)
	printNewline()
	printNextStep("Render", "sopgraph render "+outputPath)

	return nil
}
