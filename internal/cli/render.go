package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdeck/sopgraph/pkg/cache"
	"github.com/opsdeck/sopgraph/pkg/graph"
	"github.com/opsdeck/sopgraph/pkg/io"
	"github.com/opsdeck/sopgraph/pkg/observability"
	"github.com/opsdeck/sopgraph/pkg/render"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // output format: "svg" or "dot"
	detailed bool   // include descriptions and statuses in node labels
	pinned   bool   // honor stored canvas positions instead of ranked layout
	noCache  bool   // disable the local artifact cache
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [procedure.json]",
		Short: "Render a procedure as an SVG or DOT diagram",
		Long: `Render a procedure as an SVG or DOT diagram.

Tree and graph input are both accepted. By default Graphviz ranks the nodes
top-down; --pinned keeps the stored canvas positions instead. --detailed adds
descriptions and statuses to the node labels.

SVG artifacts are cached locally for faster repeated renders.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show descriptions and statuses in node labels")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "render at stored canvas positions")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the procedure, renders it, and writes the output file.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	doc, err := io.ImportJSON(input)
	if err != nil {
		return err
	}
	g, err := doc.AsGraph()
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	dot := render.ToDOT(g, render.Options{Detailed: opts.detailed, Pinned: opts.pinned})

	outputPath := opts.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + opts.format
	}

	var data []byte
	cacheHit := false
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, cacheHit, err = c.renderSVG(ctx, g, dot, opts)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Render complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)

	return nil
}

// renderSVG renders the DOT source to SVG, consulting the artifact cache.
// The cache key covers the full snapshot so moved pinned positions miss.
func (c *CLI) renderSVG(ctx context.Context, g *graph.Graph, dot string, opts *renderOpts) ([]byte, bool, error) {
	artifacts, err := newArtifactCache(opts.noCache)
	if err != nil {
		return nil, false, fmt.Errorf("open cache: %w", err)
	}
	defer artifacts.Close()

	snapshot, err := graph.Marshal(g)
	if err != nil {
		return nil, false, fmt.Errorf("encode graph: %w", err)
	}
	key := cache.NewDefaultKeyer().ArtifactKey(cache.Hash(snapshot), cache.ArtifactKeyOpts{
		Format:   formatSVG,
		Pinned:   opts.pinned,
		Detailed: opts.detailed,
	})

	if data, hit, err := artifacts.Get(ctx, key); err != nil {
		c.Logger.Warn("artifact cache get", "err", err)
	} else if hit {
		return data, true, nil
	}

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()

	observability.Render().OnRenderStart(ctx, formatSVG, g.NodeCount())
	start := time.Now()
	svg, err := render.RenderSVG(dot)
	observability.Render().OnRenderComplete(ctx, formatSVG, time.Since(start), err)
	if err != nil {
		spinner.StopWithError("Render failed")
		return nil, false, fmt.Errorf("render svg: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	if err := artifacts.Set(ctx, key, svg, cache.TTLArtifact); err != nil {
		c.Logger.Warn("artifact cache set", "err", err)
	}
	return svg, false, nil
}

// validateFormat checks that the requested output format is supported.
func validateFormat(format string) error {
	switch format {
	case formatSVG, formatDOT:
		return nil
	default:
		return fmt.Errorf("unknown format %q (supported: svg, dot)", format)
	}
}
