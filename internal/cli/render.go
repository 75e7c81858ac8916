package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/declutter/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file; the extension picks svg, png or pdf
	width   int    // viewport width in pixels
	height  int    // viewport height in pixels, 0 keeps the aspect ratio
	labels  bool   // draw entity labels
	origins bool   // draw original positions and displacement lines
}

// renderCommand creates the render command for before/after previews.
func (c *CLI) renderCommand() *cobra.Command {
	var flags solverFlags
	opts := renderOpts{
		width:   pipeline.DefaultWidth,
		labels:  true,
		origins: true,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a before/after preview of the resolved layout",
		Long: `Render a before/after preview of the resolved layout.

Resolves the document (or reuses the cached result) and draws every entity at
its final position. Moved entities are highlighted and, with --origins, their
original outline and displacement are shown. Pinned entities are drawn in
gray and any remaining overlap in red.

PNG and PDF output require rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputPaths(opts.output); err != nil {
				return err
			}
			po, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			// Config values win over flag defaults, explicit flags win over both.
			set := cmd.Flags().Changed
			if set("width") || po.Width == 0 {
				po.Width = opts.width
			}
			if set("height") {
				po.Height = opts.height
			}
			if set("labels") || !po.Labels {
				po.Labels = opts.labels
			}
			if set("origins") || !po.Origins {
				po.Origins = opts.origins
			}
			return c.runRender(cmd.Context(), args[0], po, flags, opts.output)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.preview.svg)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "image height in pixels (default: keep aspect ratio)")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw entity labels")
	cmd.Flags().BoolVar(&opts.origins, "origins", opts.origins, "draw original positions")
	addSolverFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags solverFlags, output string) error {
	format, err := parseFormatFlag(flags.format)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.load(ctx, runner, input, format, opts)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = derivedPath(input, ".preview", ".svg")
	}
	if err := writePreview(ctx, runner, res, opts, outputPath); err != nil {
		return err
	}

	printSuccess("Rendered %s", filepath.Base(input))
	printFile(outputPath)
	printStats(res.Stats, res.CacheInfo.ResolveHit)
	if res.Stats.TimedOut {
		printWarning("Budget of %s exhausted, preview shows the input", opts.Budget())
	}
	return nil
}
