package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/declutter/pkg/errors"
	dio "github.com/matzehuels/declutter/pkg/io"
	"github.com/matzehuels/declutter/pkg/pipeline"
	"github.com/matzehuels/declutter/pkg/render"
)

// resolveCommand creates the resolve command that removes overlaps from a
// document and writes the result next to it.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		flags   solverFlags
		output  string
		preview string
	)

	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Move overlapping entities apart",
		Long: `Move overlapping entities apart.

The input is a JSON, YAML, TOML or GeoJSON document of rectangles. Every
rectangle that overlaps another is shifted to the nearest free position,
respecting its "fix" direction and "max_distance". The result is written to
<file>.resolved.<ext> unless -o is given; use -o - for stdout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputPaths(output, preview); err != nil {
				return err
			}
			opts, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runResolve(cmd.Context(), args[0], opts, flags, output, preview)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.resolved.<ext>, - for stdout)")
	cmd.Flags().StringVar(&preview, "preview", "", "also write a before/after preview (svg, png or pdf by extension)")
	addSolverFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, input string, opts pipeline.Options, flags solverFlags, output, preview string) error {
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

	if output == "-" {
		outFormat := format
		if outFormat == "" {
			if outFormat, err = dio.DetectFormat(input); err != nil {
				return err
			}
		}
		return dio.Write(os.Stdout, res.Entities, outFormat)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = derivedPath(input, ".resolved", "")
	}
	if err := dio.Export(res.Entities, outputPath, ""); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Resolved %s", filepath.Base(input))
	printFile(outputPath)

	if preview != "" {
		if err := writePreview(ctx, runner, res, opts, preview); err != nil {
			return err
		}
		printFile(preview)
	}

	printStats(res.Stats, res.CacheInfo.ResolveHit)
	if res.Stats.TimedOut {
		printWarning("Budget of %s exhausted, input written unchanged (%d entities still colliding)", opts.Budget(), len(res.Stats.Unresolved))
		printDetail("Unresolved: %s", strings.Join(res.Stats.Unresolved, ", "))
	} else if preview == "" {
		printNewline()
		printNextStep("Preview", appName+" render "+input)
	}
	return nil
}

// load reads input and runs the solver behind a spinner. A strict timeout
// is reported as an error.
func (c *CLI) load(ctx context.Context, runner *pipeline.Runner, input string, format dio.Format, opts pipeline.Options) (*pipeline.Result, error) {
	prog := newProgress(c.Logger)
	entities, err := runner.Load(ctx, input, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	prog.done(fmt.Sprintf("Loaded %d entities from %s", len(entities), filepath.Base(input)))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %d entities...", len(entities)))
	spinner.Start()

	res, err := runner.Resolve(ctx, entities, opts)
	if err != nil {
		spinner.StopWithError("Resolve failed")
		if errors.Is(err, errors.ErrCodeTimeout) && res != nil {
			printDetail("Unresolved: %s", strings.Join(res.Stats.Unresolved, ", "))
		}
		return nil, err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return res, nil
}

// writePreview renders res to path, choosing the format from the extension.
func writePreview(ctx context.Context, runner *pipeline.Runner, res *pipeline.Result, opts pipeline.Options, path string) error {
	opts.PreviewFormat = previewFormat(path)
	data, _, err := runner.Preview(ctx, res, opts)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preview %s: %w", path, err)
	}
	return nil
}

// previewFormat maps an output path to a render format, defaulting to SVG.
func previewFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return render.FormatPNG
	case ".pdf":
		return render.FormatPDF
	}
	return render.FormatSVG
}

// parseFormatFlag parses an optional --format value.
func parseFormatFlag(s string) (dio.Format, error) {
	if s == "" {
		return "", nil
	}
	return dio.ParseFormat(s)
}
