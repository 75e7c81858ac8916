package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/matzehuels/declutter/pkg/pipeline"
	"github.com/matzehuels/declutter/pkg/render/conflict"
)

// errOverlaps makes check exit non-zero when the document has collisions.
var errOverlaps = errors.New("overlaps found")

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	format   string
	graph    string // overlap graph output path
	all      bool   // include entities without overlaps in the graph
	detailed bool   // show bounds in graph nodes
	noCache  bool
}

// checkCommand creates the check command for reporting overlapping pairs.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Report overlapping entities without moving them",
		Long: `Report overlapping entities without moving them.

Lists every overlapping pair with its intersection area and exits non-zero
when at least one pair exists. With --graph the overlaps are also rendered as
a Graphviz graph with one node per entity and one edge per pair.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputPaths(opts.graph); err != nil {
				return err
			}
			return c.runCheck(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: json, yaml, toml, geojson (default: from extension)")
	cmd.Flags().StringVar(&opts.graph, "graph", "", "write the overlap graph as SVG")
	cmd.Flags().BoolVar(&opts.all, "all", false, "include non-overlapping entities in the graph")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show bounds in graph nodes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, input string, opts checkOpts) error {
	format, err := parseFormatFlag(opts.format)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	entities, err := runner.Load(ctx, input, format)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	conflicts := pipeline.Conflicts(entities)

	if opts.graph != "" {
		svg, _, err := runner.Graph(ctx, entities, conflict.Options{All: opts.all, Detailed: opts.detailed})
		if err != nil {
			return fmt.Errorf("render graph: %w", err)
		}
		if err := os.WriteFile(opts.graph, svg, 0o644); err != nil {
			return fmt.Errorf("write graph %s: %w", opts.graph, err)
		}
	}

	if len(conflicts) == 0 {
		printSuccess("No overlaps in %s", filepath.Base(input))
		printDetail("%d entities", len(entities))
		if opts.graph != "" {
			printFile(opts.graph)
		}
		return nil
	}

	printWarning("%d overlapping pairs in %s", len(conflicts), filepath.Base(input))
	fmt.Println(conflictTable(conflicts))
	if opts.graph != "" {
		printFile(opts.graph)
	}
	printNewline()
	printNextStep("Fix", appName+" resolve "+input)
	return errOverlaps
}

// conflictTable renders conflicts as a bordered table.
func conflictTable(conflicts []pipeline.Conflict) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(conflicts))
	for i, cf := range conflicts {
		rows[i] = []string{
			cf.A,
			cf.B,
			formatBound(orb.Bound{Min: orb.Point(cf.Min), Max: orb.Point(cf.Max)}),
			strconv.FormatFloat(cf.Area, 'f', -1, 64),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("A", "B", "Intersection", "Area").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
