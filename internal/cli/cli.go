package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/declutter/pkg/buildinfo"
	"github.com/matzehuels/declutter/pkg/cache"
	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/observability"
	"github.com/matzehuels/declutter/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "declutter"

	// envConfig names a config file when --config is not given.
	envConfig = "DECLUTTER_CONFIG"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Declutter moves overlapping rectangles apart",
		Long: `Declutter removes overlap between axis-aligned rectangles such as map labels
or diagram boxes. Each overlapping box is nudged to the nearest free spot,
honouring per-box direction constraints and search limits.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML config file (default $"+envConfig+")")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dir, err)
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/declutter/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// derivedPath replaces the extension of input with "<suffix><ext>".
// An empty ext keeps the input's extension.
func derivedPath(input, suffix, ext string) string {
	inExt := filepath.Ext(input)
	if ext == "" {
		ext = inExt
	}
	return strings.TrimSuffix(input, inExt) + suffix + ext
}

// checkOutputPaths rejects unusable output paths before any solving starts.
// Paths are made absolute first, so relative ".." segments are allowed.
// Empty values and "-" (stdout) are skipped.
func checkOutputPaths(paths ...string) error {
	for _, p := range paths {
		if p == "" || p == "-" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve path %s", p)
		}
		if err := errors.ValidatePath(abs); err != nil {
			return fmt.Errorf("output %q: %w", p, err)
		}
	}
	return nil
}

// =============================================================================
// Solver Flags
// =============================================================================

// solverFlags holds the flags shared by every command that runs the solver.
type solverFlags struct {
	resolution  float64
	budget      time.Duration
	angleStep   float64
	searchLimit int
	strict      bool
	noCache     bool
	refresh     bool
	format      string
}

func addSolverFlags(cmd *cobra.Command, f *solverFlags) {
	cmd.Flags().Float64VarP(&f.resolution, "resolution", "r", pipeline.DefaultResolution, "radial search step")
	cmd.Flags().DurationVar(&f.budget, "budget", pipeline.DefaultBudget, "wall-clock limit for the solver")
	cmd.Flags().Float64Var(&f.angleStep, "angle-step", pipeline.DefaultAngleStep, "angle between candidate directions in degrees")
	cmd.Flags().IntVar(&f.searchLimit, "search-limit", pipeline.DefaultSearchLimit, "maximum rings scanned per entity")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when the budget runs out")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "input format: json, yaml, toml, geojson (default: from extension)")
}

// pipelineOptions layers config file values under explicitly set flags.
func (c *CLI) pipelineOptions(cmd *cobra.Command, f *solverFlags) (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := cfg.Pipeline

	set := cmd.Flags().Changed
	if set("resolution") || opts.Resolution == 0 {
		opts.Resolution = f.resolution
	}
	if set("budget") || opts.BudgetMS == 0 {
		opts.BudgetMS = f.budget.Milliseconds()
	}
	if set("angle-step") || opts.AngleStep == 0 {
		opts.AngleStep = f.angleStep
	}
	if set("search-limit") || opts.SearchLimit == 0 {
		opts.SearchLimit = f.searchLimit
	}
	if set("strict") {
		opts.Strict = f.strict
	}
	opts.Refresh = f.refresh
	opts.Logger = c.Logger

	if err := opts.ValidateForResolve(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}
