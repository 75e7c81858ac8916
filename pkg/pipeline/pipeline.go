// Package pipeline provides the load → resolve → render pipeline for declutter.
//
// This package implements the complete pipeline used by the CLI and the
// HTTP API. By centralizing this logic, both entry points share defaults,
// validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate an entity document (JSON, YAML, TOML, GeoJSON)
//  2. Resolve: Remove overlaps with the repositioning solver
//  3. Render: Draw a before/after preview or an overlap graph
//
// Each stage can be run independently. Resolve and render results are
// cached by content hash, so re-running an unchanged document is free.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	entities, err := runner.Load(ctx, "labels.json", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Resolve(ctx, entities, pipeline.Options{Resolution: 1})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg, _, err := runner.Preview(ctx, result, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/declutter/pkg/cache"
	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/render"
	"github.com/matzehuels/declutter/pkg/render/preview"
	"github.com/matzehuels/declutter/pkg/reposition"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultResolution is the radial search step.
	DefaultResolution = reposition.DefaultResolution

	// DefaultBudget is the wall-clock limit for one solver run.
	DefaultBudget = reposition.DefaultBudget

	// DefaultAngleStep is the angular increment between candidate directions.
	DefaultAngleStep = reposition.DefaultAngleStep

	// DefaultSearchLimit caps the rings scanned per search.
	DefaultSearchLimit = reposition.DefaultSearchLimit

	// DefaultWidth is the default preview width in pixels.
	DefaultWidth = preview.DefaultWidth

	// DefaultPreviewFormat is the default preview output format.
	DefaultPreviewFormat = render.FormatSVG
)

// ValidPreviewFormats is the set of supported preview formats.
var ValidPreviewFormats = map[string]bool{
	render.FormatSVG: true,
	render.FormatPNG: true,
	render.FormatPDF: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests and TOML for
// config files.
type Options struct {
	// Solver options
	Resolution  float64 `json:"resolution,omitempty" toml:"resolution,omitempty"`
	BudgetMS    int64   `json:"budget_ms,omitempty" toml:"budget_ms,omitempty"`
	AngleStep   float64 `json:"angle_step,omitempty" toml:"angle_step,omitempty"`
	SearchLimit int     `json:"search_limit,omitempty" toml:"search_limit,omitempty"`
	Strict      bool    `json:"strict,omitempty" toml:"strict,omitempty"`   // Fail when the budget runs out
	Refresh     bool    `json:"refresh,omitempty" toml:"refresh,omitempty"` // Ignore cached results

	// Render options
	Width         int    `json:"width,omitempty" toml:"width,omitempty"`
	Height        int    `json:"height,omitempty" toml:"height,omitempty"`
	Labels        bool   `json:"labels,omitempty" toml:"labels,omitempty"`
	Origins       bool   `json:"origins,omitempty" toml:"origins,omitempty"`
	PreviewFormat string `json:"preview_format,omitempty" toml:"preview_format,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a resolve run.
type Result struct {
	// Input is the arrangement as loaded.
	Input []reposition.Entity

	// Entities is the resolved arrangement, or Input when the run timed out.
	Entities []reposition.Entity

	// InputHash is the content hash of Input.
	InputHash string

	// Key is the cache key the result is stored under.
	Key string

	// Stats contains timing and movement information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount       int           `json:"entities"`
	Iterations        int           `json:"iterations"`
	Moved             int           `json:"moved"`
	Converged         bool          `json:"converged"`
	TimedOut          bool          `json:"timed_out"`
	Unresolved        []string      `json:"unresolved,omitempty"`
	MaxDisplacement   float64       `json:"max_displacement"`
	TotalDisplacement float64       `json:"total_displacement"`
	SolveTime         time.Duration `json:"solve_time_ns"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ResolveHit bool `json:"resolve_hit"` // Whether the solved arrangement came from cache
	PreviewHit bool `json:"preview_hit"` // Whether the preview came from cache
	GraphHit   bool `json:"graph_hit"`   // Whether the overlap graph came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidatePreviewFormat checks that a preview format is valid.
func ValidatePreviewFormat(format string) error {
	if !ValidPreviewFormats[format] {
		return errors.New(errors.ErrCodeInvalidOption, "invalid preview format: %q (must be one of: svg, png, pdf)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForResolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetResolveDefaults sets default values for the solver.
func (o *Options) SetResolveDefaults() {
	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}
	if o.BudgetMS == 0 {
		o.BudgetMS = DefaultBudget.Milliseconds()
	}
	if o.AngleStep == 0 {
		o.AngleStep = DefaultAngleStep
	}
	if o.SearchLimit == 0 {
		o.SearchLimit = DefaultSearchLimit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForResolve validates and sets defaults for the solver.
func (o *Options) ValidateForResolve() error {
	if err := errors.ValidatePositive("resolution", o.Resolution); err != nil {
		return err
	}
	if err := errors.ValidateBudget(o.Budget()); err != nil {
		return err
	}
	if err := errors.ValidateAngleStep(o.AngleStep); err != nil {
		return err
	}
	if o.SearchLimit < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "search_limit must not be negative, got %d", o.SearchLimit)
	}
	o.SetResolveDefaults()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.PreviewFormat == "" {
		o.PreviewFormat = DefaultPreviewFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "preview size must not be negative, got %dx%d", o.Width, o.Height)
	}
	o.SetRenderDefaults()
	return ValidatePreviewFormat(o.PreviewFormat)
}

// Budget returns the solver budget as a duration.
func (o *Options) Budget() time.Duration {
	return time.Duration(o.BudgetMS) * time.Millisecond
}

// SolverOptions translates the options into solver options.
func (o *Options) SolverOptions() []reposition.Option {
	return []reposition.Option{
		reposition.WithResolution(o.Resolution),
		reposition.WithBudget(o.Budget()),
		reposition.WithAngleStep(o.AngleStep),
		reposition.WithSearchLimit(o.SearchLimit),
	}
}

// PreviewOptions translates the options into preview render options.
func (o *Options) PreviewOptions() []preview.Option {
	opts := []preview.Option{preview.WithSize(o.Width, o.Height)}
	if o.Labels {
		opts = append(opts, preview.WithLabels())
	}
	if o.Origins {
		opts = append(opts, preview.WithOrigins())
	}
	return opts
}

// ResultKeyOpts returns cache key options for solved arrangements.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Resolution:  o.Resolution,
		BudgetMS:    o.BudgetMS,
		AngleStep:   o.AngleStep,
		SearchLimit: o.SearchLimit,
	}
}

// PreviewKeyOpts returns cache key options for previews.
func (o *Options) PreviewKeyOpts() cache.PreviewKeyOpts {
	return cache.PreviewKeyOpts{
		Format:      o.PreviewFormat,
		Width:       o.Width,
		Height:      o.Height,
		ShowLabels:  o.Labels,
		ShowOrigins: o.Origins,
	}
}

// String summarises the solver options for log output.
func (o *Options) String() string {
	return fmt.Sprintf("resolution=%g budget=%s angle_step=%g search_limit=%d", o.Resolution, o.Budget(), o.AngleStep, o.SearchLimit)
}
