package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/declutter/pkg/cache"
	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/geom"
	dio "github.com/matzehuels/declutter/pkg/io"
	"github.com/matzehuels/declutter/pkg/observability"
	"github.com/matzehuels/declutter/pkg/render"
	"github.com/matzehuels/declutter/pkg/render/conflict"
	"github.com/matzehuels/declutter/pkg/render/preview"
	"github.com/matzehuels/declutter/pkg/reposition"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedResult is the cache representation of a solved arrangement.
type cachedResult struct {
	Document dio.Document `json:"document"`
	Stats    Stats        `json:"stats"`
}

// Load reads and validates an entity document. An empty format is detected
// from the file extension.
func (r *Runner) Load(ctx context.Context, path string, format dio.Format) ([]reposition.Entity, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path, string(format))

	start := time.Now()
	entities, err := dio.Import(path, format)
	hooks.OnLoadComplete(ctx, path, len(entities), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded entities", "path", path, "entities", len(entities), "duration", time.Since(start))
	return entities, nil
}

// Resolve removes overlaps from entities, serving repeated inputs from the
// cache. Timed-out runs are never cached. With opts.Strict a timeout is
// returned as an ErrCodeTimeout error alongside the (unchanged) result.
func (r *Runner) Resolve(ctx context.Context, entities []reposition.Entity, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForResolve(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	inputHash, err := cache.HashJSON(dio.NewDocument(entities))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash input")
	}
	key := r.Keyer.ResultKey(inputHash, opts.ResultKeyOpts())

	result := &Result{
		Input:     entities,
		InputHash: inputHash,
		Key:       key,
	}

	if !opts.Refresh {
		var cached cachedResult
		if err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil {
			if out, err := cached.Document.Decode(); err == nil && len(out) == len(entities) {
				observability.Cache().OnCacheHit(ctx, "result")
				result.Entities = out
				result.Stats = cached.Stats
				result.CacheInfo.ResolveHit = true
				opts.Logger.Debug("resolve cache hit", "key", key)
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "result")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnSolveStart(ctx, len(entities))
	solved := reposition.Solve(entities, opts.SolverOptions()...)
	result.Entities = solved.Entities
	result.Stats = buildStats(entities, solved)
	hooks.OnSolveComplete(ctx, len(entities), observability.SolveStats{
		Iterations: solved.Iterations,
		Moved:      len(solved.Moved),
		Converged:  solved.Converged,
		TimedOut:   solved.TimedOut,
	}, solved.Elapsed)

	opts.Logger.Info("resolved overlaps",
		"entities", len(entities),
		"moved", result.Stats.Moved,
		"iterations", solved.Iterations,
		"duration", solved.Elapsed)

	if solved.TimedOut {
		opts.Logger.Warn("time budget exhausted, returning input unchanged",
			"budget", opts.Budget(),
			"unresolved", len(solved.Unresolved))
		if opts.Strict {
			return result, errors.New(errors.ErrCodeTimeout,
				"no overlap-free arrangement within %s (%d entities still colliding)", opts.Budget(), len(solved.Unresolved))
		}
		return result, nil
	}

	entry := cachedResult{Document: dio.NewDocument(result.Entities), Stats: result.Stats}
	if err := cache.SetJSON(ctx, r.Cache, key, entry, cache.TTLResult); err != nil {
		opts.Logger.Debug("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "result", len(entities))
	}

	return result, nil
}

// Preview renders the before/after picture of a result in
// opts.PreviewFormat. The boolean reports a cache hit.
func (r *Runner) Preview(ctx context.Context, res *Result, opts Options) ([]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}

	resultHash, err := cache.HashJSON(struct {
		In  dio.Document `json:"in"`
		Out dio.Document `json:"out"`
	}{dio.NewDocument(res.Input), dio.NewDocument(res.Entities)})
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash result")
	}
	key := r.Keyer.PreviewKey(resultHash, opts.PreviewKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "preview")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "preview")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, "preview")
	start := time.Now()

	svg := preview.RenderSVG(res.Input, res.Entities, opts.PreviewOptions()...)
	data, err := render.Convert(svg, opts.PreviewFormat)
	hooks.OnRenderComplete(ctx, "preview", len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLPreview); err == nil {
		observability.Cache().OnCacheSet(ctx, "preview", len(data))
	}
	opts.Logger.Debug("rendered preview", "format", opts.PreviewFormat, "bytes", len(data))
	return data, false, nil
}

// Graph renders the overlap graph of entities as SVG. The boolean reports a
// cache hit.
func (r *Runner) Graph(ctx context.Context, entities []reposition.Entity, opts conflict.Options) ([]byte, bool, error) {
	docHash, err := cache.HashJSON(struct {
		Doc  dio.Document     `json:"doc"`
		Opts conflict.Options `json:"opts"`
	}{dio.NewDocument(entities), opts})
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash input")
	}
	key := r.Keyer.GraphKey(docHash)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "graph")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, "graph")
	start := time.Now()

	dot := conflict.ToDOT(entities, reposition.Overlaps(entities), opts)
	data, err := conflict.RenderSVG(ctx, dot)
	hooks.OnRenderComplete(ctx, "graph", len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLGraph); err == nil {
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}
	return data, false, nil
}

// Lookup returns a previously cached result by key.
func (r *Runner) Lookup(ctx context.Context, key string) ([]reposition.Entity, Stats, error) {
	var cached cachedResult
	if err := cache.GetJSON(ctx, r.Cache, key, &cached); err != nil {
		if err == cache.ErrCacheMiss {
			return nil, Stats{}, errors.Wrap(errors.ErrCodeNotFound, err, "no result for key %q", key)
		}
		return nil, Stats{}, err
	}
	entities, err := cached.Document.Decode()
	if err != nil {
		return nil, Stats{}, errors.Wrap(errors.ErrCodeInternal, err, "decode cached result")
	}
	return entities, cached.Stats, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func buildStats(in []reposition.Entity, res reposition.Result) Stats {
	s := Stats{
		EntityCount: len(in),
		Iterations:  res.Iterations,
		Moved:       len(res.Moved),
		Converged:   res.Converged,
		TimedOut:    res.TimedOut,
		SolveTime:   res.Elapsed,
	}
	for _, i := range res.Unresolved {
		s.Unresolved = append(s.Unresolved, in[i].ID)
	}
	for _, i := range res.Moved {
		d := geom.Length(geom.Offset(in[i].Bounds, res.Entities[i].Bounds))
		s.TotalDisplacement += d
		s.MaxDisplacement = max(s.MaxDisplacement, d)
	}
	return s
}
