package reposition

import (
	"time"

	"github.com/matzehuels/declutter/pkg/geom"
)

// Defaults applied when an option is unset or not positive.
const (
	DefaultResolution  = 1.0
	DefaultBudget      = 300 * time.Millisecond
	DefaultAngleStep   = 45.0
	DefaultSearchLimit = 1000
)

type config struct {
	resolution  float64
	budget      time.Duration
	angleStep   float64
	searchLimit int
	now         func() time.Time
}

func newConfig(opts []Option) config {
	cfg := config{
		resolution:  DefaultResolution,
		budget:      DefaultBudget,
		angleStep:   DefaultAngleStep,
		searchLimit: DefaultSearchLimit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a solver run.
type Option func(*config)

// WithResolution sets the radial search step. Larger values converge faster
// with coarser placement.
func WithResolution(r float64) Option {
	return func(c *config) {
		if r > 0 {
			c.resolution = r
		}
	}
}

// WithBudget sets the wall-clock limit for the whole run.
func WithBudget(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.budget = d
		}
	}
}

// WithAngleStep sets the angular increment, in degrees, between candidate
// directions on one ring.
func WithAngleStep(deg float64) Option {
	return func(c *config) {
		if deg > 0 {
			c.angleStep = deg
		}
	}
}

// WithSearchLimit caps the number of rings scanned per search.
func WithSearchLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// Result describes the outcome of [Solve].
type Result struct {
	// Entities is the resolved arrangement, or the untouched input when the
	// run timed out.
	Entities []Entity

	Iterations int
	Converged  bool
	TimedOut   bool
	Elapsed    time.Duration

	// Unresolved holds the indices still colliding when the budget ran out.
	Unresolved []int

	// Moved holds the indices whose bounds differ from the input.
	Moved []int
}

// Solve separates overlapping entities and reports how the run went.
// The input slice is never modified.
func Solve(entities []Entity, opts ...Option) Result {
	cfg := newConfig(opts)
	start := cfg.now()

	work := cloneEntities(entities)
	active := allIndices(len(work))
	res := Result{}

	for {
		res.Iterations++
		hits := Intersections(work, active)

		next := active[:0]
		for _, i := range active {
			if _, ok := hits[i]; ok {
				next = append(next, i)
			}
		}
		active = next

		if len(active) == 0 {
			res.Converged = true
			break
		}
		if cfg.now().Sub(start) > cfg.budget {
			res.TimedOut = true
			res.Unresolved = append([]int(nil), active...)
			break
		}

		for _, i := range active {
			if !work[i].Movable() {
				continue
			}
			if offset, ok := scanRings(work, i, cfg); ok {
				work[i].Bounds = geom.Translate(work[i].Bounds, offset)
			}
		}
	}

	res.Elapsed = cfg.now().Sub(start)
	if res.TimedOut {
		res.Entities = entities
		return res
	}
	res.Entities = work
	for i := range work {
		if work[i].Bounds != entities[i].Bounds {
			res.Moved = append(res.Moved, i)
		}
	}
	return res
}

// Reposition returns entities with overlaps removed. When the time budget
// runs out the input is returned as is.
func Reposition(entities []Entity, opts ...Option) []Entity {
	return Solve(entities, opts...).Entities
}
