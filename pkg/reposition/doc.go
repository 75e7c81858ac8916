// Package reposition removes overlap between axis-aligned rectangles.
//
// Each [Entity] carries a rectangle plus optional movement constraints. The
// solver moves colliding entities the shortest distance it can find until no
// two rectangles intersect, or gives up once a wall-clock budget is spent.
//
// # Algorithm
//
// [Solve] runs an outer convergence loop over a private copy of the input:
//
//  1. Build the intersection index for the entities that are still active.
//  2. Entities with no intersections become settled; they are never moved
//     again but keep acting as obstacles.
//  3. Every remaining active entity, in input order, runs a radial
//     free-position search against all other entities and is translated
//     immediately when a free slot is found, so later entities in the same
//     pass see the new position. The search starts at the first ring even
//     when an earlier move in the pass has already cleared the entity.
//
// The free-position search scans rings of growing radius (one resolution
// step per ring) and, on every ring, a fixed set of compass directions
// (45° apart by default). The first candidate that clears all obstacles wins.
// This is a nearest-free-slot heuristic with a deterministic scan order, not
// a minimum-displacement solver.
//
// # Constraints
//
// [Fix] restricts the directions an entity may move in. [FixAll] pins it in
// place. MaxDistance caps the search radius; beyond it the entity simply
// stays where it is for the current pass.
//
// # Timeouts
//
// The loop checks its budget (300ms by default) once per iteration. When the
// budget is exceeded, [Solve] returns the input unchanged and reports
// TimedOut. [Reposition] returns only the entities and so cannot be told
// apart from an already clean input; use [Solve] when that matters.
//
// # Usage
//
//	entities := []reposition.Entity{
//	    {ID: "a", Bounds: geom.NewBounds(0, 0, 10, 10)},
//	    {ID: "b", Bounds: geom.NewBounds(5, 5, 15, 15), Fix: reposition.FixWest},
//	}
//	out := reposition.Reposition(entities, reposition.WithResolution(1))
package reposition
