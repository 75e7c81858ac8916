package reposition

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Fix names the direction in which an entity must not move.
type Fix string

// Fix values. The zero value leaves the entity free.
const (
	FixNone  Fix = ""
	FixNorth Fix = "n"
	FixSouth Fix = "s"
	FixEast  Fix = "e"
	FixWest  Fix = "w"
	FixAll   Fix = "all"
)

// Fixes lists every accepted non-empty Fix value.
var Fixes = []Fix{FixNorth, FixSouth, FixEast, FixWest, FixAll}

// ParseFix converts a user supplied string into a Fix. Long compass names
// ("north", "west") are accepted alongside the single letters.
func ParseFix(s string) (Fix, error) {
	switch s {
	case "":
		return FixNone, nil
	case "n", "north":
		return FixNorth, nil
	case "s", "south":
		return FixSouth, nil
	case "e", "east":
		return FixEast, nil
	case "w", "west":
		return FixWest, nil
	case "all":
		return FixAll, nil
	}
	return FixNone, fmt.Errorf("unknown fix %q (must be one of: n, s, e, w, all)", s)
}

// Valid reports whether f is one of the known values.
func (f Fix) Valid() bool {
	_, ok := angleRanges[f]
	return ok || f == FixAll
}

// angleRange is a half-open interval [lo, hi) of compass degrees.
type angleRange struct {
	lo, hi float64
}

// angleRanges holds the permitted search directions per fix. Each
// directional fix keeps the six compass points centred on the opposite side
// and drops the two that lead toward the fixed side.
var angleRanges = map[Fix]angleRange{
	FixNone:  {0, 360},
	FixNorth: {45, 315},
	FixSouth: {-135, 135},
	FixEast:  {135, 405},
	FixWest:  {-45, 225},
}

// Entity is one positioned rectangle handled by the solver.
type Entity struct {
	// ID identifies the entity to callers. The solver never interprets it.
	ID string

	// Bounds is the current rectangle.
	Bounds orb.Bound

	// Fix restricts the movement direction, or pins the entity with FixAll.
	Fix Fix

	// MaxDistance caps the search radius. Nil leaves the radius bounded only
	// by the search ring limit.
	MaxDistance *float64

	// Label is display text carried through untouched.
	Label string
}

// Movable reports whether the solver may ever translate e.
func (e Entity) Movable() bool {
	return e.Fix != FixAll
}

func cloneEntities(in []Entity) []Entity {
	out := make([]Entity, len(in))
	copy(out, in)
	return out
}
