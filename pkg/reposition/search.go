package reposition

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/declutter/pkg/geom"
)

// FindFreeOffset looks for the closest translation that moves the entity at
// index i clear of every other entity. Rings of growing radius are scanned
// one resolution step at a time and, on each ring, the directions permitted
// by the entity's Fix are tried in ascending angle order. The first free
// candidate wins.
//
// An entity that is already clear yields a zero offset. The boolean is false
// when no free slot exists within MaxDistance (or the ring limit), and
// always false for FixAll entities.
func FindFreeOffset(entities []Entity, i int, opts ...Option) (orb.Point, bool) {
	if entities[i].Movable() && !IsSomeIntersection(entities[i].Bounds, entities, i) {
		return orb.Point{}, true
	}
	return scanRings(entities, i, newConfig(opts))
}

// scanRings returns the first free candidate starting at ring 1. The
// unmoved position is not tested, so an entity that an earlier move already
// cleared still takes its first free ring-1 slot.
func scanRings(entities []Entity, i int, cfg config) (orb.Point, bool) {
	e := entities[i]
	ar, ok := angleRanges[e.Fix]
	if !ok {
		return orb.Point{}, false
	}

	step := cfg.resolution
	for ring := 1; ring <= cfg.searchLimit; ring++ {
		radius := float64(ring) * step
		if e.MaxDistance != nil && radius > *e.MaxDistance {
			break
		}
		for k := 0; ; k++ {
			angle := ar.lo + float64(k)*cfg.angleStep
			if angle >= ar.hi {
				break
			}
			offset := geom.Round(geom.Rotate(geom.Scale(geom.North, radius), angle))
			if !IsSomeIntersection(geom.Translate(e.Bounds, offset), entities, i) {
				return offset, true
			}
		}
	}
	return orb.Point{}, false
}
