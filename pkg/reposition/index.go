package reposition

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/declutter/pkg/geom"
)

// Intersections maps each queried index to the intersection rectangles it
// shares with the other entities. Indices without any intersection are left
// out. Self-exclusion is by index, so duplicate IDs never collapse results.
func Intersections(entities []Entity, query []int) map[int][]orb.Bound {
	result := make(map[int][]orb.Bound)
	for _, i := range query {
		var hits []orb.Bound
		for j := range entities {
			if j == i {
				continue
			}
			if r, ok := geom.Intersection(entities[i].Bounds, entities[j].Bounds); ok {
				hits = append(hits, r)
			}
		}
		if len(hits) > 0 {
			result[i] = hits
		}
	}
	return result
}

// IsSomeIntersection reports whether candidate touches any entity other
// than the one at index skip. Pass a negative skip to test against all.
func IsSomeIntersection(candidate orb.Bound, entities []Entity, skip int) bool {
	for j := range entities {
		if j != skip && geom.Intersects(candidate, entities[j].Bounds) {
			return true
		}
	}
	return false
}

// Pair is an unordered pair of overlapping entity indices with I < J.
type Pair struct {
	I, J int
	Area orb.Bound
}

// Overlaps lists every intersecting pair in the set in index order.
func Overlaps(entities []Entity) []Pair {
	var pairs []Pair
	for i := range entities {
		for j := i + 1; j < len(entities); j++ {
			if r, ok := geom.Intersection(entities[i].Bounds, entities[j].Bounds); ok {
				pairs = append(pairs, Pair{I: i, J: j, Area: r})
			}
		}
	}
	return pairs
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
