// Package geom adapts [github.com/paulmach/orb] for axis-aligned layout work.
//
// orb supplies the value types ([orb.Point], [orb.Bound]) and the inclusive
// intersection test. This package adds the small amount of vector arithmetic
// the repositioning solver needs on top of them: translation, scaling,
// rotation by degrees and integer rounding.
//
// Angles follow compass convention: 0° points along +y ("north") and angles
// grow clockwise, so 90° points along +x.
//
//	geom.Rotate(orb.Point{0, 10}, 90) // (10, 0)
//	geom.Rotate(orb.Point{0, 10}, 180) // (0, -10)
package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// North is the unit vector every radial search direction is derived from.
var North = orb.Point{0, 1}

// Add returns p + q.
func Add(p, q orb.Point) orb.Point {
	return orb.Point{p[0] + q[0], p[1] + q[1]}
}

// Sub returns p - q.
func Sub(p, q orb.Point) orb.Point {
	return orb.Point{p[0] - q[0], p[1] - q[1]}
}

// Scale multiplies both coordinates of p by f.
func Scale(p orb.Point, f float64) orb.Point {
	return orb.Point{p[0] * f, p[1] * f}
}

// Rotate turns p clockwise by deg degrees around the origin.
func Rotate(p orb.Point, deg float64) orb.Point {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return orb.Point{
		p[0]*cos + p[1]*sin,
		-p[0]*sin + p[1]*cos,
	}
}

// Round snaps p to the nearest integer coordinates. Halves round toward
// positive infinity, so -2.5 becomes -2.
func Round(p orb.Point) orb.Point {
	return orb.Point{roundHalfUp(p[0]), roundHalfUp(p[1])}
}

func roundHalfUp(v float64) float64 {
	r := math.Floor(v + 0.5)
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// Length returns the Euclidean norm of p.
func Length(p orb.Point) float64 {
	return math.Hypot(p[0], p[1])
}

// NewBounds builds a bound from corner coordinates, normalising the corner
// order so that Min is always component-wise below Max.
func NewBounds(x0, y0, x1, y1 float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Min(x0, x1), math.Min(y0, y1)},
		Max: orb.Point{math.Max(x0, x1), math.Max(y0, y1)},
	}
}

// Translate moves b by offset.
func Translate(b orb.Bound, offset orb.Point) orb.Bound {
	return orb.Bound{Min: Add(b.Min, offset), Max: Add(b.Max, offset)}
}

// Intersects reports whether a and b share at least one point. Rectangles
// that only touch along an edge or a corner intersect.
func Intersects(a, b orb.Bound) bool {
	return a.Intersects(b)
}

// Intersection returns the overlapping rectangle of a and b. The boolean is
// false when they do not intersect.
func Intersection(a, b orb.Bound) (orb.Bound, bool) {
	if !a.Intersects(b) {
		return orb.Bound{}, false
	}
	return orb.Bound{
		Min: orb.Point{math.Max(a.Min[0], b.Min[0]), math.Max(a.Min[1], b.Min[1])},
		Max: orb.Point{math.Min(a.Max[0], b.Max[0]), math.Min(a.Max[1], b.Max[1])},
	}, true
}

// Offset returns the translation that moves from's minimum corner onto to's.
func Offset(from, to orb.Bound) orb.Point {
	return Sub(to.Min, from.Min)
}

// Valid reports whether b has finite coordinates and Min <= Max on both axes.
func Valid(b orb.Bound) bool {
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1]
}
