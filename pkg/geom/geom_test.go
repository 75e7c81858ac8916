package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestRotateCompassDirections(t *testing.T) {
	tests := []struct {
		deg  float64
		want orb.Point
	}{
		{0, orb.Point{0, 10}},
		{90, orb.Point{10, 0}},
		{180, orb.Point{0, -10}},
		{270, orb.Point{-10, 0}},
		{-90, orb.Point{-10, 0}},
	}
	for _, tt := range tests {
		got := Rotate(orb.Point{0, 10}, tt.deg)
		assert.InDelta(t, tt.want[0], got[0], 1e-9, "x at %v°", tt.deg)
		assert.InDelta(t, tt.want[1], got[1], 1e-9, "y at %v°", tt.deg)
	}
}

func TestRoundHalvesTowardPositiveInfinity(t *testing.T) {
	assert.Equal(t, orb.Point{3, -2}, Round(orb.Point{2.5, -2.5}))
	assert.Equal(t, orb.Point{-3, 4}, Round(orb.Point{-2.83, 3.54}))

	// Tiny negative residue from trigonometry must not become -0.
	p := Round(orb.Point{-1e-16, 0})
	assert.False(t, math.Signbit(p[0]))
}

func TestArithmetic(t *testing.T) {
	p := orb.Point{1, 2}
	q := orb.Point{3, -4}
	assert.Equal(t, orb.Point{4, -2}, Add(p, q))
	assert.Equal(t, orb.Point{-2, 6}, Sub(p, q))
	assert.Equal(t, orb.Point{2.5, 5}, Scale(p, 2.5))
	assert.InDelta(t, 5.0, Length(q), 1e-12)
}

func TestNewBoundsNormalisesCorners(t *testing.T) {
	b := NewBounds(10, 0, 0, 10)
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.Equal(t, orb.Point{10, 10}, b.Max)
}

func TestIntersects(t *testing.T) {
	base := NewBounds(0, 0, 10, 10)

	tests := []struct {
		name  string
		other orb.Bound
		want  bool
	}{
		{"overlap", NewBounds(5, 5, 15, 15), true},
		{"edge touch", NewBounds(10, 0, 20, 10), true},
		{"corner touch", NewBounds(10, 10, 20, 20), true},
		{"contained", NewBounds(2, 2, 3, 3), true},
		{"apart x", NewBounds(11, 0, 20, 10), false},
		{"apart y", NewBounds(0, -5, 10, -1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intersects(base, tt.other))
			assert.Equal(t, tt.want, Intersects(tt.other, base))
		})
	}
}

func TestIntersection(t *testing.T) {
	got, ok := Intersection(NewBounds(0, 0, 10, 10), NewBounds(5, 5, 15, 15))
	assert.True(t, ok)
	assert.Equal(t, NewBounds(5, 5, 10, 10), got)

	_, ok = Intersection(NewBounds(0, 0, 1, 1), NewBounds(5, 5, 6, 6))
	assert.False(t, ok)
}

func TestTranslateAndOffset(t *testing.T) {
	b := NewBounds(0, 0, 10, 10)
	moved := Translate(b, orb.Point{-4, 6})
	assert.Equal(t, NewBounds(-4, 6, 6, 16), moved)
	assert.Equal(t, orb.Point{-4, 6}, Offset(b, moved))
	assert.Equal(t, b, Translate(moved, orb.Point{4, -6}))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(NewBounds(0, 0, 0, 0)))
	assert.True(t, Valid(NewBounds(-1, -1, 1, 1)))
	assert.False(t, Valid(orb.Bound{Min: orb.Point{1, 0}, Max: orb.Point{0, 1}}))
	assert.False(t, Valid(orb.Bound{Min: orb.Point{math.NaN(), 0}, Max: orb.Point{1, 1}}))
	assert.False(t, Valid(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{math.Inf(1), 1}}))
}
