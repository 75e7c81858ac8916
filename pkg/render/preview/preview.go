// Package preview draws a solved arrangement next to its input.
//
// Each entity is drawn twice: a dashed outline at its original position and
// a filled box at its resolved position, joined by a line when it moved.
// World coordinates have y pointing up; the SVG is flipped so that north is
// at the top of the picture.
package preview

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/paulmach/orb"
	"github.com/samber/lo"

	"github.com/matzehuels/declutter/pkg/reposition"
)

// Defaults for the output frame.
const (
	DefaultWidth   = 800
	DefaultPadding = 20
	maxLabelLen    = 24
)

// Fill colors by entity status.
const (
	colorSettled = "#9ecae1"
	colorMoved   = "#fdae6b"
	colorPinned  = "#636363"
	colorOverlap = "#e34a33"
)

// Option configures preview rendering.
type Option func(*renderer)

type renderer struct {
	width       int
	height      int
	padding     int
	showLabels  bool
	showOrigins bool
}

// WithSize sets the frame size in pixels. A zero height is derived from the
// aspect ratio of the content.
func WithSize(width, height int) Option {
	return func(r *renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithPadding sets the margin around the content.
func WithPadding(px int) Option { return func(r *renderer) { r.padding = max(px, 0) } }

// WithLabels draws each entity's label (or id) inside its box.
func WithLabels() Option { return func(r *renderer) { r.showLabels = true } }

// WithOrigins draws the original positions and displacement lines.
func WithOrigins() Option { return func(r *renderer) { r.showOrigins = true } }

// RenderSVG draws after on top of before. Both slices must describe the same
// entities in the same order; before may be nil to draw a single state.
func RenderSVG(before, after []reposition.Entity, opts ...Option) []byte {
	r := renderer{width: DefaultWidth, padding: DefaultPadding}
	for _, opt := range opts {
		opt(&r)
	}
	if len(before) != len(after) {
		before = nil
	}

	world := extent(before, after)
	fr := newFrame(world, r.width, r.height, r.padding)
	overlapping := overlapIndices(after)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(fr.width, fr.height)
	canvas.Title("declutter preview")
	canvas.Rect(0, 0, fr.width, fr.height, "fill:white")

	if r.showOrigins && before != nil {
		canvas.Gid("origins")
		for i, e := range before {
			x, y, w, h := fr.rect(e.Bounds)
			canvas.Rect(x, y, w, h, "fill:none;stroke:#969696;stroke-width:1;stroke-dasharray:4,3")
			if e.Bounds != after[i].Bounds {
				x0, y0 := fr.point(e.Bounds.Center())
				x1, y1 := fr.point(after[i].Bounds.Center())
				canvas.Line(x0, y0, x1, y1, "stroke:#737373;stroke-width:1")
			}
		}
		canvas.Gend()
	}

	canvas.Gid("entities")
	for i, e := range after {
		x, y, w, h := fr.rect(e.Bounds)
		fill := colorSettled
		switch {
		case overlapping[i]:
			fill = colorOverlap
		case !e.Movable():
			fill = colorPinned
		case before != nil && e.Bounds != before[i].Bounds:
			fill = colorMoved
		}
		canvas.Rect(x, y, w, h, fmt.Sprintf("fill:%s;fill-opacity:0.8;stroke:#252525;stroke-width:1", fill))
		if r.showLabels {
			text := e.Label
			if text == "" {
				text = e.ID
			}
			cx, cy := fr.point(e.Bounds.Center())
			canvas.Text(cx, cy, lo.Ellipsis(text, maxLabelLen),
				"text-anchor:middle;dominant-baseline:middle;font-family:sans-serif;font-size:10px;fill:#000")
		}
	}
	canvas.Gend()

	canvas.End()
	return buf.Bytes()
}

func overlapIndices(entities []reposition.Entity) map[int]bool {
	out := make(map[int]bool)
	for _, p := range reposition.Overlaps(entities) {
		out[p.I] = true
		out[p.J] = true
	}
	return out
}

func extent(sets ...[]reposition.Entity) orb.Bound {
	var b orb.Bound
	first := true
	for _, set := range sets {
		for _, e := range set {
			if first {
				b = e.Bounds
				first = false
				continue
			}
			b = b.Union(e.Bounds)
		}
	}
	return b
}

// frame maps world coordinates onto the SVG canvas.
type frame struct {
	world         orb.Bound
	scale         float64
	width, height int
	padding       int
}

func newFrame(world orb.Bound, width, height, padding int) frame {
	ww := math.Max(world.Max[0]-world.Min[0], 1)
	wh := math.Max(world.Max[1]-world.Min[1], 1)

	inner := float64(max(width-2*padding, 1))
	scale := inner / ww
	if height > 0 {
		scale = math.Min(scale, float64(max(height-2*padding, 1))/wh)
	} else {
		height = int(math.Ceil(wh*scale)) + 2*padding
	}
	return frame{world: world, scale: scale, width: width, height: height, padding: padding}
}

func (f frame) point(p orb.Point) (int, int) {
	x := (p[0]-f.world.Min[0])*f.scale + float64(f.padding)
	y := (f.world.Max[1]-p[1])*f.scale + float64(f.padding)
	return int(math.Round(x)), int(math.Round(y))
}

func (f frame) rect(b orb.Bound) (x, y, w, h int) {
	x, y = f.point(orb.Point{b.Min[0], b.Max[1]})
	x1, y1 := f.point(orb.Point{b.Max[0], b.Min[1]})
	return x, y, max(x1-x, 1), max(y1-y, 1)
}
