package native

import (
	"image"

	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/spritetag/pkg/svg"
)

// unitsPerUserUnit converts 26.6 fixed-point coordinates drawn under the
// identity transform back to user units.
const unitsPerUserUnit = 64

// extentScanner is a rasterx.Scanner that records the extent of every
// drawn path instead of painting pixels.
type extentScanner struct {
	path, total  bounds
	pending      fixed.Point26_6
	pendingPoint bool
}

type bounds struct {
	min, max fixed.Point26_6
	ok       bool
}

func (b *bounds) add(p fixed.Point26_6) {
	if !b.ok {
		b.min, b.max, b.ok = p, p, true
		return
	}
	b.min.X, b.min.Y = min(b.min.X, p.X), min(b.min.Y, p.Y)
	b.max.X, b.max.Y = max(b.max.X, p.X), max(b.max.Y, p.Y)
}

func (b *bounds) union(o bounds) {
	if o.ok {
		b.add(o.min)
		b.add(o.max)
	}
}

// Start begins a subpath. A lone moveto paints nothing, so the point is only
// recorded once a segment follows it.
func (s *extentScanner) Start(a fixed.Point26_6) {
	s.pending, s.pendingPoint = a, true
}

func (s *extentScanner) Line(b fixed.Point26_6) {
	if s.pendingPoint {
		s.path.add(s.pending)
		s.pendingPoint = false
	}
	s.path.add(b)
}

func (s *extentScanner) Draw() {
	s.total.union(s.path)
}

func (s *extentScanner) GetPathExtent() fixed.Rectangle26_6 {
	return fixed.Rectangle26_6{Min: s.path.min, Max: s.path.max}
}

func (s *extentScanner) Clear() {
	s.path = bounds{}
	s.pendingPoint = false
}

func (s *extentScanner) SetBounds(int, int)      {}
func (s *extentScanner) SetColor(interface{})    {}
func (s *extentScanner) SetWinding(bool)         {}
func (s *extentScanner) SetClip(image.Rectangle) {}

// rect converts the recorded extent back to user units.
func (s *extentScanner) rect() svg.Rect {
	if !s.total.ok {
		return svg.Rect{}
	}
	x0 := float64(s.total.min.X) / unitsPerUserUnit
	y0 := float64(s.total.min.Y) / unitsPerUserUnit
	x1 := float64(s.total.max.X) / unitsPerUserUnit
	y1 := float64(s.total.max.Y) / unitsPerUserUnit
	return svg.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
