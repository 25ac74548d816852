package svg

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect is an axis-aligned box in user units.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether the box has zero (or negative) width or height.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ViewBox formats r as a viewBox attribute value, "<x> <y> <width> <height>",
// using the shortest decimal form of each number.
func (r Rect) ViewBox() string {
	return strings.Join([]string{
		formatNumber(r.X),
		formatNumber(r.Y),
		formatNumber(r.Width),
		formatNumber(r.Height),
	}, " ")
}

// Union returns the smallest box containing both r and o.
// An empty operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.Width, o.X+o.Width), max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%s)", r.ViewBox())
}

// ParseViewBox parses a viewBox attribute value. Numbers may be separated by
// whitespace and/or commas.
func ParseViewBox(s string) (Rect, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return Rect{}, fmt.Errorf("viewBox %q: want 4 numbers, got %d", s, len(fields))
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Rect{}, fmt.Errorf("viewBox %q: %w", s, err)
		}
		v[i] = n
	}
	return Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func formatNumber(f float64) string {
	if f == 0 {
		f = 0 // drop negative zero
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
