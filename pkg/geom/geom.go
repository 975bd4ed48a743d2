// Package geom provides the small set of planar value types shared by the
// layout, navigation, and engine packages.
//
// All coordinates live in the viewer's virtual world plane: the same units the
// rendering engine uses for viewport bounds. Rects are plain values, so every
// accessor that returns one hands out a copy and callers cannot reach back into
// the owner's state.
package geom

import (
	"fmt"
	"math"
	"strconv"
)

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// String formats the point as "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
// Width and height are expected to be non-negative, but nothing here enforces it.
type Rect struct {
	X      float64 `json:"x" toml:"x"`
	Y      float64 `json:"y" toml:"y"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the horizontal center of the rect.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center of the rect.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Center returns the center point of the rect.
func (r Rect) Center() Point { return Point{X: r.CenterX(), Y: r.CenterY()} }

// Contains reports whether p lies inside r. Edges are inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.Right(), o.Right()) - x,
		Height: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// String formats the rect as "[x y w h]".
func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X, r.Y, r.Width, r.Height)
}

// Close reports whether a and b differ by less than eps.
func Close(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// RoundSignificant rounds v to the given number of significant digits.
// Zoom levels reported by engines carry float noise in the low digits; rounding
// them keeps comparisons and logs stable.
func RoundSignificant(v float64, digits int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', digits, 64), 64)
	if err != nil {
		return v
	}
	return out
}
