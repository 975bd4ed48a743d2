package layout

import (
	"math"

	"github.com/matzehuels/folio/pkg/geom"
)

// Registry holds the placed rects of one layout pass, index-aligned with the
// manifest's pages. Rects are only ever appended; indices never move.
//
// Rects are stored and returned by value, so callers always receive copies.
type Registry struct {
	rects []geom.Rect
}

// NewRegistry creates an empty registry with room for n rects.
func NewRegistry(n int) *Registry {
	return &Registry{rects: make([]geom.Rect, 0, n)}
}

// Add appends a placed rect.
func (r *Registry) Add(rect geom.Rect) {
	r.rects = append(r.rects, rect)
}

// Len returns the number of placed rects.
func (r *Registry) Len() int { return len(r.rects) }

// Get returns the rect at index. It panics if index is out of range, like a
// slice access would; callers check the cursor before asking.
func (r *Registry) Get(index int) geom.Rect {
	return r.rects[index]
}

// Lookup returns the rect at index and whether the index was in range.
func (r *Registry) Lookup(index int) (geom.Rect, bool) {
	if index < 0 || index >= len(r.rects) {
		return geom.Rect{}, false
	}
	return r.rects[index], true
}

// All returns a copy of every placed rect in index order.
func (r *Registry) All() []geom.Rect {
	out := make([]geom.Rect, len(r.rects))
	copy(out, r.rects)
	return out
}

// Bounds returns the rect covering every placed page.
func (r *Registry) Bounds() geom.Rect {
	if len(r.rects) == 0 {
		return geom.Rect{}
	}
	b := r.rects[0]
	for _, rect := range r.rects[1:] {
		b = b.Union(rect)
	}
	return b
}

// FindClosestIndex returns the index of the rect whose center x is nearest to
// p.X. It returns -1 when p is nil or nothing has been placed.
//
// The scan walks rects in index order and stops as soon as the distance stops
// shrinking. That is only a nearest-neighbour search because layouts place
// center x values in increasing order. Ties resolve to the lower index.
func (r *Registry) FindClosestIndex(p *geom.Point) int {
	if p == nil || len(r.rects) == 0 {
		return -1
	}
	best := 0
	lastDelta := math.Inf(1)
	for i, rect := range r.rects {
		delta := math.Abs(p.X - rect.CenterX())
		if delta >= lastDelta {
			break
		}
		best = i
		lastDelta = delta
	}
	return best
}

// IndexAtCenter resolves which page the viewport's horizontal center is over.
//
// The first page whose right edge lies past the center is the candidate. If
// the center is at or after the candidate's left edge, the candidate is hit.
// Otherwise the center sits in the gap before the candidate and the midpoint
// of that gap decides: strictly past the midpoint picks the candidate, anything
// else its predecessor.
//
// Engines clamp panning so the center never leaves the collection; when it
// does anyway, a center left of page 0 resolves to 0 and one past the last
// page resolves to -1.
func (r *Registry) IndexAtCenter(viewport geom.Rect) int {
	centerX := viewport.CenterX()
	for i, page := range r.rects {
		if page.Right() <= centerX {
			continue
		}
		if page.X <= centerX || i == 0 {
			return i
		}
		prev := r.rects[i-1]
		gapLeft := prev.Right()
		gapMid := gapLeft + (page.X-gapLeft)/2
		if centerX > gapMid {
			return i
		}
		return i - 1
	}
	return -1
}

// Hit returns the index of the first rect containing p, or -1.
func (r *Registry) Hit(p geom.Point) int {
	for i, rect := range r.rects {
		if rect.Contains(p) {
			return i
		}
	}
	return -1
}

// MaxWidth returns the widest placed rect's width, or 0 when empty.
func (r *Registry) MaxWidth() float64 {
	var m float64
	for i, rect := range r.rects {
		if i == 0 || rect.Width > m {
			m = rect.Width
		}
	}
	return m
}

// MaxHeight returns the tallest placed rect's height, or 0 when empty.
func (r *Registry) MaxHeight() float64 {
	var m float64
	for i, rect := range r.rects {
		if i == 0 || rect.Height > m {
			m = rect.Height
		}
	}
	return m
}
