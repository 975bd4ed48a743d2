package viewer

import (
	"math"

	"github.com/matzehuels/folio/pkg/geom"
)

// PanDirection is the way a drag leans when it ends on a zoomed page.
type PanDirection int

const (
	PanUndefined PanDirection = iota
	PanLeft
	PanRight
)

// String returns the direction name.
func (d PanDirection) String() string {
	switch d {
	case PanLeft:
		return "left"
	case PanRight:
		return "right"
	default:
		return "undefined"
	}
}

// PanDirectionFor resolves which way a drag on page leans.
//
// A viewport whose left edge, less margin, lies before the page's left edge
// resolves to PanRight. Otherwise a viewport whose right edge, plus margin,
// lies past the page's right edge resolves to PanLeft. Anything else stays
// on the page.
func PanDirectionFor(viewport, page geom.Rect, margin float64) PanDirection {
	switch {
	case viewport.X-margin < page.X:
		return PanRight
	case viewport.Right()+margin > page.Right():
		return PanLeft
	default:
		return PanUndefined
	}
}

// FitsOrSmaller reports whether page fits the viewport in at least one
// dimension, comparing rounded sizes. A page that fits either way can be
// dismissed back to the dashboard.
func FitsOrSmaller(page, viewport geom.Rect) bool {
	return math.Round(page.Height) <= math.Round(viewport.Height) ||
		math.Round(page.Width) <= math.Round(viewport.Width)
}

// IsFitted reports whether page matches the viewport within tolerance in at
// least one dimension.
func IsFitted(page, viewport geom.Rect, tolerance float64) bool {
	return geom.Close(page.Width, viewport.Width, tolerance) ||
		geom.Close(page.Height, viewport.Height, tolerance)
}
