package layout

import (
	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
)

// NormalizeHeights rescales pages in place so they all share the first page's
// height. Widths scale by the same ratio, preserving each aspect ratio.
// Pages with a zero height are left alone.
func NormalizeHeights(pages []manifest.Page) {
	if len(pages) == 0 {
		return
	}
	height := pages[0].Height
	for i := range pages {
		p := &pages[i]
		if p.Height == height || p.Height == 0 {
			continue
		}
		ratio := height / p.Height
		p.Height = height
		p.Width = ratio * p.Width
	}
}

// Build places pages one after another with s and returns the filled registry.
// Placement is strictly sequential by index; each rect depends on the one
// before it.
func Build(pages []manifest.Page, s Strategy) *Registry {
	reg := NewRegistry(len(pages))
	var prev *geom.Rect
	for i, p := range pages {
		rect := s.Calculate(Criteria{Index: i, Page: p, Previous: prev})
		reg.Add(rect)
		prev = &rect
	}
	return reg
}
