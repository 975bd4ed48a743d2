package pipeline

import (
	"github.com/matzehuels/folio/pkg/cache"
	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/manifest"
)

// resolvedLayout is what a layout pass runs with once options and manifest
// have been reconciled.
type resolvedLayout struct {
	mode   layout.Mode
	paged  bool
	margin float64
}

// resolve picks the layout mode: explicit options first, then the manifest,
// then one-page.
func resolve(m *manifest.Manifest, opts Options) (resolvedLayout, error) {
	r := resolvedLayout{mode: layout.OnePage, paged: m.Paged && !opts.Unpaged, margin: opts.Margin}
	name := opts.Layout
	if name == "" {
		name = m.Layout
	}
	if name != "" {
		mode, err := layout.ParseMode(name)
		if err != nil {
			return r, err
		}
		r.mode = mode
	}
	return r, nil
}

func (r resolvedLayout) keyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Mode: r.mode.String(), Paged: r.paged, Margin: r.margin}
}

// GenerateLayout places the manifest's pages. Page heights are normalized
// to the first page; the manifest is not modified.
func GenerateLayout(m *manifest.Manifest, opts Options) (layout.Document, error) {
	if err := m.Validate(); err != nil {
		return layout.Document{}, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Document{}, err
	}
	r, err := resolve(m, opts)
	if err != nil {
		return layout.Document{}, err
	}
	strategy, err := layout.NewStrategy(r.mode, r.paged, r.margin)
	if err != nil {
		return layout.Document{}, err
	}

	pages := m.Clone().Pages
	layout.NormalizeHeights(pages)
	reg := layout.Build(pages, strategy)
	return layout.NewDocument(reg, pages, strategy, r.paged, r.margin), nil
}
