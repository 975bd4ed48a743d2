// Package pipeline computes and renders page layouts for folio.
//
// The pipeline has two stages that the CLI and the HTTP API share:
//
//  1. Layout: normalize page heights and place every page with the
//     configured strategy, producing a layout.Document
//  2. Render: draw the document as SVG, PNG or DOT (see package render)
//
// A [Runner] caches both stages. Layout keys hash the manifest's pages and
// the options that change placement; render keys hash the layout document
// and the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Layout = "two-page"
//	res, err := runner.Execute(ctx, m, opts)
//	svg := res.Artifacts["svg"]
//
// Either stage runs alone:
//
//	doc, hit, err := runner.ComputeLayout(ctx, m, opts)
//	artifacts, hit, err := runner.Render(ctx, doc, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/folio/pkg/cache"
	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMargin is the gap between pages in layout units.
	DefaultMargin = 20.0

	// DefaultFormat is rendered when no format is requested.
	DefaultFormat = render.FormatSVG
)

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It is the JSON body of layout requests
// to the HTTP API.
type Options struct {
	// Layout names the strategy ("one-page", "two-page"). Empty uses the
	// manifest's layout, then one-page.
	Layout string `json:"layout,omitempty"`

	// Margin is the gap between pages. Zero makes pages touch; see
	// DefaultOptions for the usual gap.
	Margin float64 `json:"margin"`

	// Unpaged forces the one-page strategy regardless of Layout, as for a
	// manifest with paged set to false.
	Unpaged bool `json:"unpaged,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Labels  bool     `json:"labels,omitempty"`

	// Refresh recomputes and overwrites cached results.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// DefaultOptions returns Options with the default page margin. Request
// bodies and flags are decoded over it so that fields left out keep their
// defaults while an explicit zero survives.
func DefaultOptions() Options {
	return Options{Margin: DefaultMargin}
}

// ValidateAndSetDefaults validates options and fills in defaults for fields
// whose zero value is unusable. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout checks the layout options.
func (o *Options) ValidateForLayout() error {
	o.setCommonDefaults()
	if o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "margin must not be negative, got %v", o.Margin)
	}
	if o.Layout != "" {
		if _, err := layout.ParseMode(o.Layout); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForRender checks the render options.
func (o *Options) ValidateForRender() error {
	o.setCommonDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must not be negative, got %v", o.Scale)
	}
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func (o *Options) setCommonDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// RenderOptions returns the options for package render.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Scale: o.Scale, Labels: o.Labels, Highlight: -1}
}

// RenderKeyOpts returns the cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{Format: format, Scale: o.Scale, Labels: o.Labels}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the placed pages.
	Layout layout.Document

	// LayoutHash is the content hash of Layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PageCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all artifacts came from cache
}
