package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/folio/pkg/cache"
	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/observability"
	"github.com/matzehuels/folio/pkg/render"
)

// Runner executes pipeline stages with caching. It holds no per-run state
// and may be shared by goroutines when its cache may.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means the default keyer and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs layout then render.
func (r *Runner) Execute(ctx context.Context, m *manifest.Manifest, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{}

	start := time.Now()
	doc, hit, err := r.ComputeLayout(ctx, m, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = doc
	res.Stats.PageCount = len(doc.Pages)
	res.Stats.LayoutTime = time.Since(start)
	res.CacheInfo.LayoutHit = hit
	if data, err := layout.Marshal(doc); err == nil {
		res.LayoutHash = cache.Hash(data)
	}
	r.Logger.Info("computed layout", "pages", len(doc.Pages), "mode", doc.Mode, "cached", hit, "duration", res.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.Render(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.RenderHit = hit
	r.Logger.Info("rendered layout", "formats", opts.Formats, "cached", hit, "duration", res.Stats.RenderTime)

	return res, nil
}

// ComputeLayout places the manifest's pages and reports whether the result
// came from the cache.
func (r *Runner) ComputeLayout(ctx context.Context, m *manifest.Manifest, opts Options) (layout.Document, bool, error) {
	if err := m.Validate(); err != nil {
		return layout.Document{}, false, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Document{}, false, err
	}
	resolved, err := resolve(m, opts)
	if err != nil {
		return layout.Document{}, false, err
	}

	pagesHash, err := cache.HashJSON(m.Pages)
	if err != nil {
		return layout.Document{}, false, fmt.Errorf("hash manifest: %w", err)
	}
	key := r.Keyer.LayoutKey(pagesHash, resolved.keyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if doc, err := layout.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				r.Logger.Debug("layout cache hit", "key", key)
				return doc, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("layout cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, resolved.mode.String(), m.Len())
	start := time.Now()
	doc, err := GenerateLayout(m, opts)
	hooks.OnLayoutComplete(ctx, resolved.mode.String(), time.Since(start), err)
	if err != nil {
		return layout.Document{}, false, err
	}

	r.store(ctx, "layout", key, cache.LayoutTTL, func() ([]byte, error) { return layout.Marshal(doc) })
	return doc, false, nil
}

// Render draws doc in every requested format and reports whether all of
// them came from the cache.
func (r *Runner) Render(ctx context.Context, doc layout.Document, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	data, err := layout.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "render")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	hooks := observability.Layout()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderLayout(ctx, doc, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, out := range rendered {
		key := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		r.store(ctx, "render", key, cache.RenderTTL, func() ([]byte, error) { return out, nil })
	}
	return rendered, false, nil
}

// RenderLayout draws doc in every requested format without caching.
func RenderLayout(ctx context.Context, doc layout.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := render.Render(ctx, doc, format, opts.RenderOptions())
		if err != nil {
			return nil, err
		}
		out[format] = data
	}
	return out, nil
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a cache entry. Cache failures are logged, never returned.
func (r *Runner) store(ctx context.Context, keyType, key string, ttl time.Duration, encode func() ([]byte, error)) {
	data, err := encode()
	if err != nil {
		r.Logger.Warn("encode cache entry", "type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
