package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/folio/pkg/cache"
	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/observability"
)

func book() *manifest.Manifest {
	return &manifest.Manifest{
		ID:    "book",
		Paged: true,
		Pages: []manifest.Page{
			{ID: "cover", Width: 100, Height: 150},
			{ID: "p1", Width: 200, Height: 300},
			{ID: "p2", Width: 100, Height: 150},
		},
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{name: "defaults", opts: Options{}},
		{name: "two-page", opts: Options{Layout: "two-page", Formats: []string{"png", "dot"}}},
		{name: "bad layout", opts: Options{Layout: "three-page"}, wantCode: errors.ErrCodeInvalidLayout},
		{name: "negative margin", opts: Options{Margin: -1}, wantCode: errors.ErrCodeInvalidLayout},
		{name: "bad format", opts: Options{Formats: []string{"pdf"}}, wantCode: errors.ErrCodeInvalidFormat},
		{name: "negative scale", opts: Options{Scale: -2}, wantCode: errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateAndSetDefaults() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Margin != DefaultMargin {
		t.Errorf("Margin = %v, want %v", opts.Margin, DefaultMargin)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats = %v, want [%s]", opts.Formats, DefaultFormat)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// Idempotent: a validated value is left alone.
	opts.Margin = -5
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second ValidateAndSetDefaults() error = %v", err)
	}
}

func TestGenerateLayoutZeroMargin(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		want   []float64
	}{
		{name: "one-page", layout: "one-page", want: []float64{-50, 50, 150}},
		{name: "two-page", layout: "two-page", want: []float64{0, 100, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Layout = tt.layout
			opts.Margin = 0
			doc, err := GenerateLayout(book(), opts)
			if err != nil {
				t.Fatalf("GenerateLayout: %v", err)
			}
			if doc.Margin != 0 {
				t.Errorf("Margin = %v, want 0", doc.Margin)
			}
			for i, p := range doc.Pages {
				if p.Rect.X != tt.want[i] {
					t.Errorf("page %d x = %v, want %v", i, p.Rect.X, tt.want[i])
				}
			}
		})
	}
}

func TestGenerateLayout(t *testing.T) {
	m := book()
	doc, err := GenerateLayout(m, Options{Margin: 10})
	if err != nil {
		t.Fatalf("GenerateLayout: %v", err)
	}

	// Page 1 is scaled down to the cover's height.
	want := []float64{-50, 60, 170}
	for i, p := range doc.Pages {
		if p.Rect.X != want[i] || p.Rect.Height != 150 {
			t.Errorf("page %d rect = %v, want x=%v height=150", i, p.Rect, want[i])
		}
	}
	if m.Pages[1].Height != 300 {
		t.Error("GenerateLayout modified the manifest")
	}
	if doc.Mode != layout.OnePage || !doc.Paged || doc.Margin != 10 {
		t.Errorf("doc = %v/%v/%v", doc.Mode, doc.Paged, doc.Margin)
	}
}

func TestGenerateLayoutResolution(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		opts     Options
		unpaged  bool
		want     layout.Mode
	}{
		{name: "default", want: layout.OnePage},
		{name: "manifest", manifest: "two-page", want: layout.TwoPage},
		{name: "options win", manifest: "two-page", opts: Options{Layout: "one-page"}, want: layout.OnePage},
		{name: "unpaged manifest", manifest: "two-page", unpaged: true, want: layout.OnePage},
		{name: "unpaged option", opts: Options{Layout: "two-page", Unpaged: true}, want: layout.OnePage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := book()
			m.Layout = tt.manifest
			m.Paged = !tt.unpaged
			doc, err := GenerateLayout(m, tt.opts)
			if err != nil {
				t.Fatalf("GenerateLayout: %v", err)
			}
			if doc.Mode != tt.want {
				t.Errorf("Mode = %v, want %v", doc.Mode, tt.want)
			}
		})
	}
}

func TestGenerateLayoutErrors(t *testing.T) {
	empty := &manifest.Manifest{}
	if _, err := GenerateLayout(empty, Options{}); !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("empty manifest error = %v, want INVALID_MANIFEST", err)
	}
	m := book()
	m.Layout = "scroll"
	if _, err := GenerateLayout(m, Options{}); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("bad manifest layout error = %v, want INVALID_LAYOUT", err)
	}
}

// =============================================================================
// Runner
// =============================================================================

type countingHooks struct {
	observability.NoopLayoutHooks
	layouts, renders int
}

func (h *countingHooks) OnLayoutStart(context.Context, string, int) { h.layouts++ }
func (h *countingHooks) OnRenderStart(context.Context, []string)    { h.renders++ }

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRunnerComputeLayoutCaches(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := newRunner(t)

	first, hit, err := r.ComputeLayout(ctx, book(), Options{})
	if err != nil || hit {
		t.Fatalf("first ComputeLayout() hit=%v err=%v", hit, err)
	}
	second, hit, err := r.ComputeLayout(ctx, book(), Options{})
	if err != nil || !hit {
		t.Fatalf("second ComputeLayout() hit=%v err=%v", hit, err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached layout differs (-computed +cached):\n%s", diff)
	}
	if hooks.layouts != 1 {
		t.Errorf("layout passes = %d, want 1", hooks.layouts)
	}

	// Different options miss.
	if _, hit, _ := r.ComputeLayout(ctx, book(), Options{Margin: 5}); hit {
		t.Error("different margin hit the cache")
	}
	// Refresh recomputes.
	if _, hit, _ := r.ComputeLayout(ctx, book(), Options{Refresh: true}); hit {
		t.Error("refresh hit the cache")
	}
	if hooks.layouts != 3 {
		t.Errorf("layout passes = %d, want 3", hooks.layouts)
	}
}

func TestRunnerRenderCaches(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := newRunner(t)
	doc, err := GenerateLayout(book(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Formats: []string{"dot"}, Labels: true}

	out, hit, err := r.Render(ctx, doc, opts)
	if err != nil || hit {
		t.Fatalf("first Render() hit=%v err=%v", hit, err)
	}
	if !strings.Contains(string(out["dot"]), `label="cover"`) {
		t.Errorf("dot output missing label:\n%s", out["dot"])
	}
	again, hit, err := r.Render(ctx, doc, opts)
	if err != nil || !hit {
		t.Fatalf("second Render() hit=%v err=%v", hit, err)
	}
	if string(again["dot"]) != string(out["dot"]) {
		t.Error("cached rendering differs")
	}
	if hooks.renders != 1 {
		t.Errorf("renders = %d, want 1", hooks.renders)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), book(), Options{Layout: "two-page", Formats: []string{"dot"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", res.Stats.PageCount)
	}
	if res.Layout.Mode != layout.TwoPage {
		t.Errorf("Mode = %v, want two-page", res.Layout.Mode)
	}
	if len(res.LayoutHash) != 64 {
		t.Errorf("LayoutHash = %q", res.LayoutHash)
	}
	if _, ok := res.Artifacts["dot"]; !ok {
		t.Error("missing dot artifact")
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("null cache reported a hit")
	}
}

func TestRunnerExecuteInvalid(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), book(), Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute() error = %v, want INVALID_FORMAT", err)
	}
}
