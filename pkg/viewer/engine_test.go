package viewer

import (
	"testing"
	"time"

	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/mode"
	"github.com/matzehuels/folio/pkg/notify"
	"github.com/matzehuels/folio/pkg/task"
)

// fakeEngine records commands and lets tests raise events. FitBounds and
// PanTo move the viewport at once; ZoomTo only records the level.
type fakeEngine struct {
	bounds geom.Rect
	zoom   float64
	home   float64

	fits     []geom.Rect
	pans     []geom.Point
	panImm   []bool
	zooms    []float64
	zoomRefs []*geom.Point
	images   []geom.Rect
	settings []GestureSettings

	keyboardOff bool
	resets      int
	feeds       map[EventKind]*notify.Feed[*Event]
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		bounds: geom.Rect{X: -60, Y: -40, Width: 340, Height: 80},
		zoom:   0.29412,
		home:   0.29412,
		feeds:  map[EventKind]*notify.Feed[*Event]{},
	}
}

func (f *fakeEngine) Bounds() geom.Rect { return f.bounds }
func (f *fakeEngine) Zoom() float64     { return f.zoom }
func (f *fakeEngine) HomeZoom() float64 { return f.home }
func (f *fakeEngine) MinZoom() float64  { return f.home / 2 }
func (f *fakeEngine) MaxZoom() float64  { return 10 }
func (f *fakeEngine) DisableKeyboard()  { f.keyboardOff = true }
func (f *fakeEngine) FitBounds(r geom.Rect) {
	f.fits = append(f.fits, r)
	f.bounds = r
}

func (f *fakeEngine) PanTo(p geom.Point, immediately bool) {
	f.pans = append(f.pans, p)
	f.panImm = append(f.panImm, immediately)
	f.bounds.X = p.X - f.bounds.Width/2
	f.bounds.Y = p.Y - f.bounds.Height/2
}

func (f *fakeEngine) ZoomTo(level float64, ref *geom.Point) {
	f.zooms = append(f.zooms, level)
	f.zoomRefs = append(f.zoomRefs, ref)
	f.zoom = level
}

func (f *fakeEngine) AddTiledImage(_ int, _ manifest.Page, placement geom.Rect) {
	f.images = append(f.images, placement)
}

func (f *fakeEngine) Reset() {
	f.resets++
	f.images = nil
	f.keyboardOff = false
}

func (f *fakeEngine) AddHandler(kind EventKind, h Handler) func() {
	feed, ok := f.feeds[kind]
	if !ok {
		feed = &notify.Feed[*Event]{}
		f.feeds[kind] = feed
	}
	return feed.Subscribe(notify.Handler[*Event](h))
}

func (f *fakeEngine) SetGestureSettings(s GestureSettings) {
	f.settings = append(f.settings, s)
}

func (f *fakeEngine) raise(e Event) *Event {
	if feed, ok := f.feeds[e.Kind]; ok {
		feed.Emit(&e)
	}
	return &e
}

func (f *fakeEngine) handlerCount() int {
	n := 0
	for _, feed := range f.feeds {
		n += feed.Len()
	}
	return n
}

func (f *fakeEngine) lastFit() geom.Rect {
	if len(f.fits) == 0 {
		return geom.Rect{}
	}
	return f.fits[len(f.fits)-1]
}

// =============================================================================
// Fixtures
// =============================================================================

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// threePages lays out to x = -50, 60, 170 with a 10 unit margin.
func threePages() *manifest.Manifest {
	return &manifest.Manifest{
		Paged: true,
		Pages: []manifest.Page{
			{ID: "p0", Width: 100, Height: 50},
			{ID: "p1", Width: 100, Height: 50},
			{ID: "p2", Width: 100, Height: 50},
		},
	}
}

type harness struct {
	engine *fakeEngine
	sched  *task.ManualScheduler
	ctrl   *Controller
	pages  []int
	modes  []mode.Mode
}

func newHarness(t *testing.T, initial mode.Mode) *harness {
	t.Helper()
	h := &harness{engine: newFakeEngine(), sched: task.NewManualScheduler(epoch)}
	cfg := DefaultConfig()
	cfg.PageMargin = 10
	cfg.InitialMode = initial
	ctrl, err := NewController(h.engine, cfg, h.sched, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.ctrl = ctrl
	ctrl.OnPageChange(func(p int) { h.pages = append(h.pages, p) })
	ctrl.OnModeChange(func(m mode.Mode) { h.modes = append(h.modes, m) })
	if err := ctrl.Load(threePages()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return h
}

// rectOf returns the placed rect of page i in the threePages fixture.
func rectOf(i int) geom.Rect {
	return geom.Rect{X: -50 + float64(i)*110, Y: -25, Width: 100, Height: 50}
}
