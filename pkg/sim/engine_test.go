package sim

import (
	"testing"
	"time"

	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/task"
	"github.com/matzehuels/folio/pkg/viewer"
)

const eps = 1e-9

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newEngine places three 100x50 pages at x = -50, 60, 170 in an 800x600
// container.
func newEngine(t *testing.T) (*Engine, *task.ManualScheduler) {
	t.Helper()
	sched := task.NewManualScheduler(epoch)
	e := New(sched, Options{})
	for i := 0; i < 3; i++ {
		r := geom.Rect{X: -50 + float64(i)*110, Y: -25, Width: 100, Height: 50}
		e.AddTiledImage(i, manifest.Page{Width: 100, Height: 50}, r)
	}
	return e, sched
}

func rectClose(a, b geom.Rect) bool {
	return geom.Close(a.X, b.X, eps) && geom.Close(a.Y, b.Y, eps) &&
		geom.Close(a.Width, b.Width, eps) && geom.Close(a.Height, b.Height, eps)
}

func TestNewDefaults(t *testing.T) {
	e := New(task.NewManualScheduler(epoch), Options{})
	w, h := e.Container()
	if w != DefaultContainerWidth || h != DefaultContainerHeight {
		t.Errorf("Container() = %v, %v, want defaults", w, h)
	}
	want := geom.Rect{X: -400, Y: -300, Width: 800, Height: 600}
	if got := e.Bounds(); !rectClose(got, want) {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if !e.KeyboardEnabled() {
		t.Error("keyboard should start enabled")
	}
}

func TestAddTiledImageGoesHome(t *testing.T) {
	e, _ := newEngine(t)

	world := geom.Rect{X: -50, Y: -25, Width: 320, Height: 50}
	if got := e.World(); !rectClose(got, world) {
		t.Errorf("World() = %v, want %v", got, world)
	}
	want := geom.Rect{X: -50, Y: -120, Width: 320, Height: 240}
	if got := e.Bounds(); !rectClose(got, want) {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if got := len(e.Images()); got != 3 {
		t.Errorf("len(Images()) = %d, want 3", got)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"Zoom", e.Zoom(), 0.3125},
		{"HomeZoom", e.HomeZoom(), 0.3125},
		{"MinZoom", e.MinZoom(), 0.3125 * DefaultMinZoomRatio},
		{"MaxZoom", e.MaxZoom(), 0.3125 * DefaultMaxZoomRatio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !geom.Close(tt.got, tt.want, eps) {
				t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestFitBounds(t *testing.T) {
	tests := []struct {
		name string
		rect geom.Rect
		want geom.Rect
	}{
		{
			name: "wide page fills width",
			rect: geom.Rect{X: -50, Y: -25, Width: 100, Height: 50},
			want: geom.Rect{X: -50, Y: -37.5, Width: 100, Height: 75},
		},
		{
			name: "tall page fills height",
			rect: geom.Rect{X: 0, Y: -20, Width: 30, Height: 40},
			want: geom.Rect{X: 15 - 80.0/3, Y: -20, Width: 160.0 / 3, Height: 40},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t)
			e.FitBounds(tt.rect)
			if got := e.Bounds(); !rectClose(got, tt.want) {
				t.Errorf("Bounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZoomToClamps(t *testing.T) {
	e, _ := newEngine(t)

	e.ZoomTo(1000, nil)
	if got, want := e.Zoom(), e.MaxZoom(); !geom.Close(got, want, eps) {
		t.Errorf("Zoom() = %v, want max %v", got, want)
	}
	e.ZoomTo(0.0001, nil)
	if got, want := e.Zoom(), e.MinZoom(); !geom.Close(got, want, eps) {
		t.Errorf("Zoom() = %v, want min %v", got, want)
	}
}

func TestZoomToKeepsReference(t *testing.T) {
	e, _ := newEngine(t)
	ref := geom.Point{X: 20, Y: 10}

	screen := func() geom.Point {
		b := e.Bounds()
		scale := b.Width / DefaultContainerWidth
		return geom.Point{X: (ref.X - b.X) / scale, Y: (ref.Y - b.Y) / scale}
	}
	before := screen()
	e.ZoomTo(1.5, &ref)
	after := screen()

	if !geom.Close(before.X, after.X, 1e-6) || !geom.Close(before.Y, after.Y, 1e-6) {
		t.Errorf("reference moved on screen: %v -> %v", before, after)
	}
	if got := e.ScreenToWorld(after.X, after.Y); !geom.Close(got.X, ref.X, 1e-6) {
		t.Errorf("ScreenToWorld() = %v, want %v", got, ref)
	}
}

func TestPanToConstrains(t *testing.T) {
	e, _ := newEngine(t)
	e.PanTo(geom.Point{X: 1000, Y: -1000}, true)
	want := geom.Point{X: 270, Y: -25}
	if got := e.Bounds().Center(); !geom.Close(got.X, want.X, eps) || !geom.Close(got.Y, want.Y, eps) {
		t.Errorf("center = %v, want %v", got, want)
	}
}

func TestAnimationEvents(t *testing.T) {
	e, sched := newEngine(t)
	var starts, finishes int
	e.AddHandler(viewer.EventAnimationStart, func(*viewer.Event) { starts++ })
	e.AddHandler(viewer.EventAnimationFinish, func(*viewer.Event) { finishes++ })

	e.FitBounds(geom.Rect{X: -50, Y: -25, Width: 100, Height: 50})
	sched.Advance(100 * time.Millisecond)
	e.PanTo(geom.Point{X: 110}, false)

	if !e.Animating() {
		t.Fatal("engine should be animating")
	}
	sched.Advance(viewer.DefaultAnimationTime - time.Millisecond)
	if finishes != 0 {
		t.Errorf("finished early: %d", finishes)
	}
	sched.Advance(time.Millisecond)
	if starts != 1 || finishes != 1 {
		t.Errorf("starts, finishes = %d, %d, want 1, 1", starts, finishes)
	}
	if e.Animating() {
		t.Error("engine still animating")
	}
}

func TestImmediatePanFinishesAtOnce(t *testing.T) {
	e, sched := newEngine(t)
	finished := false
	e.AddHandler(viewer.EventAnimationFinish, func(*viewer.Event) { finished = true })

	e.PanTo(geom.Point{X: 60}, true)
	sched.Advance(0)
	if !finished {
		t.Error("immediate pan did not finish")
	}
}

func TestAddHandlerUnsubscribe(t *testing.T) {
	e, _ := newEngine(t)
	n := 0
	off := e.AddHandler(viewer.EventHome, func(*viewer.Event) { n++ })
	e.GoHome()
	off()
	e.GoHome()
	if n != 1 {
		t.Errorf("handler ran %d times, want 1", n)
	}
}

func TestDrag(t *testing.T) {
	tests := []struct {
		name     string
		vertical bool
		want     geom.Point
	}{
		{"horizontal only", false, geom.Point{X: 110 - 40, Y: 0}},
		{"vertical allowed", true, geom.Point{X: 110 - 40, Y: -20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t)
			e.SetGestureSettings(viewer.GestureSettings{PanVertical: tt.vertical})
			var kinds []viewer.EventKind
			for _, k := range []viewer.EventKind{viewer.EventCanvasPress, viewer.EventCanvasRelease, viewer.EventCanvasDragEnd} {
				e.AddHandler(k, func(ev *viewer.Event) { kinds = append(kinds, ev.Kind) })
			}

			// 100 px at a scale of 0.4 world units per pixel.
			e.Drag(100, 50)

			got := e.Bounds().Center()
			if !geom.Close(got.X, tt.want.X, eps) || !geom.Close(got.Y, tt.want.Y, eps) {
				t.Errorf("center = %v, want %v", got, tt.want)
			}
			if len(kinds) != 3 || kinds[2] != viewer.EventCanvasDragEnd {
				t.Errorf("events = %v, want press, release, drag end", kinds)
			}
		})
	}
}

func TestScrollDefaultZoom(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		prevent bool
		delta   float64
		factor  float64
	}{
		{"disabled", false, false, 1, 1},
		{"zoom in", true, false, 1, DefaultScrollZoomStep},
		{"zoom out", true, false, -1, 1 / DefaultScrollZoomStep},
		{"prevented", true, true, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t)
			e.SetGestureSettings(viewer.GestureSettings{ScrollToZoom: tt.enabled})
			e.AddHandler(viewer.EventCanvasScroll, func(ev *viewer.Event) { ev.PreventDefault = tt.prevent })
			e.ZoomTo(1, nil)
			e.Scroll(tt.delta, geom.Point{X: 110})
			if got := e.Zoom(); !geom.Close(got, tt.factor, eps) {
				t.Errorf("Zoom() = %v, want %v", got, tt.factor)
			}
		})
	}
}

func TestPinchDefaultZoom(t *testing.T) {
	e, _ := newEngine(t)
	e.SetGestureSettings(viewer.GestureSettings{PinchToZoom: true})
	e.ZoomTo(1, nil)

	var got viewer.Event
	e.AddHandler(viewer.EventCanvasPinch, func(ev *viewer.Event) { got = *ev })
	e.Pinch(30, 20, geom.Point{X: 110})

	if got.Distance != 30 || got.LastDistance != 20 {
		t.Errorf("event distances = %v, %v, want 30, 20", got.Distance, got.LastDistance)
	}
	if z := e.Zoom(); !geom.Close(z, 1.5, eps) {
		t.Errorf("Zoom() = %v, want 1.5", z)
	}
}

func TestDoubleClick(t *testing.T) {
	t.Run("default zoom", func(t *testing.T) {
		e, _ := newEngine(t)
		clicks := 0
		e.AddHandler(viewer.EventCanvasClick, func(*viewer.Event) { clicks++ })
		e.DoubleClick(geom.Point{X: 110})
		if clicks != 2 {
			t.Errorf("clicks = %d, want 2", clicks)
		}
		if got := e.Zoom(); !geom.Close(got, 0.3125*DefaultClickZoom, eps) {
			t.Errorf("Zoom() = %v, want %v", got, 0.3125*DefaultClickZoom)
		}
	})
	t.Run("prevented", func(t *testing.T) {
		e, _ := newEngine(t)
		e.AddHandler(viewer.EventCanvasDoubleClick, func(ev *viewer.Event) { ev.PreventDefault = true })
		e.DoubleClick(geom.Point{X: 110})
		if got := e.Zoom(); !geom.Close(got, 0.3125, eps) {
			t.Errorf("Zoom() = %v, want unchanged", got)
		}
	})
}

func TestResize(t *testing.T) {
	e, _ := newEngine(t)
	resized := false
	e.AddHandler(viewer.EventResize, func(*viewer.Event) { resized = true })
	e.Resize(800, 100)

	if !resized {
		t.Error("resize event not raised")
	}
	if w, h := e.Container(); w != 800 || h != 100 {
		t.Errorf("Container() = %v, %v, want 800, 100", w, h)
	}
	// The letterbox container frames the world by height now.
	if got, want := e.HomeZoom(), 0.25; !geom.Close(got, want, eps) {
		t.Errorf("HomeZoom() = %v, want %v", got, want)
	}
}

func TestReset(t *testing.T) {
	e, _ := newEngine(t)
	e.DisableKeyboard()
	e.PanTo(geom.Point{X: 60}, false)
	e.Reset()

	if len(e.Images()) != 0 || e.Animating() || !e.KeyboardEnabled() {
		t.Errorf("Reset() left state: images=%d animating=%v keyboard=%v",
			len(e.Images()), e.Animating(), e.KeyboardEnabled())
	}
	if got := e.Zoom(); !geom.Close(got, 1/DefaultContainerWidth, eps) {
		t.Errorf("Zoom() = %v after reset", got)
	}
}
