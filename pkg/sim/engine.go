// Package sim provides a simulated deep-zoom engine.
//
// [Engine] implements viewer.Engine with plain viewport arithmetic and no
// pixels: a viewport is a center point plus a width in world units, its
// height following from the container's aspect ratio. Zoom levels are
// measured against the width of the first placed image, so a zoom of 1 shows
// exactly one first-page width.
//
// Commands animate for a fixed duration on a task.Scheduler. Start and
// finish events are raised like a real engine raises them, which lets a
// viewer.Controller run unchanged against the simulation. The input methods
// ([Engine.Click], [Engine.Drag], [Engine.Scroll], ...) play the part of the
// user and apply the engine's default actions when handlers do not prevent
// them.
package sim

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/notify"
	"github.com/matzehuels/folio/pkg/task"
	"github.com/matzehuels/folio/pkg/viewer"
)

// Default engine options.
const (
	DefaultContainerWidth  = 800.0
	DefaultContainerHeight = 600.0
	DefaultMinZoomRatio    = 0.9
	DefaultMaxZoomRatio    = 40.0
	DefaultScrollZoomStep  = 1.2
	DefaultClickZoom       = 2.0
)

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	// ContainerWidth and ContainerHeight are the screen size in pixels.
	ContainerWidth  float64
	ContainerHeight float64

	// AnimationTime is how long animated commands take.
	AnimationTime time.Duration

	// MinZoomRatio and MaxZoomRatio bound the zoom level relative to the
	// home zoom.
	MinZoomRatio float64
	MaxZoomRatio float64

	// ScrollZoomStep is the zoom multiplier of one scroll notch.
	ScrollZoomStep float64

	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.ContainerWidth <= 0 {
		o.ContainerWidth = DefaultContainerWidth
	}
	if o.ContainerHeight <= 0 {
		o.ContainerHeight = DefaultContainerHeight
	}
	if o.AnimationTime == 0 {
		o.AnimationTime = viewer.DefaultAnimationTime
	}
	if o.MinZoomRatio <= 0 {
		o.MinZoomRatio = DefaultMinZoomRatio
	}
	if o.MaxZoomRatio <= 0 {
		o.MaxZoomRatio = DefaultMaxZoomRatio
	}
	if o.ScrollZoomStep <= 1 {
		o.ScrollZoomStep = DefaultScrollZoomStep
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Image is one placed tiled image.
type Image struct {
	Index int
	Page  manifest.Page
	Rect  geom.Rect
}

// Engine is a simulated rendering engine. Like the controllers it drives, it
// is not safe for concurrent use.
type Engine struct {
	opts  Options
	sched task.Scheduler

	images []Image
	world  geom.Rect

	center geom.Point
	width  float64 // viewport width in world units

	gestures  viewer.GestureSettings
	keyboard  bool
	animating bool
	finish    task.Handle

	feeds map[viewer.EventKind]*notify.Feed[*viewer.Event]
}

// New creates an engine that animates on sched.
func New(sched task.Scheduler, opts Options) *Engine {
	opts.setDefaults()
	return &Engine{
		opts:     opts,
		sched:    sched,
		width:    opts.ContainerWidth,
		keyboard: true,
		feeds:    make(map[viewer.EventKind]*notify.Feed[*viewer.Event]),
	}
}

var _ viewer.Engine = (*Engine)(nil)

// Reset removes every image and returns the viewport to its initial state.
// Handlers stay registered.
func (e *Engine) Reset() {
	task.Cancel(e.finish)
	e.images = nil
	e.world = geom.Rect{}
	e.center = geom.Point{}
	e.width = e.opts.ContainerWidth
	e.animating = false
	e.keyboard = true
}

// =============================================================================
// viewer.Engine
// =============================================================================

// Bounds implements viewer.Engine.
func (e *Engine) Bounds() geom.Rect {
	h := e.width * e.opts.ContainerHeight / e.opts.ContainerWidth
	return geom.Rect{X: e.center.X - e.width/2, Y: e.center.Y - h/2, Width: e.width, Height: h}
}

// Zoom implements viewer.Engine.
func (e *Engine) Zoom() float64 { return e.refWidth() / e.width }

// HomeZoom implements viewer.Engine.
func (e *Engine) HomeZoom() float64 { return e.refWidth() / e.homeWidth() }

// MinZoom implements viewer.Engine.
func (e *Engine) MinZoom() float64 { return e.HomeZoom() * e.opts.MinZoomRatio }

// MaxZoom implements viewer.Engine.
func (e *Engine) MaxZoom() float64 { return e.HomeZoom() * e.opts.MaxZoomRatio }

// PanTo implements viewer.Engine.
func (e *Engine) PanTo(p geom.Point, immediately bool) {
	e.opts.Logger.Debug("pan", "to", p, "immediately", immediately)
	e.center = p
	e.constrain()
	e.animate(immediately)
}

// ZoomTo implements viewer.Engine.
func (e *Engine) ZoomTo(level float64, ref *geom.Point) {
	level = math.Max(e.MinZoom(), math.Min(e.MaxZoom(), level))
	width := e.refWidth() / level
	if ref != nil {
		scale := width / e.width
		e.center = geom.Point{
			X: ref.X + (e.center.X-ref.X)*scale,
			Y: ref.Y + (e.center.Y-ref.Y)*scale,
		}
	}
	e.opts.Logger.Debug("zoom", "level", level, "ref", ref)
	e.width = width
	e.constrain()
	e.animate(false)
}

// FitBounds implements viewer.Engine.
func (e *Engine) FitBounds(r geom.Rect) {
	e.opts.Logger.Debug("fit", "rect", r)
	e.width = e.fitWidth(r)
	e.center = r.Center()
	e.constrain()
	e.animate(false)
}

// AddTiledImage implements viewer.Engine. The viewport jumps to the home
// view of the grown world.
func (e *Engine) AddTiledImage(index int, p manifest.Page, placement geom.Rect) {
	if len(e.images) == 0 {
		e.world = placement
	} else {
		e.world = e.world.Union(placement)
	}
	e.images = append(e.images, Image{Index: index, Page: p, Rect: placement})
	e.center = e.world.Center()
	e.width = e.homeWidth()
}

// AddHandler implements viewer.Engine.
func (e *Engine) AddHandler(kind viewer.EventKind, h viewer.Handler) func() {
	feed, ok := e.feeds[kind]
	if !ok {
		feed = &notify.Feed[*viewer.Event]{}
		e.feeds[kind] = feed
	}
	return feed.Subscribe(notify.Handler[*viewer.Event](h))
}

// SetGestureSettings implements viewer.Engine.
func (e *Engine) SetGestureSettings(s viewer.GestureSettings) { e.gestures = s }

// DisableKeyboard implements viewer.Engine.
func (e *Engine) DisableKeyboard() { e.keyboard = false }

// =============================================================================
// Inspection
// =============================================================================

// Images returns the placed images.
func (e *Engine) Images() []Image {
	out := make([]Image, len(e.images))
	copy(out, e.images)
	return out
}

// World returns the rect covering every placed image.
func (e *Engine) World() geom.Rect { return e.world }

// Gestures returns the current gesture settings.
func (e *Engine) Gestures() viewer.GestureSettings { return e.gestures }

// KeyboardEnabled reports whether default keyboard navigation is on.
func (e *Engine) KeyboardEnabled() bool { return e.keyboard }

// Animating reports whether an animation is running.
func (e *Engine) Animating() bool { return e.animating }

// Container returns the screen size in pixels.
func (e *Engine) Container() (width, height float64) {
	return e.opts.ContainerWidth, e.opts.ContainerHeight
}

// ScreenToWorld converts a screen pixel position to world coordinates.
func (e *Engine) ScreenToWorld(x, y float64) geom.Point {
	b := e.Bounds()
	scale := e.width / e.opts.ContainerWidth
	return geom.Point{X: b.X + x*scale, Y: b.Y + y*scale}
}

// =============================================================================
// Internals
// =============================================================================

// refWidth is the world width that zoom level 1 shows.
func (e *Engine) refWidth() float64 {
	if len(e.images) == 0 || e.images[0].Rect.Width <= 0 {
		return 1
	}
	return e.images[0].Rect.Width
}

func (e *Engine) homeWidth() float64 {
	if len(e.images) == 0 {
		return e.opts.ContainerWidth
	}
	return e.fitWidth(e.world)
}

// fitWidth is the viewport width that frames r in the container.
func (e *Engine) fitWidth(r geom.Rect) float64 {
	aspect := e.opts.ContainerWidth / e.opts.ContainerHeight
	if r.Height <= 0 || r.Width/r.Height >= aspect {
		return r.Width
	}
	return r.Height * aspect
}

// constrain keeps the viewport center over the placed images.
func (e *Engine) constrain() {
	if len(e.images) == 0 {
		return
	}
	e.center.X = math.Max(e.world.X, math.Min(e.world.Right(), e.center.X))
	e.center.Y = math.Max(e.world.Y, math.Min(e.world.Bottom(), e.center.Y))
}

// animate raises animation-start and schedules animation-finish. A new
// command restarts the running animation.
func (e *Engine) animate(immediately bool) {
	if !e.animating {
		e.animating = true
		e.raise(viewer.Event{Kind: viewer.EventAnimationStart})
	}
	task.Cancel(e.finish)
	d := e.opts.AnimationTime
	if immediately {
		d = 0
	}
	e.finish = e.sched.After(d, func() {
		e.finish = nil
		e.animating = false
		e.raise(viewer.Event{Kind: viewer.EventAnimationFinish})
	})
}

func (e *Engine) raise(ev viewer.Event) *viewer.Event {
	if feed, ok := e.feeds[ev.Kind]; ok {
		feed.Emit(&ev)
	}
	return &ev
}
