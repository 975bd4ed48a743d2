package sim

import (
	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/viewer"
)

// Click presses and releases at p, then raises a click.
func (e *Engine) Click(p geom.Point) {
	e.raise(viewer.Event{Kind: viewer.EventCanvasPress, Position: p})
	e.raise(viewer.Event{Kind: viewer.EventCanvasRelease, Position: p})
	e.raise(viewer.Event{Kind: viewer.EventCanvasClick, Position: p})
}

// DoubleClick clicks twice at p and raises a double click. Unless a handler
// prevents it, the engine zooms in around p.
func (e *Engine) DoubleClick(p geom.Point) {
	e.Click(p)
	e.Click(p)
	ev := e.raise(viewer.Event{Kind: viewer.EventCanvasDoubleClick, Position: p})
	if !ev.PreventDefault {
		e.ZoomTo(e.Zoom()*DefaultClickZoom, &p)
	}
}

// Scroll raises a wheel event at p. Positive delta scrolls up. With scroll
// zoom enabled the engine also zooms one step around p.
func (e *Engine) Scroll(delta float64, p geom.Point) {
	ev := e.raise(viewer.Event{Kind: viewer.EventCanvasScroll, Position: p, WheelDelta: delta})
	if ev.PreventDefault || !e.gestures.ScrollToZoom || delta == 0 {
		return
	}
	factor := e.opts.ScrollZoomStep
	if delta < 0 {
		factor = 1 / factor
	}
	e.ZoomTo(e.Zoom()*factor, &p)
}

// Pinch raises a pinch from lastDistance to distance around p. With pinch
// zoom enabled the engine scales the zoom by their ratio.
func (e *Engine) Pinch(distance, lastDistance float64, p geom.Point) {
	ev := e.raise(viewer.Event{
		Kind:         viewer.EventCanvasPinch,
		Position:     p,
		Distance:     distance,
		LastDistance: lastDistance,
	})
	if ev.PreventDefault || !e.gestures.PinchToZoom || lastDistance <= 0 {
		return
	}
	e.ZoomTo(e.Zoom()*distance/lastDistance, &p)
}

// Drag moves the content by dx, dy screen pixels, the way a pointer drag
// does, and raises press, release and drag-end. Vertical movement only
// applies while vertical panning is enabled.
func (e *Engine) Drag(dx, dy float64) {
	start := e.Bounds().Center()
	e.raise(viewer.Event{Kind: viewer.EventCanvasPress, Position: start})

	scale := e.width / e.opts.ContainerWidth
	e.center.X -= dx * scale
	if e.gestures.PanVertical {
		e.center.Y -= dy * scale
	}
	e.constrain()

	end := e.Bounds().Center()
	e.raise(viewer.Event{Kind: viewer.EventCanvasRelease, Position: end})
	e.raise(viewer.Event{Kind: viewer.EventCanvasDragEnd, Position: end})
}

// Resize changes the container size and raises a resize event.
func (e *Engine) Resize(width, height float64) {
	if width > 0 {
		e.opts.ContainerWidth = width
	}
	if height > 0 {
		e.opts.ContainerHeight = height
	}
	e.raise(viewer.Event{Kind: viewer.EventResize})
}

// GoHome raises a home event, as the engine's home button does.
func (e *Engine) GoHome() {
	e.raise(viewer.Event{Kind: viewer.EventHome})
}
