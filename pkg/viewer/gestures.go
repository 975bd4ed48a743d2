package viewer

import (
	"time"

	"github.com/matzehuels/folio/pkg/mode"
	"github.com/matzehuels/folio/pkg/observability"
	"github.com/matzehuels/folio/pkg/task"
)

// handlers is the controller's dispatch table, one handler per engine event.
func (c *Controller) handlers() map[EventKind]Handler {
	return map[EventKind]Handler{
		EventAnimationStart:    c.onAnimationStart,
		EventAnimationFinish:   c.onAnimationFinish,
		EventCanvasClick:       c.onClick,
		EventCanvasDoubleClick: func(e *Event) { e.PreventDefault = true },
		EventCanvasPress:       func(*Event) { c.canvasPressed.Emit(true) },
		EventCanvasRelease:     func(*Event) { c.canvasPressed.Emit(false) },
		EventCanvasScroll:      c.onScroll,
		EventCanvasPinch:       c.onPinch,
		EventCanvasDragEnd:     c.onDragEnd,
		EventHome:              func(*Event) { c.Home() },
		EventResize:            func(*Event) { c.Resize() },
	}
}

func (c *Controller) onAnimationStart(*Event) {
	if st := c.state; st != nil {
		st.Animating = true
	}
	c.animating.Emit(true)
}

// onAnimationFinish recomputes whether the current page exactly fits.
func (c *Controller) onAnimationFinish(*Event) {
	if st := c.state; st != nil {
		if st.Cursor.Valid() {
			page := st.Registry.Get(st.Cursor.Current())
			st.Fitted = IsFitted(page, c.engine.Bounds(), c.cfg.FitTolerance)
		}
		st.Animating = false
	}
	c.animating.Emit(false)
}

// onScroll opens the current page when scrolling up on the dashboard and
// returns to the dashboard when scrolling down on a page that fits.
func (c *Controller) onScroll(e *Event) {
	delta := e.WheelDelta
	if delta == 0 {
		delta = -e.DeltaY
	}
	c.interrupt()
	switch m := c.modes.Mode(); {
	case delta > 0 && m == mode.Dashboard:
		c.toggleToPage()
	case delta < 0 && m == mode.Page && c.fitsOrSmaller():
		c.toggleToDashboard()
	default:
		c.ignored("scroll")
	}
}

// onPinch mirrors onScroll for pinch gestures: spreading opens a page,
// pinching in on a fitted page returns to the dashboard.
func (c *Controller) onPinch(e *Event) {
	c.interrupt()
	switch m := c.modes.Mode(); {
	case e.Distance > e.LastDistance:
		if m == mode.Dashboard {
			c.toggleToPage()
			return
		}
	case m == mode.Page && c.fitsOrSmaller():
		c.toggleToDashboard()
		return
	}
	c.ignored("pinch")
}

// onClick feeds raw clicks to the click service, which decides between a
// single and a double click.
func (c *Controller) onClick(e *Event) {
	c.interrupt()
	c.clicks.click(e)
}

// onSingleClick toggles the mode when a page is hit. Entering page mode
// makes the clicked page current.
func (c *Controller) onSingleClick(e Event) {
	st := c.state
	if st == nil {
		return
	}
	hit := st.Registry.Hit(e.Position)
	if hit < 0 {
		c.ignored("click")
		return
	}
	if c.modes.Mode() == mode.Dashboard {
		c.setPage(hit)
	}
	c.modes.Toggle()
	if c.modes.Mode() == mode.Page {
		c.toggleToPage()
	} else {
		c.toggleToDashboard()
	}
}

// onDoubleClick zooms into a fitted page around the click, or fits the
// clicked page.
func (c *Controller) onDoubleClick(e Event) {
	st := c.state
	if st == nil {
		return
	}
	if st.Fitted {
		ref := e.Position
		c.engine.ZoomTo(c.Zoom()*c.cfg.ZoomPerClick, &ref)
		return
	}
	if hit := st.Registry.Hit(e.Position); hit >= 0 {
		c.setPage(hit)
	}
	c.toggleToPage()
}

// onDragEnd turns the page when a zoomed page is dragged past its edge, and
// otherwise centers the page under the viewport.
func (c *Controller) onDragEnd(*Event) {
	st := c.state
	if st == nil || !st.Cursor.Valid() {
		return
	}
	c.interrupt()

	if !c.zoomedInPageMode() {
		index := st.Registry.IndexAtCenter(c.engine.Bounds())
		if index < 0 {
			c.ignored("drag")
			return
		}
		c.setPage(index)
		c.panToPage(false)
		return
	}

	current := st.Registry.Get(st.Cursor.Current())
	dir := PanDirectionFor(c.engine.Bounds(), current, c.cfg.PanSensitivityMargin)
	if dir == PanUndefined {
		c.ignored("drag")
		return
	}
	c.logger.Debug("page turn", "direction", dir, "page", st.Cursor.Current())
	observability.Navigation().OnPanResolved(dir.String())

	// The engine cannot chain animations, so the pan waits for the fit.
	c.toggleToPage()
	st.pending = c.sched.After(c.cfg.AnimationTime.Std(), func() {
		st.pending = nil
		c.turnPage(dir)
	})
}

// turnPage moves the cursor in dir and pans to the new page at the current
// zoom level.
func (c *Controller) turnPage(dir PanDirection) {
	switch dir {
	case PanRight:
		c.step(c.state.Cursor.Next)
	case PanLeft:
		c.step(c.state.Cursor.Prev)
	}
	c.panToPage(false)
}

// =============================================================================
// Click disambiguation
// =============================================================================

// clickService splits raw clicks into single and double clicks. A click
// waits out the window; a second click inside it cancels the first and
// fires a double click instead.
type clickService struct {
	sched   task.Scheduler
	window  time.Duration
	single  func(Event)
	double  func(Event)
	pending task.Handle
}

func newClickService(sched task.Scheduler, window time.Duration, single, double func(Event)) *clickService {
	return &clickService{sched: sched, window: window, single: single, double: double}
}

func (s *clickService) click(e *Event) {
	if s.pending != nil && s.pending.Cancel() {
		s.pending = nil
		s.double(*e)
		return
	}
	ev := *e
	s.pending = s.sched.After(s.window, func() {
		s.pending = nil
		s.single(ev)
	})
}

func (s *clickService) reset() {
	task.Cancel(s.pending)
	s.pending = nil
}
