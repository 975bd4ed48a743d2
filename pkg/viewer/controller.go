package viewer

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/mode"
	"github.com/matzehuels/folio/pkg/notify"
	"github.com/matzehuels/folio/pkg/observability"
	"github.com/matzehuels/folio/pkg/page"
	"github.com/matzehuels/folio/pkg/task"
)

// zoomDigits is the number of significant digits zoom levels are reported
// with.
const zoomDigits = 5

// ViewerState is what a Controller knows about one loaded collection. It is
// built by Load and dropped by Unload; nothing carries over to the next
// collection.
type ViewerState struct {
	Pages    []manifest.Page
	Strategy layout.Strategy
	Registry *layout.Registry
	Cursor   page.Cursor

	// Fitted is recomputed when an animation finishes.
	Fitted    bool
	Animating bool
	Gestures  GestureSettings

	pending     task.Handle // fit-then-pan continuation
	gestureTask task.Handle
	homeTask    task.Handle
	detach      []func()
}

// Controller drives an Engine from gestures. See the package documentation.
type Controller struct {
	engine Engine
	cfg    Config
	sched  task.Scheduler
	logger *log.Logger

	modes    *mode.Machine
	lastMode mode.Mode
	clicks   *clickService
	resize   *task.Throttle
	state    *ViewerState

	stopModes func()

	pageChanges   notify.Feed[int]
	modeChanges   notify.Feed[mode.Mode]
	canvasPressed notify.Feed[bool]
	animating     notify.Feed[bool]
}

// NewController creates a controller for engine. sched must deliver
// continuations on the goroutine that drives the controller, for example a
// task.TimerScheduler whose post func feeds the application's event loop.
// A nil logger discards.
func NewController(engine Engine, cfg Config, sched task.Scheduler, logger *log.Logger) (*Controller, error) {
	if sched == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "controller needs a scheduler")
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	c := &Controller{
		engine:   engine,
		cfg:      cfg,
		sched:    sched,
		logger:   logger,
		modes:    mode.New(cfg.InitialMode),
		lastMode: cfg.InitialMode,
		resize:   task.NewThrottle(sched, cfg.AnimationTime.Std()),
	}
	c.clicks = newClickService(sched, cfg.DoubleClickWindow.Std(), c.onSingleClick, c.onDoubleClick)
	c.stopModes = c.modes.Subscribe(c.onModeChange)
	return c, nil
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config { return c.cfg }

// =============================================================================
// Lifecycle
// =============================================================================

// Load lays out m and hands it to the engine. A previously loaded collection
// is unloaded first. The manifest itself is not modified.
func (c *Controller) Load(m *manifest.Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}
	layoutMode := c.cfg.Layout
	if m.Layout != "" {
		var err error
		if layoutMode, err = layout.ParseMode(m.Layout); err != nil {
			return err
		}
	}
	strategy, err := layout.NewStrategy(layoutMode, m.Paged, c.cfg.PageMargin)
	if err != nil {
		return err
	}

	c.Unload()

	pages := m.Clone().Pages
	layout.NormalizeHeights(pages)
	st := &ViewerState{
		Pages:    pages,
		Strategy: strategy,
		Registry: layout.Build(pages, strategy),
	}
	st.Cursor.Reset()
	st.Cursor.SetCount(len(pages))
	c.state = st

	for i, p := range pages {
		c.engine.AddTiledImage(i, p, st.Registry.Get(i))
	}
	c.engine.DisableKeyboard()
	c.clicks.reset()
	c.resize.Reset()
	for kind, h := range c.handlers() {
		st.detach = append(st.detach, c.engine.AddHandler(kind, h))
	}
	c.applySettings(c.modes.Mode())

	c.logger.Info("collection loaded", "pages", len(pages), "layout", strategy.Mode(), "paged", m.Paged)
	c.pageChanges.Emit(0)
	c.Home()
	return nil
}

// Unload cancels pending continuations, detaches from the engine, clears the
// engine's images and drops the loaded collection. It is safe to call when
// nothing is loaded.
func (c *Controller) Unload() {
	st := c.state
	if st == nil {
		return
	}
	task.Cancel(st.pending)
	task.Cancel(st.gestureTask)
	task.Cancel(st.homeTask)
	c.clicks.reset()
	for _, detach := range st.detach {
		detach()
	}
	c.engine.Reset()
	c.state = nil
	if st.Animating {
		c.animating.Emit(false)
	}
}

// Destroy unloads and removes every subscriber. The controller must not be
// used afterwards.
func (c *Controller) Destroy() {
	c.Unload()
	if c.stopModes != nil {
		c.stopModes()
		c.stopModes = nil
	}
	c.pageChanges.Clear()
	c.modeChanges.Clear()
	c.canvasPressed.Clear()
	c.animating.Clear()
}

// Loaded reports whether a collection is loaded.
func (c *Controller) Loaded() bool { return c.state != nil }

// =============================================================================
// Notifications
// =============================================================================

// OnPageChange subscribes fn to current-page changes.
func (c *Controller) OnPageChange(fn func(int)) func() { return c.pageChanges.Subscribe(fn) }

// OnModeChange subscribes fn to mode changes.
func (c *Controller) OnModeChange(fn func(mode.Mode)) func() { return c.modeChanges.Subscribe(fn) }

// OnCanvasPressed subscribes fn to canvas press and release.
func (c *Controller) OnCanvasPressed(fn func(bool)) func() { return c.canvasPressed.Subscribe(fn) }

// OnAnimating subscribes fn to animation start and finish.
func (c *Controller) OnAnimating(fn func(bool)) func() { return c.animating.Subscribe(fn) }

// =============================================================================
// Queries
// =============================================================================

// Mode returns the current mode.
func (c *Controller) Mode() mode.Mode { return c.modes.Mode() }

// DisplayMode refines Mode for display: a page zoomed past its fit reports
// PageZoomed.
func (c *Controller) DisplayMode() mode.Mode {
	m := c.modes.Mode()
	if m == mode.Page && c.state != nil && c.state.Cursor.Valid() && !c.fitsOrSmaller() {
		return mode.PageZoomed
	}
	return m
}

// CurrentPage returns the current page index, or -1 when nothing is loaded.
func (c *Controller) CurrentPage() int {
	if c.state == nil {
		return -1
	}
	return c.state.Cursor.Current()
}

// PageCount returns the number of loaded pages.
func (c *Controller) PageCount() int {
	if c.state == nil {
		return 0
	}
	return c.state.Cursor.Count()
}

// Placements returns a copy of the placed page rects.
func (c *Controller) Placements() []geom.Rect {
	if c.state == nil {
		return nil
	}
	return c.state.Registry.All()
}

// Zoom returns the engine's zoom level.
func (c *Controller) Zoom() float64 { return geom.RoundSignificant(c.engine.Zoom(), zoomDigits) }

// HomeZoom returns the zoom level that frames the whole collection.
func (c *Controller) HomeZoom() float64 {
	return geom.RoundSignificant(c.engine.HomeZoom(), zoomDigits)
}

// MinZoom returns the engine's minimum zoom level.
func (c *Controller) MinZoom() float64 { return geom.RoundSignificant(c.engine.MinZoom(), zoomDigits) }

// MaxZoom returns the engine's maximum zoom level.
func (c *Controller) MaxZoom() float64 { return geom.RoundSignificant(c.engine.MaxZoom(), zoomDigits) }

// Status is a point-in-time summary of a controller.
type Status struct {
	Mode        mode.Mode       `json:"mode"`
	DisplayMode mode.Mode       `json:"display_mode"`
	Page        int             `json:"page"`
	PageCount   int             `json:"page_count"`
	Fitted      bool            `json:"fitted"`
	Animating   bool            `json:"animating"`
	Zoom        float64         `json:"zoom"`
	HomeZoom    float64         `json:"home_zoom"`
	Viewport    geom.Rect       `json:"viewport"`
	Gestures    GestureSettings `json:"gestures"`
}

// Status reports the controller's current state.
func (c *Controller) Status() Status {
	s := Status{
		Mode:        c.Mode(),
		DisplayMode: c.DisplayMode(),
		Page:        c.CurrentPage(),
		PageCount:   c.PageCount(),
		Zoom:        c.Zoom(),
		HomeZoom:    c.HomeZoom(),
		Viewport:    c.engine.Bounds(),
	}
	if st := c.state; st != nil {
		s.Fitted = st.Fitted
		s.Animating = st.Animating
		s.Gestures = st.Gestures
	}
	return s
}

// =============================================================================
// Navigation
// =============================================================================

// ToggleToPage switches to page mode and fits the current page. It does
// nothing when the current page is not valid.
func (c *Controller) ToggleToPage() {
	c.interrupt()
	c.toggleToPage()
}

// ToggleToDashboard switches to the dashboard and zooms to the home level.
func (c *Controller) ToggleToDashboard() {
	c.interrupt()
	c.toggleToDashboard()
}

// GoToPage makes index the current page. In page mode the page is fitted; on
// the dashboard it is centered, without animation when immediately is set.
// Indices outside the collection are ignored.
func (c *Controller) GoToPage(index int, immediately bool) {
	st := c.state
	if st == nil || !st.Cursor.InRange(index) {
		c.logger.Debug("go to page ignored", "page", index)
		return
	}
	c.interrupt()
	c.setPage(index)
	if c.modes.Mode() == mode.Dashboard {
		c.panToPage(immediately)
		return
	}
	c.toggleToPage()
}

// NextPage advances the cursor and fits the new current page.
func (c *Controller) NextPage() {
	if c.state == nil {
		return
	}
	c.interrupt()
	c.step(c.state.Cursor.Next)
	c.toggleToPage()
}

// PrevPage steps the cursor back and fits the new current page.
func (c *Controller) PrevPage() {
	if c.state == nil {
		return
	}
	c.interrupt()
	c.step(c.state.Cursor.Prev)
	c.toggleToPage()
}

// ZoomIn raises the zoom level by the configured factor. It does nothing on
// the dashboard.
func (c *Controller) ZoomIn() {
	if c.state == nil || c.modes.Mode() == mode.Dashboard {
		return
	}
	c.interrupt()
	c.engine.ZoomTo(c.Zoom()+c.cfg.ZoomFactor, nil)
}

// ZoomOut lowers the zoom level by the configured factor, or refits the
// page when it already fits. It does nothing on the dashboard.
func (c *Controller) ZoomOut() {
	if c.state == nil || c.modes.Mode() == mode.Dashboard {
		return
	}
	c.interrupt()
	if c.fitsOrSmaller() {
		c.toggleToPage()
		return
	}
	c.engine.ZoomTo(c.Zoom()-c.cfg.ZoomFactor, nil)
}

// Home returns to the configured initial mode.
func (c *Controller) Home() {
	if c.state == nil {
		return
	}
	c.interrupt()
	if c.modes.Initial() == mode.Dashboard {
		c.toggleToDashboard()
	} else {
		c.toggleToPage()
	}
}

// Resize reacts to a viewport size change. Bursts are coalesced to one per
// animation window; each accepted resize goes Home once the engine has
// settled.
func (c *Controller) Resize() {
	st := c.state
	if st == nil || !c.resize.Allow() {
		return
	}
	task.Cancel(st.homeTask)
	st.homeTask = c.sched.After(c.cfg.AnimationTime.Std(), func() {
		st.homeTask = nil
		c.Home()
	})
}

// =============================================================================
// Internals
// =============================================================================

func (c *Controller) toggleToPage() {
	st := c.state
	if st == nil || !st.Cursor.Valid() {
		return
	}
	c.modes.Set(mode.Page)
	c.engine.FitBounds(st.Registry.Get(st.Cursor.Current()))
}

func (c *Controller) toggleToDashboard() {
	c.modes.Set(mode.Dashboard)
	c.engine.ZoomTo(c.HomeZoom(), nil)
}

func (c *Controller) panToPage(immediately bool) {
	st := c.state
	if !st.Cursor.Valid() {
		return
	}
	c.engine.PanTo(st.Registry.Get(st.Cursor.Current()).Center(), immediately)
}

func (c *Controller) setPage(index int) {
	from := c.state.Cursor.Current()
	c.state.Cursor.SetCurrent(index)
	c.pageMoved(from)
}

func (c *Controller) step(move func() int) {
	from := c.state.Cursor.Current()
	move()
	c.pageMoved(from)
}

func (c *Controller) pageMoved(from int) {
	to := c.state.Cursor.Current()
	if to == from {
		return
	}
	c.logger.Debug("page changed", "from", from, "to", to)
	observability.Navigation().OnPageChange(from, to)
	c.pageChanges.Emit(to)
}

// interrupt cancels a pending fit-then-pan continuation.
func (c *Controller) interrupt() {
	if st := c.state; st != nil && st.pending != nil {
		st.pending.Cancel()
		st.pending = nil
		c.logger.Debug("pending page turn cancelled")
	}
}

// fitsOrSmaller reports whether the current page fits the viewport.
func (c *Controller) fitsOrSmaller() bool {
	st := c.state
	if st == nil || !st.Cursor.Valid() {
		return false
	}
	return FitsOrSmaller(st.Registry.Get(st.Cursor.Current()), c.engine.Bounds())
}

func (c *Controller) zoomedInPageMode() bool {
	return c.modes.Mode() == mode.Page && !c.fitsOrSmaller()
}

func (c *Controller) onModeChange(m mode.Mode) {
	from := c.lastMode
	c.lastMode = m
	c.logger.Debug("mode changed", "from", from, "to", m)
	observability.Navigation().OnModeChange(from.String(), m.String())
	c.applySettings(m)
	c.modeChanges.Emit(m)
}

// applySettings switches engine gestures for m. Entering page mode enables
// vertical panning at once and pinch/scroll zoom after a delay.
func (c *Controller) applySettings(m mode.Mode) {
	st := c.state
	if st == nil {
		return
	}
	switch m {
	case mode.Dashboard:
		task.Cancel(st.gestureTask)
		st.gestureTask = nil
		st.Gestures = GestureSettings{}
		c.engine.SetGestureSettings(st.Gestures)
	case mode.Page:
		st.Gestures.PanVertical = true
		c.engine.SetGestureSettings(st.Gestures)
		task.Cancel(st.gestureTask)
		st.gestureTask = c.sched.After(c.cfg.GestureEnableDelay.Std(), func() {
			st.gestureTask = nil
			st.Gestures.PinchToZoom = true
			st.Gestures.ScrollToZoom = true
			c.engine.SetGestureSettings(st.Gestures)
		})
	}
}

// ignored records a gesture that produced no transition.
func (c *Controller) ignored(gesture string) {
	c.logger.Debug("gesture ignored", "gesture", gesture, "mode", c.modes.Mode())
	observability.Navigation().OnGestureIgnored(gesture)
}
