package sim

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/task"
	"github.com/matzehuels/folio/pkg/viewer"
)

// Action types understood by Driver.Apply.
const (
	ActionClick       = "click"
	ActionDoubleClick = "dblclick"
	ActionScroll      = "scroll"
	ActionPinch       = "pinch"
	ActionDrag        = "drag"
	ActionResize      = "resize"
	ActionHome        = "home"
	ActionWait        = "wait"
	ActionSettle      = "settle"
	ActionNext        = "next"
	ActionPrev        = "prev"
	ActionGoTo        = "goto"
	ActionZoomIn      = "zoomin"
	ActionZoomOut     = "zoomout"
	ActionPage        = "page"
	ActionDashboard   = "dashboard"
)

var actionTypes = map[string]bool{
	ActionClick: true, ActionDoubleClick: true, ActionScroll: true, ActionPinch: true,
	ActionDrag: true, ActionResize: true, ActionHome: true, ActionWait: true,
	ActionSettle: true, ActionNext: true, ActionPrev: true, ActionGoTo: true,
	ActionZoomIn: true, ActionZoomOut: true, ActionPage: true, ActionDashboard: true,
}

// Action is one scripted user input or navigation call. Pointer gestures
// aim at Page's centre when Page is set, at X/Y when both are set, and at
// the viewport centre otherwise.
type Action struct {
	Type string `toml:"action" json:"type"`

	Page *int     `toml:"page" json:"page,omitempty"`
	X    *float64 `toml:"x" json:"x,omitempty"`
	Y    *float64 `toml:"y" json:"y,omitempty"`

	// Scroll
	Delta float64 `toml:"delta" json:"delta,omitempty"`

	// Pinch
	Distance     float64 `toml:"distance" json:"distance,omitempty"`
	LastDistance float64 `toml:"last_distance" json:"last_distance,omitempty"`

	// Drag, in screen pixels
	DX float64 `toml:"dx" json:"dx,omitempty"`
	DY float64 `toml:"dy" json:"dy,omitempty"`

	// Resize, in screen pixels
	Width  float64 `toml:"width" json:"width,omitempty"`
	Height float64 `toml:"height" json:"height,omitempty"`

	// GoTo
	Immediately bool `toml:"immediately" json:"immediately,omitempty"`

	// Wait advances the clock after the action.
	Wait viewer.Duration `toml:"wait" json:"wait,omitempty"`
}

// Validate checks the action type and its required fields.
func (a Action) Validate() error {
	if !actionTypes[a.Type] {
		return errors.New(errors.ErrCodeInvalidEvent, "unknown action %q", a.Type)
	}
	switch a.Type {
	case ActionGoTo:
		if a.Page == nil {
			return errors.New(errors.ErrCodeInvalidEvent, "goto needs a page")
		}
	case ActionPinch:
		if a.LastDistance <= 0 || a.Distance <= 0 {
			return errors.New(errors.ErrCodeInvalidEvent, "pinch needs positive distance and last_distance")
		}
	case ActionResize:
		if a.Width <= 0 || a.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidEvent, "resize needs positive width and height")
		}
	}
	if (a.X == nil) != (a.Y == nil) {
		return errors.New(errors.ErrCodeInvalidEvent, "%s: x and y must be given together", a.Type)
	}
	if a.Wait < 0 {
		return errors.New(errors.ErrCodeInvalidEvent, "%s: wait must not be negative", a.Type)
	}
	return nil
}

// String describes the action for logs.
func (a Action) String() string {
	var b strings.Builder
	b.WriteString(a.Type)
	if a.Page != nil {
		fmt.Fprintf(&b, " page=%d", *a.Page)
	}
	if a.X != nil && a.Y != nil {
		fmt.Fprintf(&b, " at=(%g,%g)", *a.X, *a.Y)
	}
	switch a.Type {
	case ActionScroll:
		fmt.Fprintf(&b, " delta=%g", a.Delta)
	case ActionPinch:
		fmt.Fprintf(&b, " %g->%g", a.LastDistance, a.Distance)
	case ActionDrag:
		fmt.Fprintf(&b, " by=(%g,%g)", a.DX, a.DY)
	case ActionResize:
		fmt.Fprintf(&b, " %gx%g", a.Width, a.Height)
	}
	if a.Wait > 0 {
		fmt.Fprintf(&b, " wait=%s", a.Wait)
	}
	return b.String()
}

// =============================================================================
// Driver
// =============================================================================

// Driver plays actions against a controller running on a simulated engine
// and a manual clock.
type Driver struct {
	Engine     *Engine
	Controller *viewer.Controller
	Clock      *task.ManualScheduler
}

// NewDriver wires a simulated engine and a controller on a manual clock
// starting at start, and loads m.
func NewDriver(m *manifest.Manifest, cfg viewer.Config, opts Options, start time.Time, logger *log.Logger) (*Driver, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	clock := task.NewManualScheduler(start)
	if opts.AnimationTime == 0 {
		opts.AnimationTime = cfg.AnimationTime.Std()
	}
	if opts.Logger == nil {
		opts.Logger = logger.WithPrefix("engine")
	}
	engine := New(clock, opts)
	ctrl, err := viewer.NewController(engine, cfg, clock, logger)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Load(m); err != nil {
		return nil, err
	}
	return &Driver{Engine: engine, Controller: ctrl, Clock: clock}, nil
}

// Apply performs a, then advances the clock by a.Wait.
func (d *Driver) Apply(a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	c, e := d.Controller, d.Engine
	switch a.Type {
	case ActionClick:
		e.Click(d.target(a))
	case ActionDoubleClick:
		e.DoubleClick(d.target(a))
	case ActionScroll:
		e.Scroll(a.Delta, d.target(a))
	case ActionPinch:
		e.Pinch(a.Distance, a.LastDistance, d.target(a))
	case ActionDrag:
		e.Drag(a.DX, a.DY)
	case ActionResize:
		e.Resize(a.Width, a.Height)
	case ActionHome:
		e.GoHome()
	case ActionSettle:
		d.Clock.Flush()
	case ActionNext:
		c.NextPage()
	case ActionPrev:
		c.PrevPage()
	case ActionGoTo:
		c.GoToPage(*a.Page, a.Immediately)
	case ActionZoomIn:
		c.ZoomIn()
	case ActionZoomOut:
		c.ZoomOut()
	case ActionPage:
		c.ToggleToPage()
	case ActionDashboard:
		c.ToggleToDashboard()
	case ActionWait:
	}
	if a.Wait > 0 {
		d.Clock.Advance(a.Wait.Std())
	}
	return nil
}

// Advance moves the clock forward by dur.
func (d *Driver) Advance(dur time.Duration) { d.Clock.Advance(dur) }

// Elapsed returns the clock's time since start.
func (d *Driver) Elapsed(start time.Time) time.Duration { return d.Clock.Now().Sub(start) }

// Close destroys the controller.
func (d *Driver) Close() { d.Controller.Destroy() }

func (d *Driver) target(a Action) geom.Point {
	if a.Page != nil {
		placements := d.Controller.Placements()
		if *a.Page >= 0 && *a.Page < len(placements) {
			return placements[*a.Page].Center()
		}
	}
	if a.X != nil && a.Y != nil {
		return geom.Point{X: *a.X, Y: *a.Y}
	}
	return d.Engine.Bounds().Center()
}

// =============================================================================
// Scripts
// =============================================================================

// Script is a TOML file of actions:
//
//	[viewport]
//	width = 1024
//	height = 768
//
//	[[step]]
//	action = "scroll"
//	delta = 1
//	wait = "600ms"
//
//	[[step]]
//	action = "dblclick"
//	page = 0
type Script struct {
	Viewport struct {
		Width  float64 `toml:"width"`
		Height float64 `toml:"height"`
	} `toml:"viewport"`
	Steps []Action `toml:"step"`
}

// ReadScript decodes a script from r.
func ReadScript(r io.Reader) (*Script, error) {
	var s Script
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode script")
	}
	for i, step := range s.Steps {
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &s, nil
}

// Options returns engine options for the script's viewport.
func (s *Script) Options() Options {
	return Options{ContainerWidth: s.Viewport.Width, ContainerHeight: s.Viewport.Height}
}
