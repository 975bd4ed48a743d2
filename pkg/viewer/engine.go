package viewer

import (
	"fmt"

	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
)

// Engine is the deep-zoom rendering engine a Controller drives.
//
// All coordinates are world coordinates, the plane pages are laid out in.
// Engines raise events by calling the handlers registered with AddHandler on
// the goroutine that drives the Controller.
type Engine interface {
	// Bounds returns the part of the world currently visible.
	Bounds() geom.Rect

	Zoom() float64
	HomeZoom() float64
	MinZoom() float64
	MaxZoom() float64

	// PanTo centers the viewport on p, animated unless immediately is set.
	PanTo(p geom.Point, immediately bool)

	// ZoomTo changes the zoom level. When ref is non-nil the world point
	// under ref stays where it is on screen.
	ZoomTo(level float64, ref *geom.Point)

	// FitBounds animates the viewport to frame r.
	FitBounds(r geom.Rect)

	// AddTiledImage places the image for page index at placement.
	AddTiledImage(index int, p manifest.Page, placement geom.Rect)

	// Reset removes every tiled image and returns the viewport to its
	// initial state. Registered handlers are kept.
	Reset()

	// AddHandler registers h for events of kind and returns a func that
	// removes it again.
	AddHandler(kind EventKind, h Handler) func()

	SetGestureSettings(s GestureSettings)

	// DisableKeyboard turns off the engine's default keyboard navigation.
	DisableKeyboard()
}

// GestureSettings switch engine-side gesture behaviour.
type GestureSettings struct {
	PanVertical  bool `json:"pan_vertical"`
	PinchToZoom  bool `json:"pinch_to_zoom"`
	ScrollToZoom bool `json:"scroll_to_zoom"`
}

// =============================================================================
// Events
// =============================================================================

// EventKind identifies an engine event.
type EventKind int

const (
	EventAnimationStart EventKind = iota
	EventAnimationFinish
	EventCanvasClick
	EventCanvasDoubleClick
	EventCanvasPress
	EventCanvasRelease
	EventCanvasScroll
	EventCanvasPinch
	EventCanvasDragEnd
	EventHome
	EventResize
)

var eventNames = map[EventKind]string{
	EventAnimationStart:    "animation-start",
	EventAnimationFinish:   "animation-finish",
	EventCanvasClick:       "canvas-click",
	EventCanvasDoubleClick: "canvas-double-click",
	EventCanvasPress:       "canvas-press",
	EventCanvasRelease:     "canvas-release",
	EventCanvasScroll:      "canvas-scroll",
	EventCanvasPinch:       "canvas-pinch",
	EventCanvasDragEnd:     "canvas-drag-end",
	EventHome:              "home",
	EventResize:            "resize",
}

// String returns the event's wire name.
func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// ParseEventKind converts a wire name into an EventKind.
func ParseEventKind(s string) (EventKind, bool) {
	for k, name := range eventNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Event carries the payload of one engine event. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind

	// Position is the world point under the pointer for click and press
	// events.
	Position geom.Point

	// WheelDelta and DeltaY describe a scroll. Devices report one or the
	// other; WheelDelta wins when both are set.
	WheelDelta float64
	DeltaY     float64

	// Distance and LastDistance are the finger spread of a pinch, now and at
	// the previous sample.
	Distance     float64
	LastDistance float64

	// PreventDefault suppresses the engine's own handling of the event.
	PreventDefault bool
}

// Handler receives engine events.
type Handler func(e *Event)
