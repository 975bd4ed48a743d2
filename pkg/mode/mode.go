// Package mode holds the viewer's display mode and its state machine.
//
// The viewer is either showing the whole collection ([Dashboard]) or reading a
// single page ([Page]). [PageZoomed] describes a page zoomed in past its fit;
// it is a display state that callers may set explicitly, but gestures only
// ever move between Dashboard and Page.
package mode

import (
	"fmt"
	"strings"

	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/notify"
)

// Mode is a viewer display mode.
type Mode int

const (
	Dashboard Mode = iota
	Page
	PageZoomed
)

var names = [...]string{
	Dashboard:  "dashboard",
	Page:       "page",
	PageZoomed: "page-zoomed",
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m >= 0 && int(m) < len(names) {
		return names[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Parse converts a configuration name into a Mode.
func Parse(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for m, name := range names {
		if key == name {
			return Mode(m), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown viewer mode %q (must be one of: dashboard, page, page-zoomed)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Machine holds the current and initial mode.
//
// Transitions are explicit: the machine has no rules of its own beyond
// [Machine.Toggle]. Subscribers hear about each distinct change exactly once.
type Machine struct {
	current Mode
	initial Mode
	changes notify.Feed[Mode]
}

// New returns a machine starting in initial.
func New(initial Mode) *Machine {
	return &Machine{current: initial, initial: initial}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.current }

// Initial returns the mode the machine was created with.
func (m *Machine) Initial() Mode { return m.initial }

// Set changes the current mode and notifies subscribers. Setting the mode
// that is already current does nothing.
func (m *Machine) Set(next Mode) {
	if next == m.current {
		return
	}
	m.current = next
	m.changes.Emit(next)
}

// Toggle flips between Dashboard and Page. In PageZoomed it does nothing.
func (m *Machine) Toggle() {
	switch m.current {
	case Dashboard:
		m.Set(Page)
	case Page:
		m.Set(Dashboard)
	}
}

// Subscribe registers fn for mode changes and returns its unsubscribe func.
func (m *Machine) Subscribe(fn func(Mode)) func() {
	return m.changes.Subscribe(fn)
}
