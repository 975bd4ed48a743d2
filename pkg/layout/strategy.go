package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/geom"
	"github.com/matzehuels/folio/pkg/manifest"
)

// Mode selects how pages are grouped on the plane.
// The zero value is not a valid mode.
type Mode int

const (
	OnePage Mode = iota + 1
	TwoPage
)

// Mode names as they appear in configuration files, flags, and JSON.
const (
	ModeNameOnePage = "one-page"
	ModeNameTwoPage = "two-page"
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case OnePage:
		return ModeNameOnePage
	case TwoPage:
		return ModeNameTwoPage
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m names a known layout mode.
func (m Mode) Valid() bool { return m == OnePage || m == TwoPage }

// ParseMode converts a configuration name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ModeNameOnePage, "onepage", "one":
		return OnePage, nil
	case ModeNameTwoPage, "twopage", "two":
		return TwoPage, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidLayout, "unknown layout mode %q (must be one of: one-page, two-page)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "invalid layout mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Criteria is the input to a single placement step.
type Criteria struct {
	Index int
	Page  manifest.Page

	// Previous is the rect placed for Index-1. It is nil only for index 0.
	Previous *geom.Rect
}

// Strategy computes where one page goes, given where the previous one went.
type Strategy interface {
	Calculate(c Criteria) geom.Rect
	Mode() Mode
}

// OnePageStrategy places pages in a single row, each separated by Margin.
// The first page is centered horizontally on the origin.
type OnePageStrategy struct {
	Margin float64
}

// Calculate implements Strategy.
func (s OnePageStrategy) Calculate(c Criteria) geom.Rect {
	var x float64
	if c.Index == 0 {
		x = -c.Page.Width / 2
	} else {
		x = c.Previous.X + c.Previous.Width + s.Margin
	}
	return geom.Rect{
		X:      x,
		Y:      -c.Page.Height / 2,
		Width:  c.Page.Width,
		Height: c.Page.Height,
	}
}

// Mode implements Strategy.
func (OnePageStrategy) Mode() Mode { return OnePage }

// TwoPageStrategy pairs pages into spreads. Page 0 stands alone starting at
// x = 0; odd pages open a spread after Margin and even pages join the spread of
// the page before them with no gap.
type TwoPageStrategy struct {
	Margin float64
}

// Calculate implements Strategy.
func (s TwoPageStrategy) Calculate(c Criteria) geom.Rect {
	var x float64
	switch {
	case c.Index == 0:
		x = 0
	case c.Index%2 == 1:
		x = c.Previous.X + c.Previous.Width + s.Margin
	default:
		x = c.Previous.X + c.Previous.Width
	}
	return geom.Rect{
		X:      x,
		Y:      -c.Page.Height / 2,
		Width:  c.Page.Width,
		Height: c.Page.Height,
	}
}

// Mode implements Strategy.
func (TwoPageStrategy) Mode() Mode { return TwoPage }

// NewStrategy selects the placement strategy for a layout pass.
//
// Unpaged collections always use the one-page strategy, whatever the requested
// mode. Otherwise an unknown mode is a configuration error and no strategy is
// returned.
func NewStrategy(mode Mode, paged bool, margin float64) (Strategy, error) {
	if mode == OnePage || !paged {
		return OnePageStrategy{Margin: margin}, nil
	}
	if mode == TwoPage {
		return TwoPageStrategy{Margin: margin}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidLayout, "no placement strategy for layout mode %v", mode)
}
