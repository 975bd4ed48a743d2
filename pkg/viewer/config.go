package viewer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/mode"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPageMargin is the horizontal gap between pages in world units.
	DefaultPageMargin = 20.0

	// DefaultZoomPerClick multiplies the zoom level on a double click over a
	// fitted page.
	DefaultZoomPerClick = 3.0

	// DefaultZoomFactor is added to or subtracted from the zoom level by
	// ZoomIn and ZoomOut.
	DefaultZoomFactor = 0.15

	// DefaultPanSensitivityMargin is how far past a page edge the viewport
	// must reach before a drag turns the page.
	DefaultPanSensitivityMargin = 40.0

	// DefaultAnimationTime matches the engine's animation length. Chained
	// commands wait this long for the first animation to finish.
	DefaultAnimationTime = 600 * time.Millisecond

	// DefaultGestureEnableDelay keeps pinch and scroll zoom off for a moment
	// after entering page mode, so the fit animation is not read as a gesture.
	DefaultGestureEnableDelay = 300 * time.Millisecond

	// DefaultDoubleClickWindow is the longest gap between two clicks that
	// still counts as a double click.
	DefaultDoubleClickWindow = 250 * time.Millisecond

	// DefaultFitTolerance is the absolute tolerance used to decide that a page
	// exactly fits the viewport.
	DefaultFitTolerance = 5.0
)

// =============================================================================
// Config
// =============================================================================

// Config holds the tunables of a Controller. It is read when a collection is
// loaded and does not change while that collection is shown.
type Config struct {
	PageMargin           float64  `toml:"page_margin" json:"page_margin"`
	ZoomPerClick         float64  `toml:"zoom_per_click" json:"zoom_per_click"`
	ZoomFactor           float64  `toml:"zoom_factor" json:"zoom_factor"`
	PanSensitivityMargin float64  `toml:"pan_sensitivity_margin" json:"pan_sensitivity_margin"`
	AnimationTime        Duration `toml:"animation_time" json:"animation_time"`
	GestureEnableDelay   Duration `toml:"gesture_enable_delay" json:"gesture_enable_delay"`
	DoubleClickWindow    Duration `toml:"double_click_window" json:"double_click_window"`
	FitTolerance         float64  `toml:"fit_tolerance" json:"fit_tolerance"`

	// InitialMode is the mode Home returns to.
	InitialMode mode.Mode `toml:"initial_mode" json:"initial_mode"`

	// Layout is used when the manifest names no layout of its own.
	Layout layout.Mode `toml:"layout" json:"layout,omitempty"`

	validated bool
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		PageMargin:           DefaultPageMargin,
		ZoomPerClick:         DefaultZoomPerClick,
		ZoomFactor:           DefaultZoomFactor,
		PanSensitivityMargin: DefaultPanSensitivityMargin,
		AnimationTime:        Duration(DefaultAnimationTime),
		GestureEnableDelay:   Duration(DefaultGestureEnableDelay),
		DoubleClickWindow:    Duration(DefaultDoubleClickWindow),
		FitTolerance:         DefaultFitTolerance,
		InitialMode:          mode.Dashboard,
		Layout:               layout.OnePage,
	}
}

// ValidateAndSetDefaults fills the fields whose zero value is unusable
// (ZoomPerClick, Layout) and rejects values the controller cannot work with.
// Every other zero is kept: a zero margin makes pages touch. Start from
// DefaultConfig to get the usual tunables. It is idempotent.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	d := DefaultConfig()
	if c.ZoomPerClick == 0 {
		c.ZoomPerClick = d.ZoomPerClick
	}
	if c.Layout == 0 {
		c.Layout = d.Layout
	}

	switch {
	case c.PageMargin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "page_margin must not be negative")
	case c.ZoomPerClick <= 1:
		return errors.New(errors.ErrCodeInvalidConfig, "zoom_per_click must be greater than 1")
	case c.ZoomFactor < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "zoom_factor must not be negative")
	case c.PanSensitivityMargin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "pan_sensitivity_margin must not be negative")
	case c.AnimationTime < 0, c.GestureEnableDelay < 0, c.DoubleClickWindow < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	case c.FitTolerance < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "fit_tolerance must not be negative")
	case c.InitialMode != mode.Dashboard && c.InitialMode != mode.Page:
		return errors.New(errors.ErrCodeInvalidConfig, "initial_mode must be dashboard or page, got %s", c.InitialMode)
	case !c.Layout.Valid():
		return errors.New(errors.ErrCodeInvalidConfig, "unknown layout %v", c.Layout)
	}

	c.validated = true
	return nil
}

// LoadConfig reads a TOML config file. Missing fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UnmarshalJSON decodes over DefaultConfig, so fields missing from b keep
// their defaults. Unknown fields are rejected.
func (c *Config) UnmarshalJSON(b []byte) error {
	type plain Config
	v := plain(DefaultConfig())
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	*c = Config(v)
	return nil
}

// =============================================================================
// Duration
// =============================================================================

// Duration is a time.Duration that reads and writes as text ("600ms").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid duration %q", b)
	}
	*d = Duration(v)
	return nil
}
