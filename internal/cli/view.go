package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/mode"
	"github.com/matzehuels/folio/pkg/sim"
)

const (
	// viewTick is how often the TUI advances the simulated clock.
	viewTick = 50 * time.Millisecond

	// cellWidth and cellHeight convert terminal cells to viewport pixels.
	cellWidth  = 8
	cellHeight = 16
)

var (
	viewCurrentStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	viewPageStyle     = lipgloss.NewStyle().Foreground(colorGray)
	viewViewportStyle = lipgloss.NewStyle().Foreground(colorCyan)
	viewModeStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorCyan).Padding(0, 1)
)

// viewCommand creates the view command, an interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [manifest]",
		Short: "Browse a manifest in an interactive terminal viewer",
		Long: `Browse a manifest in an interactive terminal viewer.

The viewer runs the navigation controller against a simulated engine sized
to the terminal. Keys stand in for mouse gestures:

  ←/→  h/l     previous / next page
  ↑/↓  k/j     scroll up (open page) / down (back to dashboard)
  enter        click the current page
  d            double click the current page
  H / L        drag left / right (turns pages when zoomed)
  + / -        zoom in / out
  tab          toggle page / dashboard
  0            home
  q            quit`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load manifest %s: %w", args[0], err)
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			// The terminal belongs to the TUI, so the controller logs nowhere.
			d, err := sim.NewDriver(m, cfg, sim.Options{}, time.Now(), nil)
			if err != nil {
				return err
			}
			defer d.Close()

			title := m.Label
			if title == "" {
				title = args[0]
			}
			_, err = tea.NewProgram(NewViewModel(d, title), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// ViewModel - Interactive viewer
// =============================================================================

type tickMsg time.Time

// ViewModel is the bubbletea model for the terminal viewer.
type ViewModel struct {
	Driver *sim.Driver
	Title  string
	Width  int
	Height int

	last time.Time
	err  error
}

// NewViewModel creates a viewer model over d.
func NewViewModel(d *sim.Driver, title string) ViewModel {
	return ViewModel{Driver: d, Title: title, Width: 80, Height: 24, last: d.Clock.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(viewTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ViewModel) Init() tea.Cmd {
	return tick()
}

func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		if d := now.Sub(m.last); d > 0 {
			m.Driver.Advance(d)
		}
		m.last = now
		return m, tick()
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.apply(sim.Action{
			Type:   sim.ActionResize,
			Width:  float64(msg.Width * cellWidth),
			Height: float64(msg.Height * cellHeight),
		})
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" || msg.String() == "esc" {
			return m, tea.Quit
		}
		if a, ok := m.keyAction(msg.String()); ok {
			m.apply(a)
		}
	}
	return m, nil
}

func (m *ViewModel) apply(a sim.Action) {
	m.err = m.Driver.Apply(a)
}

// keyAction maps a key to the gesture or navigation call it stands for.
func (m ViewModel) keyAction(key string) (sim.Action, bool) {
	page := m.Driver.Controller.CurrentPage()
	drag := m.containerWidth() / 3
	switch key {
	case "right", "l":
		return sim.Action{Type: sim.ActionNext}, true
	case "left", "h":
		return sim.Action{Type: sim.ActionPrev}, true
	case "up", "k":
		return sim.Action{Type: sim.ActionScroll, Delta: 1}, true
	case "down", "j":
		return sim.Action{Type: sim.ActionScroll, Delta: -1}, true
	case "enter", " ":
		return sim.Action{Type: sim.ActionClick, Page: &page}, true
	case "d":
		return sim.Action{Type: sim.ActionDoubleClick, Page: &page}, true
	case "L", "shift+right":
		return sim.Action{Type: sim.ActionDrag, DX: -drag}, true
	case "H", "shift+left":
		return sim.Action{Type: sim.ActionDrag, DX: drag}, true
	case "+", "=":
		return sim.Action{Type: sim.ActionZoomIn}, true
	case "-", "_":
		return sim.Action{Type: sim.ActionZoomOut}, true
	case "0":
		return sim.Action{Type: sim.ActionHome}, true
	case "tab":
		if m.Driver.Controller.Mode() == mode.Dashboard {
			return sim.Action{Type: sim.ActionPage}, true
		}
		return sim.Action{Type: sim.ActionDashboard}, true
	}
	return sim.Action{}, false
}

func (m ViewModel) containerWidth() float64 {
	w, _ := m.Driver.Engine.Container()
	return w
}

func (m ViewModel) View() string {
	var b strings.Builder
	st := m.Driver.Controller.Status()

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")

	cols := max(m.Width-4, 20)
	pages, viewport := m.strip(cols)
	b.WriteString("  " + pages + "\n")
	b.WriteString("  " + viewport + "\n\n")

	status := fmt.Sprintf("page %d/%d  zoom %.3g", st.Page+1, st.PageCount, st.Zoom)
	if st.Animating {
		status += "  " + StyleDim.Render("animating")
	}
	b.WriteString(viewModeStyle.Render(st.DisplayMode.String()) + " " + StyleValue.Render(status))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StyleWarning.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ page  ↑/↓ open/close  ⏎ click  d dblclick  H/L drag  +/- zoom  tab toggle  0 home  q quit"))
	return b.String()
}

// strip draws the placed pages and the viewport as two rows of cols cells.
func (m ViewModel) strip(cols int) (string, string) {
	world := m.Driver.Engine.World()
	if world.Width <= 0 {
		return "", ""
	}
	scale := float64(cols-1) / world.Width
	col := func(x float64) int {
		c := int(math.Round((x - world.X) * scale))
		return min(max(c, 0), cols-1)
	}

	current := m.Driver.Controller.CurrentPage()
	var pages strings.Builder
	pos := 0
	for i, r := range m.Driver.Controller.Placements() {
		a, z := max(col(r.X), pos), col(r.Right())
		if a >= cols {
			break
		}
		z = max(z, a)
		pages.WriteString(strings.Repeat(" ", a-pos))
		style := viewPageStyle
		if i == current {
			style = viewCurrentStyle
		}
		pages.WriteString(style.Render(pageSegment(i, z-a+1)))
		pos = z + 1
	}

	vb := m.Driver.Engine.Bounds()
	a, z := col(vb.X), col(vb.Right())
	viewport := strings.Repeat(" ", a) + viewViewportStyle.Render(strings.Repeat("▲", z-a+1))
	return pages.String(), viewport
}

// pageSegment draws page i in n cells: "[--3--]", or blocks when the label
// does not fit.
func pageSegment(i, n int) string {
	label := strconv.Itoa(i + 1)
	if n < len(label)+2 {
		return strings.Repeat("▪", n)
	}
	fill := n - 2 - len(label)
	left := fill / 2
	return "[" + strings.Repeat("-", left) + label + strings.Repeat("-", fill-left) + "]"
}
