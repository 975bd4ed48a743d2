package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/mode"
	"github.com/matzehuels/folio/pkg/sim"
	"github.com/matzehuels/folio/pkg/viewer"
)

// simulateCommand creates the simulate command for replaying gesture scripts.
func (c *CLI) simulateCommand() *cobra.Command {
	var showSteps bool

	cmd := &cobra.Command{
		Use:   "simulate [manifest] [script.toml]",
		Short: "Replay a gesture script against a simulated viewer",
		Long: `Replay a gesture script against a simulated viewer.

The script is a TOML file with an optional [viewport] table and a list of
[[step]] tables. Each step is a gesture (click, dblclick, scroll, pinch,
drag, resize, home) or a navigation call (next, prev, goto, zoomin, zoomout,
page, dashboard), optionally followed by a wait. Time is simulated, so
animations and delayed page turns resolve deterministically.

Every page and mode change is printed with its simulated timestamp.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimulate(cmd.OutOrStdout(), args[0], args[1], showSteps)
		},
	}

	cmd.Flags().BoolVar(&showSteps, "steps", false, "print each step before it runs")

	return cmd
}

// simEpoch is the simulated clock's start. Only offsets from it are printed.
var simEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func (c *CLI) runSimulate(w io.Writer, manifestPath, scriptPath string, showSteps bool) error {
	m, err := manifest.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest %s: %w", manifestPath, err)
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	f, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	script, err := sim.ReadScript(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("script %s: %w", scriptPath, err)
	}

	d, err := sim.NewDriver(m, cfg, script.Options(), simEpoch, c.Logger)
	if err != nil {
		return err
	}
	defer d.Close()

	stamp := func() string {
		return StyleDim.Render(fmt.Sprintf("[%8s]", d.Elapsed(simEpoch).Round(time.Millisecond)))
	}
	d.Controller.OnPageChange(func(p int) {
		fmt.Fprintf(w, "%s page %s\n", stamp(), StyleHighlight.Render(fmt.Sprint(p)))
	})
	d.Controller.OnModeChange(func(md mode.Mode) {
		fmt.Fprintf(w, "%s mode %s\n", stamp(), StyleHighlight.Render(md.String()))
	})

	for i, step := range script.Steps {
		if showSteps {
			fmt.Fprintf(w, "%s %s\n", stamp(), StyleDim.Render(fmt.Sprintf("step %d: %s", i+1, step)))
		}
		if err := d.Apply(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	d.Clock.Flush()

	printSimSummary(w, d.Controller.Status(), d.Elapsed(simEpoch))
	return nil
}

func printSimSummary(w io.Writer, st viewer.Status, elapsed time.Duration) {
	fmt.Fprintln(w)
	rows := [][2]string{
		{"mode", st.DisplayMode.String()},
		{"page", fmt.Sprintf("%d of %d", st.Page+1, st.PageCount)},
		{"zoom", fmt.Sprintf("%.5g (home %.5g)", st.Zoom, st.HomeZoom)},
		{"fitted", fmt.Sprint(st.Fitted)},
		{"elapsed", elapsed.Round(time.Millisecond).String()},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s %s\n", StyleDim.Render(r[0]), StyleValue.Render(r[1]))
	}
}
