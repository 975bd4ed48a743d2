package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/pipeline"
)

// renderCommand creates the render command for drawing a layout.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
	)
	opts := pipeline.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "render [manifest]",
		Short: "Draw a manifest's layout as SVG, PNG or DOT",
		Long: `Draw a manifest's layout as SVG, PNG or Graphviz DOT.

Each page becomes a box pinned at its placed position, so the drawing shows
exactly what the viewer's dashboard frames. Use --labels to print page
labels inside the boxes.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <manifest>)")
	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "output formats, comma separated: svg, png, dot")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.Layout, "mode", "m", "", "layout mode: one-page, two-page")
	cmd.Flags().Float64Var(&opts.Margin, "margin", pipeline.DefaultMargin, "gap between pages")
	cmd.Flags().BoolVar(&opts.Unpaged, "unpaged", false, "lay out one page at a time regardless of mode")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "points per layout unit (default: widest page is two inches)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "draw page labels")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute and overwrite cached results")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	m, err := manifest.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load manifest %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, m, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := outputPath(input, "", "")
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	var paths []string
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %d pages", result.Stats.PageCount)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.PageCount, result.Layout.Mode, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}
