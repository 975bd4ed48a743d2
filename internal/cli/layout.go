package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/pipeline"
)

// layoutCommand creates the layout command for placing a manifest's pages.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		quiet   bool
	)
	opts := pipeline.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "layout [manifest]",
		Short: "Place a manifest's pages side by side",
		Long: `Place a manifest's pages side by side.

Pages are scaled to the height of the first page and laid out left to right,
one page at a time or as two-page spreads with the first page alone. The
result is written as <manifest>.layout.json and printed as a table.

Results are cached locally (or in Redis with --redis).`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, quiet)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <manifest>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the page table")
	cmd.Flags().StringVarP(&opts.Layout, "mode", "m", "", "layout mode: one-page, two-page (default: manifest's, then one-page)")
	cmd.Flags().Float64Var(&opts.Margin, "margin", pipeline.DefaultMargin, "gap between pages")
	cmd.Flags().BoolVar(&opts.Unpaged, "unpaged", false, "lay out one page at a time regardless of mode")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute and overwrite cached results")

	return cmd
}

// runLayout loads the manifest, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache, quiet bool) error {
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
	prog := newProgress(c.Logger)
	doc, cacheHit, err := runner.ComputeLayout(ctx, m, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done(fmt.Sprintf("Placed %d pages", len(doc.Pages)))

	out := outputPath(input, output, ".layout.json")
	if err := layout.WriteFile(doc, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	if !quiet {
		fmt.Println(pageTable(doc, -1))
	}
	printSuccess("Layout complete")
	printFile(out)
	printStats(len(doc.Pages), doc.Mode, cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
