package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/manifest"
)

// scanCommand creates the scan command for building manifests from images.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		output  string
		id      string
		mode    string
		unpaged bool
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Build a manifest from a directory of images",
		Long: `Build a manifest from a directory of images.

Images (JPEG, PNG, GIF, BMP, TIFF, WebP) are ordered by file name and their
dimensions read from the file headers. The manifest is written as TOML or
JSON depending on the output extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if mode != "" {
				if _, err := layout.ParseMode(mode); err != nil {
					return err
				}
			}

			prog := newProgress(c.Logger)
			m, skipped, err := manifest.ScanDir(dir)
			if err != nil {
				return fmt.Errorf("scan %s: %w", dir, err)
			}
			prog.done(fmt.Sprintf("Scanned %d images", m.Len()))

			if id != "" {
				m.ID = id
			}
			m.Layout = mode
			m.Paged = !unpaged

			out := output
			if out == "" {
				out = filepath.Join(dir, "manifest.toml")
			}
			if err := manifest.WriteFile(m, out); err != nil {
				return fmt.Errorf("write manifest %s: %w", out, err)
			}

			printSuccess("Found %d pages", m.Len())
			for _, name := range skipped {
				printWarning("skipped %s (not a readable image)", name)
			}
			printFile(out)
			printNewline()
			printNextStep("Lay out", appName+" layout "+out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "manifest file, .toml or .json (default: <dir>/manifest.toml)")
	cmd.Flags().StringVar(&id, "id", "", "manifest id")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "preferred layout mode: one-page, two-page")
	cmd.Flags().BoolVar(&unpaged, "unpaged", false, "mark the collection as unpaged")

	return cmd
}
