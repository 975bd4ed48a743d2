// Package cli implements the folio command-line interface.
//
// Commands:
//   - layout: place a manifest's pages and write the layout document
//   - render: draw a layout as SVG, PNG or Graphviz DOT
//   - scan: build a manifest from a directory of images
//   - simulate: replay a gesture script against a simulated viewer
//   - view: browse a manifest interactively in the terminal
//   - serve: run the HTTP API
//   - cache: manage the layout cache
//
// All commands accept --verbose (-v) for debug logging and --config for a
// TOML viewer configuration.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/folio/pkg/buildinfo"
	"github.com/matzehuels/folio/pkg/cache"
	"github.com/matzehuels/folio/pkg/pipeline"
	"github.com/matzehuels/folio/pkg/render"
	"github.com/matzehuels/folio/pkg/viewer"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "folio"

	// redisPrefix namespaces folio's keys in a shared Redis.
	redisPrefix = "folio:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	redisAddr  string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Folio lays out and navigates multi-page deep-zoom documents",
		Long: `Folio places the pages of a scanned document side by side, one page or
two-page spreads at a time, and drives a deep-zoom viewer over them: a
dashboard of all pages, a fitted page mode, and gestures to move between.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "viewer config file (TOML)")
	root.PersistentFlags().StringVar(&c.redisAddr, "redis", "", "Redis address for the layout cache (default: local files)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache opens Redis when --redis is set and the file cache otherwise. A
// missing home directory disables caching rather than failing.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.redisAddr, Prefix: redisPrefix})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/folio/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives "<input without extension><suffix>" unless explicit is set.
func outputPath(input, explicit, suffix string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadConfig reads the --config file, or returns the defaults.
func (c *CLI) loadConfig() (viewer.Config, error) {
	if c.configPath == "" {
		cfg := viewer.DefaultConfig()
		return cfg, cfg.ValidateAndSetDefaults()
	}
	cfg, err := viewer.LoadConfig(c.configPath)
	if err != nil {
		return viewer.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "layout", cfg.Layout, "initial_mode", cfg.InitialMode)
	return cfg, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
