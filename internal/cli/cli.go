// Package cli implements the spectra command-line interface.
//
// # Commands
//
// The main commands are:
//   - layout: compute a spectral layout for a graph.json file, URL, or stdin
//   - render: draw a layout.json as SVG, PNG, or DOT
//   - normalize: show how a graph is flattened and reconnected
//   - serve: run the HTTP API with Prometheus metrics
//   - cache: manage the local layout cache
//
// # Configuration
//
// Every command reads an optional TOML file given with --config. Flags that
// are set explicitly override the file, and the file overrides the built-in
// defaults. --cache selects the cache backend ("file", "none", a redis://
// URL, or a mongodb:// URL).
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// surfaces the layout engine's progress (landmarks, iterations).
package cli

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spectra/pkg/buildinfo"
	"github.com/matzehuels/spectra/pkg/cache"
	"github.com/matzehuels/spectra/pkg/pipeline"
	"github.com/matzehuels/spectra/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "spectra"

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
	Source *source.Loader

	configPath string
	cacheSpec  string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Source: source.NewLoader(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Spectra computes fast spectral layouts for large compound graphs",
		Long:         `Spectra computes initial 2D layouts for large, possibly disconnected, compound graphs with a landmark-based Nyström spectral method. The layouts are meant as a fast starting point for force-directed refinement.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML config file")
	root.PersistentFlags().StringVar(&c.cacheSpec, "cache", "", "cache backend: file (default), none, redis://..., mongodb://...")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config when it was given.
func (c *CLI) loadConfig() (pipeline.Config, error) {
	if c.configPath == "" {
		return pipeline.Config{}, nil
	}
	cfg, err := pipeline.LoadConfig(c.configPath)
	if err != nil {
		return pipeline.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg pipeline.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// openCache resolves the backend from --cache, then the config file, then
// the local file cache. A missing home directory disables caching rather
// than failing the command.
func (c *CLI) openCache(ctx context.Context, cfg pipeline.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	spec := c.cacheSpec
	if spec == "" {
		spec = cfg.Cache
	}
	if spec == "" {
		spec = cache.BackendFile
	}

	var dir string
	if spec == cache.BackendFile {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	c.Logger.Debug("opening cache", "backend", redact(spec))
	return cache.Open(ctx, spec, dir)
}

// redact strips credentials from a backend URL for logging.
func redact(spec string) string {
	scheme, rest, ok := strings.Cut(spec, "://")
	if !ok {
		return spec
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spectra/).
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

// outputPathFor derives an output file name from the input reference. Graphs
// read from stdin or a URL are written to the working directory.
func outputPathFor(input, suffix string) string {
	switch {
	case input == source.Stdin:
		input = "graph"
	case source.IsURL(input):
		input = path.Base(strings.TrimRight(input, "/"))
		if input == "" || input == "." || strings.Contains(input, ":") {
			input = "graph"
		}
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
