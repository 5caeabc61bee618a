// Package cli implements the orbit command-line interface.
//
// This package provides commands for computing bubble layouts over domain
// trees, replaying recorded pointer traces, exploring a tree interactively,
// exporting trees as DOT/SVG, serving the HTTP API, and managing the local
// layout cache. The CLI is built using cobra and supports verbose logging
// via the charmbracelet/log library.
//
// # Commands
//
//   - layout: Compute and persist bubble positions for a tree file
//   - gestures: Replay a recorded pointer trace and report classifications
//   - explore: Interactive terminal exploration of a tree fixture
//   - export: Render a tree file as Graphviz DOT or SVG
//   - serve: Run the HTTP API
//   - cache: Manage the local layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/buildinfo"
	"github.com/matzehuels/orbit/pkg/cache"
	"github.com/matzehuels/orbit/pkg/config"
	"github.com/matzehuels/orbit/pkg/store"
)

const (
	// appName is the application name used for directories and display.
	appName = "orbit"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "orbit",
		Short:        "Orbit explores topic domains as spatial bubble maps",
		Long:         `Orbit is a tool for exploring hierarchical topic domains as spatial bubble layouts: it materializes tree levels on demand, relaxes child positions into a non-overlapping arrangement, and classifies pointer input into pan, zoom, and tap gestures.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", config.DefaultFile, "config file path")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.gesturesCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configured TOML file, defaulting quietly when absent.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		path = config.DefaultFile
	}
	return config.Load(path)
}

// newCache builds the cache backend selected in the config.
func newCache(cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case "redis":
		return cache.NewRedisCache(cfg.Addr, cfg.Password, cfg.DB), nil
	case "none":
		return cache.NewNullCache(), nil
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				printWarning("Cache directory unavailable, caching disabled: %v", err)
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// newStore builds the snapshot store selected in the config.
func (c *CLI) newStore(cmd *cobra.Command, cfg config.Store) (store.Store, error) {
	if cfg.Backend == "mongo" {
		return store.NewMongoStore(cmd.Context(), cfg.URI, cfg.Database, cfg.Collection)
	}
	return store.NewMemoryStore(), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/orbit/).
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
