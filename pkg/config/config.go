// Package config loads orbit configuration from a TOML file.
//
// Configuration is optional: every field has a working default, and a
// missing file yields the default config rather than an error. The CLI
// looks for orbit.toml in the working directory unless a path is given.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orbit/pkg/errors"
)

// DefaultFile is the config filename the CLI looks for.
const DefaultFile = "orbit.toml"

// Config is the full orbit configuration.
type Config struct {
	Layout  Layout  `toml:"layout"`
	Gesture Gesture `toml:"gesture"`
	Cache   Cache   `toml:"cache"`
	Store   Store   `toml:"store"`
	Server  Server  `toml:"server"`
}

// Layout tunes the relaxation run.
type Layout struct {
	Iterations   int     `toml:"iterations"`
	PairMargin   float64 `toml:"pair_margin"`
	CenterMargin float64 `toml:"center_margin"`
	Pull         float64 `toml:"pull"`
	Jitter       float64 `toml:"jitter"`
	Seed         uint64  `toml:"seed"`
}

// Gesture tunes pointer classification.
type Gesture struct {
	PinchEnabled       bool    `toml:"pinch_enabled"`
	TouchDragThreshold float64 `toml:"touch_drag_threshold"`
	ClickSlop          float64 `toml:"click_slop"`
	TapMaxMillis       int     `toml:"tap_max_millis"`
	ZoomMin            float64 `toml:"zoom_min"`
	ZoomMax            float64 `toml:"zoom_max"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	// Backend is one of "file", "redis", "none".
	Backend string `toml:"backend"`

	// Dir is the cache directory for the file backend.
	Dir string `toml:"dir"`

	// Addr, Password, DB configure the redis backend.
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Store selects and configures the snapshot store backend.
type Store struct {
	// Backend is one of "memory", "mongo".
	Backend string `toml:"backend"`

	// URI, Database, Collection configure the mongo backend.
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string `toml:"addr"`
	ReadTimeoutSec  int    `toml:"read_timeout_sec"`
	WriteTimeoutSec int    `toml:"write_timeout_sec"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Gesture: Gesture{PinchEnabled: true},
		Cache: Cache{
			Backend: "file",
			Dir:     defaultCacheDir(),
		},
		Store: Store{
			Backend:    "memory",
			Database:   "orbit",
			Collection: "snapshots",
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 30,
		},
	}
}

// Load reads a config file, layering it over the defaults.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TapMaxDuration converts the configured tap window.
func (g Gesture) TapMaxDuration() time.Duration {
	return time.Duration(g.TapMaxMillis) * time.Millisecond
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "", "memory", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Layout.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.iterations must be non-negative")
	}
	if c.Gesture.ZoomMin < 0 || (c.Gesture.ZoomMax != 0 && c.Gesture.ZoomMax < c.Gesture.ZoomMin) {
		return errors.New(errors.ErrCodeInvalidConfig, "gesture zoom bounds are inverted")
	}
	return nil
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".orbit-cache"
	}
	return dir + "/orbit"
}
