// Package config loads hatchtest settings.
//
// Precedence, lowest to highest: built-in defaults, hatchtest.yaml (or the
// file passed with --config), HATCHTEST_* environment variables, and flags
// that were set explicitly on the command line.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "hatchtest.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HATCHTEST_"
	// HomeEnv overrides the data directory (default ~/.hatchtest).
	HomeEnv = "HATCHTEST_HOME"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the resolved settings.
type Config struct {
	// Database is the path of the variables database.
	Database string `koanf:"database"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// Color is auto, always or never.
	Color string `koanf:"color"`
	// Substitute enables variable substitution after conversion.
	Substitute bool `koanf:"substitute"`
	// OutDir is where convert and watch write .cy.js files. Empty means
	// next to the script.
	OutDir string      `koanf:"out_dir"`
	Watch  WatchConfig `koanf:"watch"`

	// File is the config file that was loaded, empty if none.
	File string `koanf:"-"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Options controls Load.
type Options struct {
	// File is an explicit config file. It must exist.
	File string
	// Dir is searched for FileName when File is empty. Defaults to the
	// working directory.
	Dir string
	// Overrides are flag values keyed by config key. Only flags the user
	// set should be included.
	Overrides map[string]interface{}
}

// Defaults returns the built-in settings.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"database":       "",
		"log_level":      "warn",
		"color":          ColorAuto,
		"substitute":     true,
		"out_dir":        "",
		"watch.debounce": "300ms",
	}
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	cfgFile, err := findConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: HATCHTEST_LOG_LEVEL -> log_level,
	// HATCHTEST_WATCH_DEBOUNCE -> watch.debounce
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile

	if cfg.Database == "" {
		dir, err := DataDir()
		if err != nil {
			return nil, err
		}
		cfg.Database = filepath.Join(dir, "vars.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(opts Options) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return opts.File, nil
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	candidate := filepath.Join(dir, FileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "watch_"); ok {
		return "watch." + rest
	}
	return key
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q: want auto, always or never", c.Color)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("invalid watch.debounce %s: must be positive", c.Watch.Debounce)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// DataDir returns the hatchtest data directory, creating it if needed.
// Checks HATCHTEST_HOME first, falls back to ~/.hatchtest.
func DataDir() (string, error) {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".hatchtest")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return dir, nil
}
