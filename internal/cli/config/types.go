// Package config loads drizzleport settings.
//
// Values are layered from lowest to highest precedence: built-in defaults,
// drizzleport.yaml, DRIZZLEPORT_* environment variables and explicitly set
// command-line flags.
package config

import (
	"log/slog"
	"time"
)

// Config holds all CLI configuration options.
type Config struct {
	// Schema is the input schema file. Relative paths in the config file are
	// resolved against the config file's directory.
	Schema        string        `koanf:"schema"`
	Out           string        `koanf:"out"`
	Verbose       bool          `koanf:"verbose"`
	LogLevel      slog.Level    `koanf:"log_level"`
	OutputFormat  string        `koanf:"output"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
	Banner        bool          `koanf:"banner"`

	// ProjectRoot is the directory relative config paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultSchema        = "schema.prisma"
	DefaultOut           = "out.ts"
	DefaultLogLevel      = "info"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultWatchDebounce = 100 * time.Millisecond
	DefaultBanner        = true
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "DRIZZLEPORT_"

// ConfigFileNames are looked up, in order, when no --config is given.
var ConfigFileNames = []string{"drizzleport.yaml", "drizzleport.yml"}
