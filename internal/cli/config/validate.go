package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/drizzleport/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Schema) == "" {
		return fmt.Errorf("schema is required")
	}
	if strings.TrimSpace(c.Out) == "" {
		return fmt.Errorf("out is required")
	}
	if !output.OutputMode(strings.ToLower(c.OutputFormat)).Valid() {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.OutputFormat, joinModes())
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	return nil
}

// LogLevels are the accepted log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// ValidateLogLevel rejects anything but the names in LogLevels, ignoring case.
func ValidateLogLevel(level string) error {
	for _, l := range LogLevels {
		if strings.EqualFold(strings.TrimSpace(level), l) {
			return nil
		}
	}
	return fmt.Errorf("unknown log level %q (want one of %s)", level, strings.Join(LogLevels, ", "))
}

func joinModes() string {
	names := make([]string, len(output.Modes))
	for i, m := range output.Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
