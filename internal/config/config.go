// Package config provides configuration loading and defaults for the
// sigrace runner.
//
// Configuration is loaded from a TOML file in the runner's data directory.
// Every value has a sensible default; unknown keys and out-of-range values
// produce warnings rather than hard failures, so an edited config never
// bricks the runner.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"tools.zach/dev/sigrace/internal/paths"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config is the root configuration for the runner.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Run     RunConfig     `toml:"run"`
	Fetch   FetchConfig   `toml:"fetch"`
	Watch   WatchConfig   `toml:"watch"`
	Control ControlConfig `toml:"control"`
}

// LogConfig controls the runner's log output.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `toml:"level"`
	// MaxSizeMB is the log file size that triggers rotation.
	MaxSizeMB int `toml:"max_size_mb"`
	// Console duplicates log output to stderr for foreground runs.
	Console bool `toml:"console"`
}

// RunConfig selects which steps the runner executes and in what order.
type RunConfig struct {
	// Steps is the ordered list of steps to run. Known steps: "fetch",
	// "watch", "sleep". Unknown names are rejected at startup.
	Steps []string `toml:"steps"`
	// SleepSeconds is the duration of the "sleep" step.
	SleepSeconds int `toml:"sleep_seconds"`
	// WriteReport enables writing report.json to the data directory after
	// the run.
	WriteReport bool `toml:"write_report"`
}

// FetchConfig configures the "fetch" step.
type FetchConfig struct {
	// URL is the resource downloaded by the fetch step.
	URL string `toml:"url"`
	// RetryMax is the number of retries after a failed attempt.
	RetryMax int `toml:"retry_max"`
	// TimeoutSeconds bounds each individual HTTP attempt.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// WatchConfig configures the "watch" step.
type WatchConfig struct {
	// Dir is the directory watched for file changes.
	Dir string `toml:"dir"`
	// Ignore holds doublestar glob patterns for paths whose changes are
	// not reported, relative to Dir (e.g. "**/*.tmp").
	Ignore []string `toml:"ignore"`
	// SettleMS is how long to wait after the first matching change before
	// reporting it, coalescing bursts of writes.
	SettleMS int `toml:"settle_ms"`
}

// ControlConfig configures the local control endpoint.
type ControlConfig struct {
	// Enabled starts the control endpoint (a Unix socket in the data
	// directory, or a named pipe on Windows) that accepts "stop" requests.
	Enabled bool `toml:"enabled"`
}

// ///////////////////////////////////////////////
// Defaults
// ///////////////////////////////////////////////

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 5,
			Console:   true,
		},
		Run: RunConfig{
			Steps:        []string{"sleep"},
			SleepSeconds: 5,
			WriteReport:  true,
		},
		Fetch: FetchConfig{
			RetryMax:       2,
			TimeoutSeconds: 10,
		},
		Watch: WatchConfig{
			Dir:      ".",
			Ignore:   []string{"**/.git/**", "**/*.tmp"},
			SettleMS: 200,
		},
		Control: ControlConfig{
			Enabled: true,
		},
	}
}

// DefaultTOML is the commented config written to the data directory on
// first run. It mirrors [Default].
const DefaultTOML = `# sigrace runner configuration

[log]
# Minimum log level: debug, info, warn, error.
level = "info"
# Rotate the log file once it exceeds this size.
max_size_mb = 5
# Also print log output to stderr.
console = true

[run]
# Ordered steps to execute: "fetch", "watch", "sleep".
# Each step is raced against Ctrl+C independently.
steps = ["sleep"]
# Duration of the "sleep" step.
sleep_seconds = 5
# Write report.json to the data directory after the run.
write_report = true

[fetch]
# Resource downloaded by the "fetch" step.
url = ""
# Retries after a failed attempt.
retry_max = 2
# Timeout per HTTP attempt, in seconds.
timeout_seconds = 10

[watch]
# Directory watched by the "watch" step.
dir = "."
# Changes under paths matching these globs are not reported.
ignore = ["**/.git/**", "**/*.tmp"]
# Wait this long after the first change before reporting, coalescing bursts.
settle_ms = 200

[control]
# Local endpoint accepting "stop" requests (Unix socket / named pipe).
enabled = true
`

// ///////////////////////////////////////////////
// Loading
// ///////////////////////////////////////////////

// Load reads config.toml from the data directory rooted at dir, applying
// defaults for missing values. A missing file yields the defaults. Unknown
// keys and out-of-range values are logged and corrected, not fatal; only an
// unreadable or syntactically invalid file is an error.
func Load(dir string) (*Config, error) {
	cfg := Default()
	path := paths.DataDir{Root: dir}.Config()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key ignored", "key", key.String())
	}

	cfg.validate()
	return cfg, nil
}

// validate clamps out-of-range values and drops invalid patterns, warning
// about each correction.
func (c *Config) validate() {
	if c.Log.MaxSizeMB < 1 {
		slog.Warn("log.max_size_mb below minimum, using 1", "value", c.Log.MaxSizeMB)
		c.Log.MaxSizeMB = 1
	}
	if c.Run.SleepSeconds < 0 {
		slog.Warn("run.sleep_seconds negative, using 0", "value", c.Run.SleepSeconds)
		c.Run.SleepSeconds = 0
	}
	if c.Fetch.RetryMax < 0 || c.Fetch.RetryMax > 10 {
		slog.Warn("fetch.retry_max out of range, using 2", "value", c.Fetch.RetryMax)
		c.Fetch.RetryMax = 2
	}
	if c.Fetch.TimeoutSeconds < 1 {
		slog.Warn("fetch.timeout_seconds below minimum, using 10", "value", c.Fetch.TimeoutSeconds)
		c.Fetch.TimeoutSeconds = 10
	}
	if c.Watch.SettleMS < 0 {
		slog.Warn("watch.settle_ms negative, using 0", "value", c.Watch.SettleMS)
		c.Watch.SettleMS = 0
	}

	valid := c.Watch.Ignore[:0]
	for _, pattern := range c.Watch.Ignore {
		if doublestar.ValidatePattern(pattern) {
			valid = append(valid, pattern)
			continue
		}
		slog.Warn("invalid watch.ignore pattern dropped", "pattern", pattern)
	}
	c.Watch.Ignore = valid
}
