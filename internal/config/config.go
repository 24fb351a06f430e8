// Package config provides configuration types and defaults for intermix.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/intermix/internal/flags"
	"github.com/zjrosen/intermix/internal/log"
	"github.com/zjrosen/intermix/internal/tracing"
)

// Config holds all configuration options for intermix.
type Config struct {
	// Command is run when no command is given on the command line.
	Command string `mapstructure:"command"`
	// Term is the terminal type. Empty means $TERM, then dumb.
	Term  string `mapstructure:"term"`
	Rows  int    `mapstructure:"rows"`
	Cols  int    `mapstructure:"cols"`
	Shell string `mapstructure:"shell"` // interpreter for the command, default /bin/sh

	Poll         PollConfig         `mapstructure:"poll"`
	Log          LogConfig          `mapstructure:"log"`
	Capabilities CapabilitiesConfig `mapstructure:"capabilities"`
	Tracing      tracing.Config     `mapstructure:"tracing"`
	Flags        map[string]bool    `mapstructure:"flags"`
}

// PollConfig controls the run loop.
type PollConfig struct {
	// Interval is the pause between polls that found no output.
	Interval time.Duration `mapstructure:"interval"`

	// Timeout terminates the child after this long. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`

	// Grace is how long the loop keeps polling after a terminate before
	// giving up on the child.
	Grace time.Duration `mapstructure:"grace"`

	// ReadQuantum bounds the bytes read per poll.
	ReadQuantum int `mapstructure:"read_quantum"`
}

// LogConfig holds diagnostics settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`  // empty disables the log file
	Level string `mapstructure:"level"` // debug, info (default), warn, error
}

// CapabilitiesConfig holds capability database settings.
type CapabilitiesConfig struct {
	// CacheTTL is how long a resolved database is reused. Zero disables
	// the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Watch invalidates cached databases when terminfo directories change.
	Watch bool `mapstructure:"watch"`

	// Dirs overrides the terminfo search directories.
	Dirs []string `mapstructure:"dirs"`
}

// DefaultConfigPath returns the user-level config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "intermix", "config.yaml")
}

// DefaultTracesFilePath returns the default path for trace files.
// Returns empty string if home directory cannot be determined.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "intermix", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()
	return Config{
		Rows: 24,
		Cols: 80,
		Poll: PollConfig{
			Interval:    10 * time.Millisecond,
			Grace:       2 * time.Second,
			ReadQuantum: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
		Capabilities: CapabilitiesConfig{
			CacheTTL: 10 * time.Minute,
		},
		Tracing: tr,
		Flags:   flags.Defaults(),
	}
}

// Validate checks a loaded configuration.
func Validate(c Config) error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("rows and cols must be positive, got %dx%d", c.Rows, c.Cols)
	}
	if c.Shell != "" && !filepath.IsAbs(c.Shell) {
		return fmt.Errorf("shell must be an absolute path, got %q", c.Shell)
	}
	if err := ValidatePoll(c.Poll); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Capabilities.CacheTTL < 0 {
		return fmt.Errorf("capabilities.cache_ttl must not be negative, got %s", c.Capabilities.CacheTTL)
	}
	return ValidateTracing(c.Tracing)
}

// ValidatePoll checks the run loop settings.
func ValidatePoll(p PollConfig) error {
	if p.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", p.Interval)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("poll.timeout must not be negative, got %s", p.Timeout)
	}
	if p.Grace < 0 {
		return fmt.Errorf("poll.grace must not be negative, got %s", p.Grace)
	}
	if p.ReadQuantum < 1 {
		return fmt.Errorf("poll.read_quantum must be at least 1, got %d", p.ReadQuantum)
	}
	return nil
}

// ValidateTracing checks the tracing configuration.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}

	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# intermix configuration

# Command run when none is given on the command line
# command: "top -b -n 1"

# Terminal type; empty uses $TERM, then dumb
# term: xterm-256color

# Window size negotiated with the child before it runs
rows: 24
cols: 80

# Interpreter for the command (default: /bin/sh)
# shell: /bin/bash

# Run loop
poll:
  interval: 10ms    # Pause between polls that found no output
  # timeout: 30s    # Send SIGTERM after this long (default: none)
  grace: 2s         # Keep polling this long after SIGTERM
  read_quantum: 100 # Maximum bytes read per poll

# Diagnostics
log:
  # path: intermix.log  # Log file (default: none)
  level: info           # debug, info, warn or error

# Capability database
capabilities:
  cache_ttl: 10m      # Reuse resolved databases for this long (0 disables the cache)
  watch: false        # Drop cached databases when terminfo files change
  # dirs:             # Terminfo directories (default: $TERMINFO, ~/.terminfo, system dirs)
  #   - /usr/share/terminfo

# Distributed tracing of process runs
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/intermix/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
flags:
  builtin-terminfo: true    # Fall back to compiled-in terminal descriptions
  unhandled-summary: true   # Report unhandled sequences after a run
  transition-log: false     # Log every driver state transition
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string, sink log.Sink) error {
	if sink == nil {
		sink = log.Discard
	}
	sink.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		sink.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		sink.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	sink.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
