package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/intermix/internal/flags"
	"github.com/zjrosen/intermix/internal/log"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	assert.Equal(t, 24, d.Rows)
	assert.Equal(t, 80, d.Cols)
	assert.Equal(t, 10*time.Millisecond, d.Poll.Interval)
	assert.Equal(t, 2*time.Second, d.Poll.Grace)
	assert.Zero(t, d.Poll.Timeout)
	assert.Equal(t, 100, d.Poll.ReadQuantum)
	assert.Equal(t, "info", d.Log.Level)
	assert.Equal(t, 10*time.Minute, d.Capabilities.CacheTTL)
	assert.False(t, d.Tracing.Enabled)
	assert.Equal(t, "file", d.Tracing.Exporter)
	require.NoError(t, Validate(d))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero rows", func(c *Config) { c.Rows = 0 }, "rows and cols must be positive"},
		{"negative cols", func(c *Config) { c.Cols = -1 }, "rows and cols must be positive"},
		{"relative shell", func(c *Config) { c.Shell = "bash" }, "shell must be an absolute path"},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }, "poll.interval"},
		{"negative timeout", func(c *Config) { c.Poll.Timeout = -time.Second }, "poll.timeout"},
		{"negative grace", func(c *Config) { c.Poll.Grace = -time.Second }, "poll.grace"},
		{"zero quantum", func(c *Config) { c.Poll.ReadQuantum = 0 }, "poll.read_quantum"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"negative ttl", func(c *Config) { c.Capabilities.CacheTTL = -time.Minute }, "capabilities.cache_ttl"},
		{"bad sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate"},
		{"bad exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, "tracing.exporter"},
		{"file exporter without path", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.FilePath = ""
		}, "tracing.file_path"},
		{"otlp without endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
			c.Tracing.OTLPEndpoint = ""
		}, "tracing.otlp_endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			err := Validate(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AcceptsAbsoluteShellAndTimeout(t *testing.T) {
	c := Defaults()
	c.Shell = "/bin/bash"
	c.Poll.Timeout = 30 * time.Second
	require.NoError(t, Validate(c))
}

func TestLoad_DefaultsOnly(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	want := Defaults()
	assert.Equal(t, want.Rows, cfg.Rows)
	assert.Equal(t, want.Poll, cfg.Poll)
	assert.Equal(t, want.Tracing, cfg.Tracing)
	assert.Equal(t, want.Flags, cfg.Flags)
}

func TestLoad_TemplateMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path, nil))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	want := Defaults()
	assert.Equal(t, want.Rows, cfg.Rows)
	assert.Equal(t, want.Cols, cfg.Cols)
	assert.Equal(t, want.Poll, cfg.Poll)
	assert.Equal(t, want.Log, cfg.Log)
	assert.Equal(t, want.Capabilities.CacheTTL, cfg.Capabilities.CacheTTL)
	assert.Empty(t, cfg.Capabilities.Dirs)
	assert.Equal(t, want.Tracing, cfg.Tracing)
	assert.Equal(t, want.Flags, cfg.Flags)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `command: "vim -u NONE"
rows: 40
poll:
  interval: 50ms
  timeout: 1m
log:
  level: debug
flags:
  transition-log: true
capabilities:
  dirs:
    - /opt/terminfo
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "vim -u NONE", cfg.Command)
	assert.Equal(t, 40, cfg.Rows)
	assert.Equal(t, 80, cfg.Cols, "unset keys keep defaults")
	assert.Equal(t, 50*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, time.Minute, cfg.Poll.Timeout)
	assert.Equal(t, 100, cfg.Poll.ReadQuantum)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"/opt/terminfo"}, cfg.Capabilities.Dirs)
	assert.True(t, cfg.Flags[flags.FlagBuiltinTerminfo], "flag defaults survive a partial file")
	assert.True(t, cfg.Flags[flags.FlagTransitionLog])
}

func TestLoad_RejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("poll.read_quantum", 0)

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestWriteDefaultConfig_CreatesParentDirs(t *testing.T) {
	rec := log.NewRecorder()
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path, rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate(), string(data))
	assert.Len(t, rec.Filter(log.LevelInfo, log.CatConfig), 1)
}

func TestWriteDefaultConfig_ReportsFailure(t *testing.T) {
	rec := log.NewRecorder()
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := WriteDefaultConfig(filepath.Join(blocker, "config.yaml"), rec)

	require.Error(t, err)
	assert.Len(t, rec.Filter(log.LevelError, log.CatConfig), 1)
}
