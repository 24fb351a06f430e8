package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment prefix for overrides, e.g. INTERMIX_POLL_INTERVAL.
const EnvPrefix = "INTERMIX"

// SetDefaults registers every default with v so that environment overrides
// and Unmarshal see the full key set even without a config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("command", d.Command)
	v.SetDefault("term", d.Term)
	v.SetDefault("rows", d.Rows)
	v.SetDefault("cols", d.Cols)
	v.SetDefault("shell", d.Shell)
	v.SetDefault("poll.interval", d.Poll.Interval)
	v.SetDefault("poll.timeout", d.Poll.Timeout)
	v.SetDefault("poll.grace", d.Poll.Grace)
	v.SetDefault("poll.read_quantum", d.Poll.ReadQuantum)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("capabilities.cache_ttl", d.Capabilities.CacheTTL)
	v.SetDefault("capabilities.watch", d.Capabilities.Watch)
	v.SetDefault("capabilities.dirs", d.Capabilities.Dirs)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	for name, on := range d.Flags {
		v.SetDefault("flags."+name, on)
	}
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
