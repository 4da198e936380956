package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every engine setting.
const envPrefix = "COMPLY"

// newViper builds a pre-configured Viper instance: YAML file type, COMPLY_
// env prefix, automatic env binding, and a key replacer mapping "." → "_"
// so nested keys like "database.host" resolve to "COMPLY_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only surfaces keys viper already knows about through
	// Unmarshal, so every overridable key is bound explicitly.
	for _, key := range []string{
		"server.host", "server.port", "server.mode",
		"server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
		"database.host", "database.port", "database.user", "database.password",
		"database.db_name", "database.ssl_mode", "database.max_open_conns",
		"database.max_idle_conns", "database.conn_max_lifetime", "database.migration_path",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
		"redis.key_prefix", "redis.enabled",
		"kafka.brokers", "kafka.client_id", "kafka.batch_size",
		"kafka.batch_timeout", "kafka.write_timeout", "kafka.required_acks", "kafka.enabled",
		"log.level", "log.format", "log.output_paths", "log.error_output_paths",
		"metrics.enabled", "metrics.path",
		"engine.time_zone",
		"engine.cadence.hourly", "engine.cadence.daily", "engine.cadence.weekly",
		"engine.cadence.monthly", "engine.cadence.quarterly", "engine.cadence.yearly",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges COMPLY_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from COMPLY_* environment variables,
// with no config file required.  The preferred strategy for containerised
// deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk.  Intended for hot-reloading the
// safe subset of settings (log level, pass cadences); a change that fails to
// parse or validate is dropped without invoking the callback.  Non-blocking.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}
