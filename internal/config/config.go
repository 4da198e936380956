// Package config provides configuration loading, defaults, and validation
// for the recurrence engine.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration tree.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ServerConfig holds the admin HTTP surface parameters.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr renders "host:port".
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL renders the URL form golang-migrate requires.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection parameters for the distributed
// trigger lock.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`

	// Enabled gates the distributed lock.  Single-instance deployments run
	// on the in-process guard alone.
	Enabled bool `mapstructure:"enabled"`
}

// KafkaConfig holds event producer parameters.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	ClientID     string        `mapstructure:"client_id"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`

	// Enabled gates event publishing entirely.
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// MetricsConfig holds the Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// CadenceConfig sets how often each frequency-class pass is triggered.  The
// cadence is the trigger interval, not the obligation's recurrence: the
// hourly pass may run every few minutes, idempotence makes the extra runs
// free.
type CadenceConfig struct {
	Hourly    time.Duration `mapstructure:"hourly"`
	Daily     time.Duration `mapstructure:"daily"`
	Weekly    time.Duration `mapstructure:"weekly"`
	Monthly   time.Duration `mapstructure:"monthly"`
	Quarterly time.Duration `mapstructure:"quarterly"`
	Yearly    time.Duration `mapstructure:"yearly"`
}

// EngineConfig holds the recurrence engine's own parameters.
type EngineConfig struct {
	// TimeZone is the fixed civil zone all date arithmetic runs in.
	TimeZone string `mapstructure:"time_zone"`

	Cadence CadenceConfig `mapstructure:"cadence"`
}

// Location resolves the configured business time zone.
func (c EngineConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid engine time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Validate performs semantic validation of the fully-populated Config.
// Call after ApplyDefaults so defaulted fields are never seen as missing.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: unknown server mode %q", c.Server.Mode)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("config: database host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database name is required")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis enabled but no address configured")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka enabled but no brokers configured")
	}
	if _, err := c.Engine.Location(); err != nil {
		return err
	}
	for name, d := range map[string]time.Duration{
		"hourly":    c.Engine.Cadence.Hourly,
		"daily":     c.Engine.Cadence.Daily,
		"weekly":    c.Engine.Cadence.Weekly,
		"monthly":   c.Engine.Cadence.Monthly,
		"quarterly": c.Engine.Cadence.Quarterly,
		"yearly":    c.Engine.Cadence.Yearly,
	} {
		if d <= 0 {
			return fmt.Errorf("config: engine cadence %s must be positive", name)
		}
	}
	return nil
}
