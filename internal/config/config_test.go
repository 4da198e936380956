package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultTimeZone, cfg.Engine.TimeZone)
	assert.Equal(t, 15*time.Minute, cfg.Engine.Cadence.Hourly)
	assert.Equal(t, 24*time.Hour, cfg.Engine.Cadence.Yearly)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)

	// Explicit configuration always wins.
	cfg = &Config{Engine: EngineConfig{TimeZone: "UTC"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "UTC", cfg.Engine.TimeZone)

	ApplyDefaults(nil) // must not panic
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad mode", func(c *Config) { c.Server.Mode = "turbo" }},
		{"no db host", func(c *Config) { c.Database.Host = "" }},
		{"no db name", func(c *Config) { c.Database.DBName = "" }},
		{"redis enabled without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
		{"bad time zone", func(c *Config) { c.Engine.TimeZone = "Mars/Olympus" }},
		{"zero cadence", func(c *Config) { c.Engine.Cadence.Daily = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "engine",
		Password: "secret", DBName: "timeline", SSLMode: "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=engine password=secret dbname=timeline sslmode=require",
		db.DSN())
}

func TestEngineLocation(t *testing.T) {
	loc, err := EngineConfig{TimeZone: "Asia/Kolkata"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
  mode: debug
database:
  host: pg.internal
engine:
  time_zone: UTC
  cadence:
    daily: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("COMPLY_DATABASE_PORT", "5433")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port, "env override must win over defaults")
	assert.Equal(t, "UTC", cfg.Engine.TimeZone)
	assert.Equal(t, 30*time.Minute, cfg.Engine.Cadence.Daily)
	// Unset sections still get defaults.
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: turbo\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COMPLY_ENGINE_TIME_ZONE", "UTC")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Engine.TimeZone)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}
