package config

import "time"

// Well-known defaults.  Explicit configuration always wins.
const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost  = "localhost"
	DefaultDBPort  = 5432
	DefaultDBUser  = "complytrack"
	DefaultDBName  = "complytrack"
	DefaultSSLMode = "disable"

	DefaultMigrationPath = "migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "complytrack:"

	DefaultKafkaBroker   = "localhost:9092"
	DefaultKafkaClientID = "complytrack-engine"

	DefaultMetricsPath = "/metrics"

	// DefaultTimeZone is the business civil zone every generation pass and
	// trigger runs in.
	DefaultTimeZone = "Asia/Kolkata"
)

// ApplyDefaults fills every zero-value field in cfg with the platform
// default.  Must run after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultSSLMode
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultMigrationPath
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.RequiredAcks == 0 {
		cfg.Kafka.RequiredAcks = -1 // all in-sync replicas
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Engine.TimeZone == "" {
		cfg.Engine.TimeZone = DefaultTimeZone
	}

	// Pass cadences.  Each pass is idempotent, so short cadences only cost
	// store round-trips; slow classes still run often enough to pick up
	// configuration changes the same day.
	if cfg.Engine.Cadence.Hourly == 0 {
		cfg.Engine.Cadence.Hourly = 15 * time.Minute
	}
	if cfg.Engine.Cadence.Daily == 0 {
		cfg.Engine.Cadence.Daily = time.Hour
	}
	if cfg.Engine.Cadence.Weekly == 0 {
		cfg.Engine.Cadence.Weekly = 6 * time.Hour
	}
	if cfg.Engine.Cadence.Monthly == 0 {
		cfg.Engine.Cadence.Monthly = 12 * time.Hour
	}
	if cfg.Engine.Cadence.Quarterly == 0 {
		cfg.Engine.Cadence.Quarterly = 24 * time.Hour
	}
	if cfg.Engine.Cadence.Yearly == 0 {
		cfg.Engine.Cadence.Yearly = 24 * time.Hour
	}
}
