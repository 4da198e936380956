// The scheduler daemon runs the recurring generation passes: one trigger per
// frequency class, each on its configured cadence, all anchored to the
// business time zone.  It exposes the admin HTTP surface so operators can
// fire passes, backfill years, and clean duplicates against the same process
// that owns the trigger guard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/complytrack/complytrack/internal/application/cleanup"
	"github.com/complytrack/complytrack/internal/application/generation"
	"github.com/complytrack/complytrack/internal/config"
	"github.com/complytrack/complytrack/internal/domain/assignment"
	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres/repositories"
	redisinfra "github.com/complytrack/complytrack/internal/infrastructure/database/redis"
	"github.com/complytrack/complytrack/internal/infrastructure/messaging/kafka"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/complytrack/complytrack/internal/interfaces/http"
	"github.com/complytrack/complytrack/internal/interfaces/http/handlers"
	"github.com/complytrack/complytrack/internal/scheduler"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	migrateOnStart := flag.Bool("migrate", false, "apply pending migrations before starting")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	watchConfig(*configPath, logger)

	if err := run(cfg, logger, *migrateOnStart); err != nil {
		logger.Error("scheduler exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// watchConfig hot-reloads the log level when the config file changes on
// disk.  Everything else keeps its boot-time value until restart.
func watchConfig(path string, logger logging.Logger) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	config.Watch(path, func(next *config.Config) {
		if logging.SetLevel(logger, next.Log.Level) {
			logger.Info("log level reloaded", logging.String("level", next.Log.Level))
		}
	})
}

func run(cfg *config.Config, logger logging.Logger, migrateOnStart bool) error {
	loc, err := cfg.Engine.Location()
	if err != nil {
		return err
	}

	if migrateOnStart {
		if err := postgres.RunMigrations(cfg.Database.URL(), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
		logger.Info("schema is up to date")
	}

	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer conn.Close()

	records := repositories.NewPostgresTimelineRepo(conn, logger)
	assignments := repositories.NewPostgresAssignmentRepo(conn, logger)
	metrics := prometheus.NewEngineMetrics()

	genOpts := []generation.Option{
		generation.WithLocation(loc),
		generation.WithMetrics(metrics),
	}
	cleanOpts := []cleanup.Option{cleanup.WithMetrics(metrics)}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		genOpts = append(genOpts, generation.WithPublisher(producer))
		cleanOpts = append(cleanOpts, cleanup.WithPublisher(producer))
	}

	generator := generation.NewGenerator(assignments, records,
		assignment.NewDefaultPolicy(), logger, genOpts...)
	cleaner := cleanup.NewService(records, logger, cleanOpts...)

	var schedOpts []scheduler.Option
	var redisClient *redisinfra.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisClient.Close()
		schedOpts = append(schedOpts, scheduler.WithLocker(
			redisinfra.NewTriggerLock(redisClient, logger)))
	}

	sched := scheduler.New(loc, logger, schedOpts...)
	for freq, interval := range map[schedule.Frequency]time.Duration{
		schedule.FrequencyHourly:    cfg.Engine.Cadence.Hourly,
		schedule.FrequencyDaily:     cfg.Engine.Cadence.Daily,
		schedule.FrequencyWeekly:    cfg.Engine.Cadence.Weekly,
		schedule.FrequencyMonthly:   cfg.Engine.Cadence.Monthly,
		schedule.FrequencyQuarterly: cfg.Engine.Cadence.Quarterly,
		schedule.FrequencyYearly:    cfg.Engine.Cadence.Yearly,
	} {
		f := freq
		if err := sched.Register(string(f), interval, func(ctx context.Context) error {
			_, err := generator.RunPass(ctx, f)
			return err
		}); err != nil {
			return err
		}
	}
	// The scan trigger only reports; destructive cleanup stays a manual call.
	if err := sched.Register("duplicate-scan", 24*time.Hour, func(ctx context.Context) error {
		_, err := cleaner.FindDuplicates(ctx)
		return err
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	checks := []handlers.Check{{Name: "postgres", Probe: conn.HealthCheck}}
	if redisClient != nil {
		checks = append(checks, handlers.Check{Name: "redis", Probe: redisClient.HealthCheck})
	}

	routerCfg := httpiface.RouterConfig{
		EngineHandler:   handlers.NewEngineHandler(generator, cleaner, sched),
		TimelineHandler: handlers.NewTimelineHandler(records),
		HealthHandler:   handlers.NewHealthHandler(version(), checks...),
		Logger:          logger,
		Mode:            cfg.Server.Mode,
		MetricsPath:     cfg.Metrics.Path,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = metrics.Handler()
	}

	server := httpiface.NewServer(cfg.Server, httpiface.NewRouter(routerCfg), logger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	logger.Info("scheduler running",
		logging.String("zone", cfg.Engine.TimeZone),
		logging.String("addr", cfg.Server.Addr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	if err := server.Stop(context.Background()); err != nil {
		logger.Warn("http server shutdown error", logging.Err(err))
	}
	return nil
}

// Version is injected via ldflags.
var Version = "dev"

func version() string { return Version }
