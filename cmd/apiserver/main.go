// The apiserver binary serves the admin HTTP surface without an embedded
// scheduler: manual passes, backfills, duplicate cleanup, and record queries.
// Deployments that run the scheduler daemon separately point operators here.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/complytrack/complytrack/internal/application/cleanup"
	"github.com/complytrack/complytrack/internal/application/generation"
	"github.com/complytrack/complytrack/internal/config"
	"github.com/complytrack/complytrack/internal/domain/assignment"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres/repositories"
	"github.com/complytrack/complytrack/internal/infrastructure/messaging/kafka"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/complytrack/complytrack/internal/interfaces/http"
	"github.com/complytrack/complytrack/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

// Version is injected via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
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

	if err := run(cfg, logger); err != nil {
		logger.Error("apiserver exited with error", logging.Err(err))
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

func run(cfg *config.Config, logger logging.Logger) error {
	loc, err := cfg.Engine.Location()
	if err != nil {
		return err
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

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		genOpts = append(genOpts, generation.WithPublisher(producer))
		cleanOpts = append(cleanOpts, cleanup.WithPublisher(producer))
	}

	generator := generation.NewGenerator(assignments, records,
		assignment.NewDefaultPolicy(), logger, genOpts...)
	cleaner := cleanup.NewService(records, logger, cleanOpts...)

	routerCfg := httpiface.RouterConfig{
		EngineHandler:   handlers.NewEngineHandler(generator, cleaner, nil),
		TimelineHandler: handlers.NewTimelineHandler(records),
		HealthHandler: handlers.NewHealthHandler(Version,
			handlers.Check{Name: "postgres", Probe: conn.HealthCheck}),
		Logger:      logger,
		Mode:        cfg.Server.Mode,
		MetricsPath: cfg.Metrics.Path,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = metrics.Handler()
	}

	server := httpiface.NewServer(cfg.Server, httpiface.NewRouter(routerCfg), logger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

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

	return server.Stop(context.Background())
}
