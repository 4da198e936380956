// Package cli implements complyctl, the operator command line of the engine.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/complytrack/complytrack/internal/application/cleanup"
	"github.com/complytrack/complytrack/internal/application/generation"
	"github.com/complytrack/complytrack/internal/config"
	"github.com/complytrack/complytrack/internal/domain/assignment"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres/repositories"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	JSONOutput bool
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config *config.Config
	Logger logging.Logger
	Opts   *RootOptions
}

// Services is the application surface CLI commands drive.  Commands receive
// it through openServices so tests can substitute in-memory stores.
type Services struct {
	Generator *generation.Generator
	Cleanup   *cleanup.Service
	Close     func()
}

// openServices wires the production services over Postgres.  Swapped out in
// tests.
var openServices = func(ctx *CLIContext) (*Services, error) {
	conn, err := postgres.NewConnection(ctx.Config.Database, ctx.Logger)
	if err != nil {
		return nil, err
	}

	loc, err := ctx.Config.Engine.Location()
	if err != nil {
		conn.Close()
		return nil, err
	}

	records := repositories.NewPostgresTimelineRepo(conn, ctx.Logger)
	assignments := repositories.NewPostgresAssignmentRepo(conn, ctx.Logger)

	return &Services{
		Generator: generation.NewGenerator(assignments, records,
			assignment.NewDefaultPolicy(), ctx.Logger,
			generation.WithLocation(loc)),
		Cleanup: cleanup.NewService(records, ctx.Logger),
		Close:   func() { _ = conn.Close() },
	}, nil
}

// NewRootCommand builds the complyctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "complyctl",
		Short: "ComplyTrack recurrence engine operator CLI",
		Long: "complyctl drives the ComplyTrack timeline engine from the command line:\n" +
			"manual generation passes, financial-year backfills, duplicate cleanup,\n" +
			"and schema migrations.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.JSONOutput, "json", false, "print results as JSON")

	cmd.AddCommand(
		newGenerateCmd(),
		newBackfillCmd(),
		newDedupCmd(),
		newMigrateCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            opts.LogLevel,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	cliCtx := &CLIContext{Config: cfg, Logger: logger, Opts: opts}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	for _, p := range []string{"./complytrack.yaml", "/etc/complytrack/config.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// getCLIContext extracts the CLIContext persistentPreRun stored.
func getCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	if cmd.Context() == nil {
		return nil, errors.InvalidState("command context is nil")
	}
	cliCtx, ok := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.InvalidState("CLI context not initialized")
	}
	return cliCtx, nil
}

// printResult writes data as JSON or plain text per the --json flag.
func printResult(cmd *cobra.Command, ctx *CLIContext, data interface{}) error {
	if ctx.Opts.JSONOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// Execute runs the command tree and reports failures on stderr.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}
