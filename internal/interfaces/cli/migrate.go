package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := getCLIContext(cmd)
			if err != nil {
				return err
			}
			db := ctx.Config.Database
			if err := postgres.RollbackMigrations(db.URL(), db.MigrationPath, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d step(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, err := getCLIContext(cmd)
				if err != nil {
					return err
				}
				db := ctx.Config.Database
				if err := postgres.RunMigrations(db.URL(), db.MigrationPath); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Report the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, err := getCLIContext(cmd)
				if err != nil {
					return err
				}
				db := ctx.Config.Database
				version, dirty, err := postgres.MigrationStatus(db.URL(), db.MigrationPath)
				if err != nil {
					return err
				}
				if version == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}
