package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackfillCmd() *cobra.Command {
	var (
		startYear int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Generate a full financial year of records",
		Long: "Generate every period of the given financial year for all active\n" +
			"assignments.  The year is named by its starting calendar year,\n" +
			"e.g. --year 2024 for 2024-25.  With --dry-run the command reports\n" +
			"what it would create without writing.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := getCLIContext(cmd)
			if err != nil {
				return err
			}
			if startYear < 1900 || startYear > 9999 {
				return fmt.Errorf("--year %d out of range", startYear)
			}

			svc, err := openServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			summary, err := svc.Generator.Backfill(cmd.Context(), startYear, dryRun)
			if err != nil {
				return err
			}
			return printResult(cmd, ctx, summary)
		},
	}

	cmd.Flags().IntVar(&startYear, "year", 0, "financial year start, e.g. 2024 for 2024-25 [REQUIRED]")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the plan without writing")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}
