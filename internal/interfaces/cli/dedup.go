package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDedupCmd() *cobra.Command {
	var (
		listOnly bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Find and remove duplicate work records",
		Long: "Remove records that duplicate an identity tuple, keeping the earliest\n" +
			"created of each group.  --list reports groups without deleting;\n" +
			"--dry-run computes the exact deletion set without writing.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := getCLIContext(cmd)
			if err != nil {
				return err
			}

			svc, err := openServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			if listOnly {
				groups, err := svc.Cleanup.FindDuplicates(cmd.Context())
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					return printResult(cmd, ctx, "no duplicate records found")
				}
				for _, g := range groups {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records\n",
						g.Identity.String(), len(g.Records))
				}
				return nil
			}

			report, err := svc.Cleanup.RemoveDuplicates(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			return printResult(cmd, ctx, report)
		},
	}

	cmd.Flags().BoolVar(&listOnly, "list", false, "list duplicate groups without deleting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the deletion set without writing")

	return cmd
}
