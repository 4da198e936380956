package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/complytrack/complytrack/internal/domain/schedule"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [frequency]",
		Short: "Run a generation pass",
		Long: "Run one generation pass for the given frequency class (hourly, daily,\n" +
			"weekly, monthly, quarterly, yearly), or every class when omitted.\n" +
			"Passes are idempotent; re-running a window creates nothing new.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := getCLIContext(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				freq := schedule.Frequency(args[0])
				if !freq.Recurring() {
					return fmt.Errorf("frequency %q is not a recurring class", args[0])
				}

				svc, err := openServices(ctx)
				if err != nil {
					return err
				}
				defer svc.Close()

				summary, err := svc.Generator.RunPass(cmd.Context(), freq)
				if err != nil {
					return err
				}
				return printResult(cmd, ctx, summary)
			}

			svc, err := openServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			return printResult(cmd, ctx, svc.Generator.RunAll(cmd.Context()))
		},
	}
}
