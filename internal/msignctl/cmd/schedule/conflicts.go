package schedule

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

func newConflictsCommand() *cobra.Command {
	var (
		flags  scheduleFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Check a candidate schedule for conflicts",
		Long: `Run the advisory conflict check on a candidate schedule without saving
it. Conflicts never block creation; precedence decides at resolution time.`,
		Example: `  msignctl schedule conflicts --organization-id=9f0c... --name="Night promo" \
    --playlist-id=8bb2... --start-date=2026-09-01 \
    --start-time=22:00 --end-time=06:00 --device=lobby-north-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			report, err := c.CheckScheduleConflicts(cmd.Context(), flags.toSchedule())
			if err != nil {
				return fmt.Errorf("error checking conflicts: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), report)
			}

			out := cmd.OutOrStdout()
			if !report.HasConflicts {
				fmt.Fprintln(out, "No conflicts")
				return nil
			}

			for _, sc := range report.Screens {
				fmt.Fprintf(out, "Screen %s:\n", sc.DeviceID)
				for _, s := range sc.Conflicts {
					fmt.Fprintf(out, "  %s (priority %d, %s-%s)\n",
						s.Name, s.Priority, s.StartTime, s.EndTime)
				}
			}
			if len(report.Global) > 0 {
				fmt.Fprintln(out, "Organization-wide:")
				for _, s := range report.Global {
					fmt.Fprintf(out, "  %s (priority %d, %s-%s)\n",
						s.Name, s.Priority, s.StartTime, s.EndTime)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}
