package polling

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCurrentCommand() *cobra.Command {
	var organizationID string

	cmd := &cobra.Command{
		Use:     "current",
		Short:   "Show the cadence in force right now",
		Example: `  msignctl polling current --organization-id=9f0c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			interval, err := c.CurrentPollingInterval(cmd.Context(), organizationID)
			if err != nil {
				return fmt.Errorf("error getting polling interval: %w", err)
			}

			out := cmd.OutOrStdout()
			if interval.PeriodName != "" {
				fmt.Fprintf(out, "Every %ds (%s)", interval.IntervalSeconds, interval.PeriodName)
			} else {
				fmt.Fprintf(out, "Every %ds (default)", interval.IntervalSeconds)
			}
			if interval.Emergency {
				fmt.Fprint(out, " EMERGENCY")
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&organizationID, "organization-id", "", "Organization to check")
	cmd.MarkFlagRequired("organization-id")

	return cmd
}
