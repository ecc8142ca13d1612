package monitor

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

func newSweepCommand() *cobra.Command {
	var (
		noAlerts         bool
		thresholdMinutes int
		output           string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a health sweep now",
		Long: `Run one health sweep over the whole fleet, classifying silent devices
as offline and checking recent telemetry against thresholds.`,
		Example: `  msignctl monitor sweep
  msignctl monitor sweep --no-alerts --offline-threshold-minutes=15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			res, err := c.RunSweep(cmd.Context(), !noAlerts, thresholdMinutes)
			if err != nil {
				return fmt.Errorf("error running sweep: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), res)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "Checked:\t%d devices\n", res.TotalDevices)
			fmt.Fprintf(tw, "Online:\t%d\n", res.OnlineDevices)
			fmt.Fprintf(tw, "Offline:\t%d\n", res.OfflineDevices)
			fmt.Fprintf(tw, "Performance issues:\t%d\n", res.PerformanceIssues)
			fmt.Fprintf(tw, "Alerts created:\t%d\n", res.AlertsCreated)
			fmt.Fprintf(tw, "Alerts suppressed:\t%d\n", res.AlertsSuppressed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noAlerts, "no-alerts", false, "Classify only, do not create alerts")
	cmd.Flags().IntVar(&thresholdMinutes, "offline-threshold-minutes", 0, "Override the silence threshold for this run")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}
