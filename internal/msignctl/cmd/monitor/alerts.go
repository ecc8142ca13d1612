package monitor

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

func newAlertsCommand() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:     "alerts",
		Short:   "List recent alerts",
		Example: `  msignctl monitor alerts --limit=20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			alerts, err := c.ListAlerts(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("error listing alerts: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), alerts)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "CREATED\tSCREEN\tTYPE\tSEVERITY\tMESSAGE\n")
			for _, a := range alerts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					a.CreatedAt.Format("2006-01-02 15:04:05"),
					a.ScreenID,
					a.Type,
					a.Severity,
					a.Message,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum alerts to show")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}
