package polling

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

func newListCommand() *cobra.Command {
	var (
		organizationID string
		output         string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List an organization's polling periods",
		Example: `  msignctl polling list --organization-id=9f0c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			periods, err := c.ListPollingPeriods(cmd.Context(), organizationID)
			if err != nil {
				return fmt.Errorf("error listing polling periods: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), periods)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "ID\tNAME\tWINDOW\tINTERVAL\tEMERGENCY\tPOSITION\n")
			for _, p := range periods {
				fmt.Fprintf(tw, "%s\t%s\t%s-%s\t%ds\t%t\t%d\n",
					p.ID,
					p.Name,
					p.StartTime,
					p.EndTime,
					p.IntervalSeconds,
					p.Emergency,
					p.Position,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&organizationID, "organization-id", "", "Organization to list periods for")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	cmd.MarkFlagRequired("organization-id")

	return cmd
}
