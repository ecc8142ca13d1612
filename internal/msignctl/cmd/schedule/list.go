package schedule

import (
	"fmt"
	"strings"

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
		Short:   "List an organization's schedules",
		Example: `  msignctl schedule list --organization-id=9f0c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			schedules, err := c.ListSchedules(cmd.Context(), organizationID)
			if err != nil {
				return fmt.Errorf("error listing schedules: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), schedules)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "ID\tNAME\tPRIORITY\tWINDOW\tDATES\tACTIVE\n")
			for _, s := range schedules {
				dates := s.StartDate
				if s.EndDate != "" {
					dates += " to " + s.EndDate
				} else {
					dates += " onward"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s-%s %s\t%s\t%t\n",
					s.ID,
					s.Name,
					s.Priority,
					s.StartTime,
					s.EndTime,
					strings.Join(s.Weekdays, ","),
					dates,
					s.Active,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&organizationID, "organization-id", "", "Organization to list schedules for")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	cmd.MarkFlagRequired("organization-id")

	return cmd
}
