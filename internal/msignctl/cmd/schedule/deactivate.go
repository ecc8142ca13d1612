package schedule

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeactivateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deactivate SCHEDULE_ID",
		Short:   "Retire a schedule",
		Long:    `Deactivate a schedule so it no longer participates in resolution.`,
		Example: `  msignctl schedule deactivate 4c1d...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			if err := c.DeactivateSchedule(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error deactivating schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated schedule %s\n", args[0])
			return nil
		},
	}

	return cmd
}
