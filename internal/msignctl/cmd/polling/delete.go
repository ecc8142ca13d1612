package polling

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete PERIOD_ID",
		Short:   "Delete a polling period",
		Example: `  msignctl polling delete 5e2a...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			if err := c.DeletePollingPeriod(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error deleting polling period: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted polling period %s\n", args[0])
			return nil
		},
	}

	return cmd
}
