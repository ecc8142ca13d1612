package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExpireCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Fail commands stuck in executing",
		Long: `Fail every executing command fleet-wide that has outlived its timeout.
The server has no built-in timer for this; run it from cron or whenever a
device appears wedged.`,
		Example: `  msignctl command expire`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			expired, err := c.ExpireCommands(cmd.Context())
			if err != nil {
				return fmt.Errorf("error expiring commands: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Expired %d command(s)\n", expired)
			return nil
		},
	}
}
