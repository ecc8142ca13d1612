package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCancelCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "cancel DEVICE_ID [COMMAND_ID]",
		Short: "Cancel pending commands",
		Long: `Cancel a single pending command by id, or every pending command for a
screen with --all. Commands already claimed by the device are unaffected.`,
		Example: `  msignctl command cancel lobby-north-01 3f6b...
  msignctl command cancel lobby-north-01 --all`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 1 {
				return fmt.Errorf("--all takes no command id")
			}
			if !all && len(args) < 2 {
				return fmt.Errorf("command id required unless --all is given")
			}

			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			var cancelled int
			if all {
				cancelled, err = c.CancelAllCommands(cmd.Context(), args[0])
			} else {
				cancelled, err = c.CancelCommand(cmd.Context(), args[0], args[1])
			}
			if err != nil {
				return fmt.Errorf("error cancelling commands: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %d command(s)\n", cancelled)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Cancel every pending command for the screen")

	return cmd
}
