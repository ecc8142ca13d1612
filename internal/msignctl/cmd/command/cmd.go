// Package command implements remote command queue management
package command

import (
	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/client"
	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

// NewCommand creates the command queue command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "command",
		Aliases: []string{"commands", "cmd"},
		Short:   "Manage device commands",
		Long:    `Send remote commands to screens, inspect their outcomes, and cancel pending ones.`,
	}

	cmd.AddCommand(newSendCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newCancelCommand())
	cmd.AddCommand(newExpireCommand())

	return cmd
}

func getClient(cmd *cobra.Command) (*client.Client, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return util.GetClient(verbose)
}
