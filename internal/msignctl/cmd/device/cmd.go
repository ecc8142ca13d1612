// Package device implements screen management commands
package device

import (
	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/client"
	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

// NewCommand creates the device command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "device",
		Aliases: []string{"devices", "screen"},
		Short:   "Manage screens",
		Long:    `List registered screens, inspect their status, and pair new devices.`,
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newPairCommand())

	return cmd
}

func getClient(cmd *cobra.Command) (*client.Client, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return util.GetClient(verbose)
}
