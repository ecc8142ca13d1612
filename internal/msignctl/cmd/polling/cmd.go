// Package polling implements poll cadence management commands
package polling

import (
	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/client"
	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

// NewCommand creates the polling command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "polling",
		Short: "Manage device poll cadence",
		Long: `Define when devices poll quickly and when they back off, per
organization. Overlapping periods are resolved by position order.`,
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newCurrentCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func getClient(cmd *cobra.Command) (*client.Client, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return util.GetClient(verbose)
}
