// Package monitor implements fleet health commands
package monitor

import (
	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/client"
	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

// NewCommand creates the monitor command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Fleet health checks and alerts",
	}

	cmd.AddCommand(newSweepCommand())
	cmd.AddCommand(newAlertsCommand())

	return cmd
}

func getClient(cmd *cobra.Command) (*client.Client, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return util.GetClient(verbose)
}
