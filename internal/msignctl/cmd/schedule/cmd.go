// Package schedule implements content schedule management commands
package schedule

import (
	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/client"
	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

// NewCommand creates the schedule command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule",
		Aliases: []string{"schedules", "sched"},
		Short:   "Manage content schedules",
		Long: `Create schedules, list them, resolve what a screen should be showing,
and check candidates for conflicts before saving them.`,
	}

	cmd.AddCommand(newCreateCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newConflictsCommand())
	cmd.AddCommand(newDeactivateCommand())

	return cmd
}

func getClient(cmd *cobra.Command) (*client.Client, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return util.GetClient(verbose)
}
