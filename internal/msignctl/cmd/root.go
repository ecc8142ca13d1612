// Package cmd implements the Mesophy signage CLI commands
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/cmd/command"
	"github.com/mesophy/mesophy-signage/internal/msignctl/cmd/device"
	"github.com/mesophy/mesophy-signage/internal/msignctl/cmd/monitor"
	"github.com/mesophy/mesophy-signage/internal/msignctl/cmd/polling"
	"github.com/mesophy/mesophy-signage/internal/msignctl/cmd/schedule"
)

var rootCmd = &cobra.Command{
	Use:   "msignctl",
	Short: "Mesophy signage control tool",
	Long: `msignctl is a command line tool for managing Mesophy signage screens,
content schedules, polling cadence, and remote device commands.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable request tracing")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(device.NewCommand())
	rootCmd.AddCommand(command.NewCommand())
	rootCmd.AddCommand(schedule.NewCommand())
	rootCmd.AddCommand(polling.NewCommand())
	rootCmd.AddCommand(monitor.NewCommand())
}
