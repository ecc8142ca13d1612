package device

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

func newGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get DEVICE_ID",
		Short: "Show one screen",
		Long:  `Show a single screen by its device id or record id.`,
		Example: `  msignctl device get lobby-north-01
  msignctl device get lobby-north-01 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			screen, err := c.GetScreen(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error getting screen: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), screen)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "Device ID:\t%s\n", screen.DeviceID)
			fmt.Fprintf(tw, "Name:\t%s\n", screen.Name)
			fmt.Fprintf(tw, "Organization:\t%s\n", screen.OrganizationID)
			if screen.LocationID != "" {
				fmt.Fprintf(tw, "Location:\t%s\n", screen.LocationID)
			}
			if screen.DeviceType != "" {
				fmt.Fprintf(tw, "Type:\t%s\n", screen.DeviceType)
			}
			fmt.Fprintf(tw, "Status:\t%s\n", screen.Status)
			fmt.Fprintf(tw, "Last seen:\t%s\n", util.FormatAgo(screen.LastSeen))
			fmt.Fprintf(tw, "Registered:\t%s\n", screen.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}
