package device

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/client"
	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

func newListCommand() *cobra.Command {
	var (
		organizationID string
		status         string
		deviceType     string
		output         string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List screens",
		Long: `List registered screens, optionally filtered by organization, status,
or device type. Output is a table by default, or JSON with -o json.`,
		Example: `  # List all screens
  msignctl device list

  # List offline screens in one organization
  msignctl device list --organization-id=9f0c... --status=offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			screens, err := c.ListScreens(cmd.Context(), client.ScreenFilter{
				OrganizationID: organizationID,
				Status:         status,
				DeviceType:     deviceType,
			})
			if err != nil {
				return fmt.Errorf("error listing screens: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), screens)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "DEVICE ID\tNAME\tTYPE\tSTATUS\tLAST SEEN\n")
			for _, s := range screens {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					s.DeviceID,
					s.Name,
					s.DeviceType,
					s.Status,
					util.FormatAgo(s.LastSeen),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&organizationID, "organization-id", "", "Filter by organization")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (online, offline, error, maintenance)")
	cmd.Flags().StringVar(&deviceType, "device-type", "", "Filter by device type")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}
