package device

import (
	"fmt"

	"github.com/spf13/cobra"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
)

func newPairCommand() *cobra.Command {
	var (
		organizationID string
		locationID     string
		name           string
		deviceType     string
	)

	cmd := &cobra.Command{
		Use:   "pair CODE",
		Short: "Pair a device by its displayed code",
		Long: `Claim the pairing code shown on a device's screen, registering the
device as a screen in the given organization. The device receives its
credential on its next exchange poll.`,
		Example: `  msignctl device pair MKXR-4PT2 --organization-id=9f0c... --name="Lobby North"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			screen, err := c.ActivatePairing(cmd.Context(), v1.PairingActivateRequest{
				Code:           args[0],
				OrganizationID: organizationID,
				LocationID:     locationID,
				Name:           name,
				DeviceType:     deviceType,
			})
			if err != nil {
				return fmt.Errorf("error activating pairing code: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Paired %q as screen %s\n", screen.Name, screen.DeviceID)
			return nil
		},
	}

	cmd.Flags().StringVar(&organizationID, "organization-id", "", "Organization the screen belongs to")
	cmd.Flags().StringVar(&locationID, "location-id", "", "Location to place the screen in")
	cmd.Flags().StringVar(&name, "name", "", "Display name for the screen")
	cmd.Flags().StringVar(&deviceType, "device-type", "", "Device type hint (raspberry-pi, android, browser)")
	cmd.MarkFlagRequired("organization-id")
	cmd.MarkFlagRequired("name")

	return cmd
}
