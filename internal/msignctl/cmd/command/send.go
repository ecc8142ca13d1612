package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
)

func newSendCommand() *cobra.Command {
	var (
		cmdType        string
		payloadJSON    string
		priority       int
		timeoutSeconds int
	)

	cmd := &cobra.Command{
		Use:   "send DEVICE_ID",
		Short: "Send a command to a screen",
		Long: `Enqueue a remote command for a screen. The device picks it up on its
next command poll and reports the outcome when done.`,
		Example: `  # Ask a screen to reload its content
  msignctl command send lobby-north-01 --type=refresh_content

  # Reboot with a higher priority and a custom payload
  msignctl command send lobby-north-01 --type=restart --priority=10 \
    --payload='{"delay_seconds": 30}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload map[string]interface{}
			if payloadJSON != "" {
				if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
					return fmt.Errorf("invalid payload JSON: %w", err)
				}
			}

			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			created, err := c.EnqueueCommand(cmd.Context(), args[0], v1.CommandEnqueueRequest{
				Type:           cmdType,
				Payload:        payload,
				Priority:       priority,
				TimeoutSeconds: timeoutSeconds,
			})
			if err != nil {
				return fmt.Errorf("error sending command: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Queued %s command %s for %s\n",
				created.Type, created.ID, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&cmdType, "type", "", "Command type (restart, refresh_content, update_app, screenshot, clear_cache, diagnostics)")
	cmd.Flags().StringVar(&payloadJSON, "payload", "", "Command payload as a JSON object")
	cmd.Flags().IntVar(&priority, "priority", 0, "Higher priority commands are delivered first")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Seconds before an unfinished command times out")
	cmd.MarkFlagRequired("type")

	return cmd
}
