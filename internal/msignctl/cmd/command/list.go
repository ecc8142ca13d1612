package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

func newListCommand() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list DEVICE_ID",
		Short: "List a screen's recent commands",
		Long:  `List a screen's commands, newest first, including their delivery status.`,
		Example: `  msignctl command list lobby-north-01
  msignctl command list lobby-north-01 --limit=10 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			commands, err := c.ListCommands(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("error listing commands: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), commands)
			}

			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()

			fmt.Fprintf(tw, "ID\tTYPE\tPRIORITY\tSTATUS\tCREATED\tERROR\n")
			for _, c := range commands {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
					c.ID,
					c.Type,
					c.Priority,
					c.Status,
					c.CreatedAt.Format("2006-01-02 15:04:05"),
					c.ErrorMessage,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum commands to show")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}
