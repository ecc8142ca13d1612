package schedule

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

func newResolveCommand() *cobra.Command {
	var (
		at     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "resolve DEVICE_ID",
		Short: "Resolve what a screen should be showing",
		Long: `Resolve a screen's schedules at an instant, showing the winner and
every matching schedule in precedence order. Defaults to now.`,
		Example: `  msignctl schedule resolve lobby-north-01
  msignctl schedule resolve lobby-north-01 --at=2026-09-05T21:30:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var instant time.Time
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value, want RFC 3339: %w", err)
				}
				instant = parsed
			}

			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			res, err := c.ResolveSchedule(cmd.Context(), args[0], instant)
			if err != nil {
				return fmt.Errorf("error resolving schedule: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Resolved at %s\n", res.ResolvedAt.Format(time.RFC3339))
			if res.Winner == nil {
				fmt.Fprintln(out, "Nothing scheduled")
				return nil
			}
			fmt.Fprintf(out, "Winner: %s (priority %d, playlist %s)\n",
				res.Winner.Name, res.Winner.Priority, res.Winner.PlaylistID)

			if len(res.Active) > 1 {
				fmt.Fprintln(out, "\nAlso matching:")
				for _, s := range res.Active[1:] {
					fmt.Fprintf(out, "  %s (priority %d)\n", s.Name, s.Priority)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Instant to resolve at, RFC 3339 (default now)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}
