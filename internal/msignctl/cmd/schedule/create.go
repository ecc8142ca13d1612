package schedule

import (
	"fmt"

	"github.com/spf13/cobra"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
)

// scheduleFlags collects the flags that describe a candidate schedule.
// The create and conflicts commands accept the same shape.
type scheduleFlags struct {
	organizationID    string
	name              string
	playlistID        string
	targetDeviceID    string
	targetDeviceTypes []string
	targetLocationIDs []string
	startDate         string
	endDate           string
	startTime         string
	endTime           string
	weekdays          []string
	priority          int
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.organizationID, "organization-id", "", "Organization the schedule belongs to")
	cmd.Flags().StringVar(&f.name, "name", "", "Schedule name")
	cmd.Flags().StringVar(&f.playlistID, "playlist-id", "", "Playlist to show while the schedule is active")
	cmd.Flags().StringVar(&f.targetDeviceID, "device", "", "Target one screen by device id")
	cmd.Flags().StringSliceVar(&f.targetDeviceTypes, "device-types", nil, "Target screens by device type")
	cmd.Flags().StringSliceVar(&f.targetLocationIDs, "locations", nil, "Target screens by location id")
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "First active date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.endDate, "end-date", "", "Last active date, YYYY-MM-DD (open-ended when omitted)")
	cmd.Flags().StringVar(&f.startTime, "start-time", "", "Daily window start, HH:MM")
	cmd.Flags().StringVar(&f.endTime, "end-time", "", "Daily window end, HH:MM")
	cmd.Flags().StringSliceVar(&f.weekdays, "weekdays", nil, "Active weekdays, lowercase names (all days when omitted)")
	cmd.Flags().IntVar(&f.priority, "priority", 0, "Higher priority wins when schedules overlap")
	cmd.MarkFlagRequired("organization-id")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("playlist-id")
	cmd.MarkFlagRequired("start-date")
	cmd.MarkFlagRequired("start-time")
	cmd.MarkFlagRequired("end-time")
}

func (f *scheduleFlags) toSchedule() v1.Schedule {
	return v1.Schedule{
		OrganizationID:    f.organizationID,
		Name:              f.name,
		PlaylistID:        f.playlistID,
		TargetDeviceID:    f.targetDeviceID,
		TargetDeviceTypes: f.targetDeviceTypes,
		TargetLocationIDs: f.targetLocationIDs,
		StartDate:         f.startDate,
		EndDate:           f.endDate,
		StartTime:         f.startTime,
		EndTime:           f.endTime,
		Weekdays:          f.weekdays,
		Priority:          f.priority,
	}
}

func newCreateCommand() *cobra.Command {
	var flags scheduleFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schedule",
		Long: `Create a content schedule. The daily window may cross midnight, in
which case it covers the evening of one day and the morning of the next.`,
		Example: `  # Weekday business hours on every screen
  msignctl schedule create --organization-id=9f0c... --name="Business hours" \
    --playlist-id=7aa1... --start-date=2026-09-01 \
    --start-time=08:00 --end-time=18:00 \
    --weekdays=monday,tuesday,wednesday,thursday,friday

  # Overnight promo on lobby screens only
  msignctl schedule create --organization-id=9f0c... --name="Night promo" \
    --playlist-id=8bb2... --start-date=2026-09-01 --end-date=2026-09-30 \
    --start-time=22:00 --end-time=06:00 --locations=loc-lobby --priority=5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}

			created, err := c.CreateSchedule(cmd.Context(), flags.toSchedule())
			if err != nil {
				return fmt.Errorf("error creating schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created schedule %q (%s)\n", created.Name, created.ID)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
