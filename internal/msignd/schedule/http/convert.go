package http

import (
	"strings"
	"time"

	"github.com/google/uuid"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

const dateLayout = "2006-01-02"

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func toAPISchedule(s *schedule.Schedule) v1.Schedule {
	out := v1.Schedule{
		ID:                s.ID.String(),
		OrganizationID:    s.OrganizationID.String(),
		Name:              s.Name,
		PlaylistID:        s.PlaylistID.String(),
		TargetDeviceTypes: s.TargetDeviceTypes,
		StartDate:         s.StartDate.Format(dateLayout),
		StartTime:         s.StartTime.String(),
		EndTime:           s.EndTime.String(),
		Priority:          s.Priority,
		Active:            s.Active,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.TargetDeviceID != nil {
		out.TargetDeviceID = *s.TargetDeviceID
	}
	for _, id := range s.TargetLocationIDs {
		out.TargetLocationIDs = append(out.TargetLocationIDs, id.String())
	}
	if s.EndDate != nil {
		out.EndDate = s.EndDate.Format(dateLayout)
	}
	for _, d := range s.Weekdays.Days() {
		out.Weekdays = append(out.Weekdays, strings.ToLower(d.String()))
	}
	return out
}

func fromAPISchedule(in *v1.Schedule) (*schedule.Schedule, error) {
	const op = "fromAPISchedule"

	invalid := func(msg string) error {
		return errors.NewError("INVALID_INPUT", msg, op, errors.ErrInvalidInput)
	}

	// Schedules are born active; retirement goes through the deactivate
	// endpoint.
	out := &schedule.Schedule{
		Name:     in.Name,
		Priority: in.Priority,
		Active:   true,
	}

	if in.ID != "" {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, invalid("invalid schedule id")
		}
		out.ID = id
	} else {
		out.ID = uuid.New()
	}

	orgID, err := uuid.Parse(in.OrganizationID)
	if err != nil {
		return nil, invalid("invalid organization id")
	}
	out.OrganizationID = orgID

	playlistID, err := uuid.Parse(in.PlaylistID)
	if err != nil {
		return nil, invalid("invalid playlist id")
	}
	out.PlaylistID = playlistID

	if in.TargetDeviceID != "" {
		id := in.TargetDeviceID
		out.TargetDeviceID = &id
	}
	out.TargetDeviceTypes = in.TargetDeviceTypes
	for _, raw := range in.TargetLocationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalid("invalid target location id: " + raw)
		}
		out.TargetLocationIDs = append(out.TargetLocationIDs, id)
	}

	startDate, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return nil, invalid("invalid start_date, want YYYY-MM-DD")
	}
	out.StartDate = startDate
	if in.EndDate != "" {
		endDate, err := time.Parse(dateLayout, in.EndDate)
		if err != nil {
			return nil, invalid("invalid end_date, want YYYY-MM-DD")
		}
		out.EndDate = &endDate
	}

	startTime, err := schedule.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return nil, invalid("invalid start_time, want HH:MM")
	}
	out.StartTime = startTime
	endTime, err := schedule.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return nil, invalid("invalid end_time, want HH:MM")
	}
	out.EndTime = endTime

	// Omitted weekdays mean the schedule runs every day.
	if len(in.Weekdays) == 0 {
		out.Weekdays = schedule.AllWeek
	} else {
		var days []time.Weekday
		for _, name := range in.Weekdays {
			d, ok := weekdayNames[strings.ToLower(name)]
			if !ok {
				return nil, invalid("unknown weekday: " + name)
			}
			days = append(days, d)
		}
		out.Weekdays = schedule.NewWeekdaySet(days...)
	}

	now := time.Now()
	out.CreatedAt = now
	out.UpdatedAt = now
	return out, nil
}
