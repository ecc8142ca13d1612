// Package schedule implements recurring content-assignment rules and the
// logic that decides which rule a screen should obey at a given instant
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
)

// TimeOfDay is a minute offset from midnight, in the schedule's local day.
// Granularity is minutes; poll cadence is the real precision floor anyway.
type TimeOfDay int

// MinutesPerDay bounds valid TimeOfDay values
const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || h*60+m > MinutesPerDay {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// TimeOfDayFrom extracts the minute-of-day from a timestamp
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// String formats the time of day as "HH:MM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// WeekdaySet is a bitmask of active weekdays, bit 0 = Sunday
type WeekdaySet uint8

// AllWeek covers every weekday
const AllWeek WeekdaySet = 0x7f

// NewWeekdaySet builds a set from explicit weekdays
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, d := range days {
		set |= 1 << uint(d)
	}
	return set
}

// Contains reports whether the set includes d
func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// Intersects reports whether two sets share a weekday
func (s WeekdaySet) Intersects(other WeekdaySet) bool {
	return s&other&AllWeek != 0
}

// IsEmpty reports whether the set has no weekdays
func (s WeekdaySet) IsEmpty() bool {
	return s&AllWeek == 0
}

// Days expands the set into a sorted weekday slice
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// String lists the active weekdays, e.g. "Mon,Tue,Wed"
func (s WeekdaySet) String() string {
	var parts []string
	for _, d := range s.Days() {
		parts = append(parts, d.String()[:3])
	}
	return strings.Join(parts, ",")
}

// Schedule is a recurring rule assigning a playlist to matching screens
// within a date range, weekday set, and daily time window.
type Schedule struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	PlaylistID     uuid.UUID

	// Targeting: exactly one class applies, checked in this order. A
	// schedule with no targeting matches every screen in the organization.
	TargetDeviceID    *string
	TargetDeviceTypes []string
	TargetLocationIDs []uuid.UUID

	// StartDate and EndDate bound the active calendar range; a nil EndDate
	// means open-ended. Both are date-only values (midnight UTC).
	StartDate time.Time
	EndDate   *time.Time

	// StartTime and EndTime bound the daily window as [start, end).
	// Windows never wrap past midnight.
	StartTime TimeOfDay
	EndTime   TimeOfDay

	Weekdays  WeekdaySet
	Priority  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the schedule's structural invariants
func (s *Schedule) Validate() error {
	const op = "Schedule.Validate"

	if s.Name == "" {
		return errors.NewError("INVALID_INPUT", "schedule name is required", op, errors.ErrInvalidInput)
	}
	if s.OrganizationID == uuid.Nil {
		return errors.NewError("INVALID_INPUT", "organization id is required", op, errors.ErrInvalidInput)
	}
	if s.PlaylistID == uuid.Nil {
		return errors.NewError("INVALID_INPUT", "playlist id is required", op, errors.ErrInvalidInput)
	}
	if s.StartTime < 0 || s.EndTime > MinutesPerDay {
		return errors.NewError("INVALID_INPUT", "time window out of range", op, errors.ErrInvalidInput)
	}
	if s.StartTime >= s.EndTime {
		// Overnight windows are not supported; an inverted window is an
		// input error rather than a silently empty schedule.
		return errors.NewError("INVALID_INPUT",
			fmt.Sprintf("start time %s must be before end time %s (windows cannot cross midnight)",
				s.StartTime, s.EndTime),
			op, errors.ErrInvalidInput)
	}
	if s.Weekdays.IsEmpty() {
		return errors.NewError("INVALID_INPUT", "at least one weekday is required", op, errors.ErrInvalidInput)
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return errors.NewError("INVALID_INPUT", "end date precedes start date", op, errors.ErrInvalidInput)
	}
	return nil
}

// IsGlobal reports whether the schedule targets every screen
func (s *Schedule) IsGlobal() bool {
	return s.TargetDeviceID == nil &&
		len(s.TargetDeviceTypes) == 0 &&
		len(s.TargetLocationIDs) == 0
}

// Targets reports whether the schedule's targeting matches the screen.
// The first targeting class present decides.
func (s *Schedule) Targets(screen *device.Screen) bool {
	if s.TargetDeviceID != nil {
		return *s.TargetDeviceID == screen.DeviceID
	}
	if len(s.TargetDeviceTypes) > 0 {
		for _, t := range s.TargetDeviceTypes {
			if t == screen.DeviceType {
				return true
			}
		}
		return false
	}
	if len(s.TargetLocationIDs) > 0 {
		if screen.LocationID == nil {
			return false
		}
		for _, id := range s.TargetLocationIDs {
			if id == *screen.LocationID {
				return true
			}
		}
		return false
	}
	return true
}

// ContainsDate reports whether at's calendar date falls in the date range
func (s *Schedule) ContainsDate(at time.Time) bool {
	date := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(s.StartDate) {
		return false
	}
	if s.EndDate != nil && date.After(*s.EndDate) {
		return false
	}
	return true
}

// ActiveAt reports whether the schedule is live at the given instant:
// active flag, date range, weekday, and daily time window all match.
func (s *Schedule) ActiveAt(at time.Time) bool {
	if !s.Active {
		return false
	}
	if !s.ContainsDate(at) {
		return false
	}
	if !s.Weekdays.Contains(at.Weekday()) {
		return false
	}
	minute := TimeOfDayFrom(at)
	return minute >= s.StartTime && minute < s.EndTime
}

// datesOverlap reports whether two date ranges share at least one day
func datesOverlap(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && aEnd.Before(bStart) {
		return false
	}
	if bEnd != nil && bEnd.Before(aStart) {
		return false
	}
	return true
}

// Intersects reports whether two schedules can compete for the same screen
// at the same instant: overlapping date ranges, shared weekdays, and
// overlapping daily windows (max(start) < min(end)).
func (s *Schedule) Intersects(other *Schedule) bool {
	if !datesOverlap(s.StartDate, s.EndDate, other.StartDate, other.EndDate) {
		return false
	}
	if !s.Weekdays.Intersects(other.Weekdays) {
		return false
	}
	start := s.StartTime
	if other.StartTime > start {
		start = other.StartTime
	}
	end := s.EndTime
	if other.EndTime < end {
		end = other.EndTime
	}
	return start < end
}
