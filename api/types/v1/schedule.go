package v1

import "time"

// Schedule is the API representation of a content schedule
type Schedule struct {
	ID                string   `json:"id"`
	OrganizationID    string   `json:"organization_id"`
	Name              string   `json:"name"`
	PlaylistID        string   `json:"playlist_id"`
	TargetDeviceID    string   `json:"target_device_id,omitempty"`
	TargetDeviceTypes []string `json:"target_device_types,omitempty"`
	TargetLocationIDs []string `json:"target_location_ids,omitempty"`

	// StartDate and EndDate are date-only values, YYYY-MM-DD
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`

	// StartTime and EndTime are HH:MM within one day
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	// Weekdays holds lowercase day names, e.g. ["monday", "friday"]
	Weekdays []string `json:"weekdays"`

	Priority  int       `json:"priority"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ScheduleResolution is the outcome of resolving a screen at an instant
type ScheduleResolution struct {
	// Winner is the schedule the screen must obey, absent when nothing
	// is scheduled
	Winner *Schedule `json:"winner,omitempty"`
	// Active is every matching schedule in precedence order
	Active []Schedule `json:"active"`
	// ResolvedAt is the instant the resolution was computed for
	ResolvedAt time.Time `json:"resolved_at"`
}

// ScheduleConflict groups competing schedules on one screen
type ScheduleConflict struct {
	DeviceID  string     `json:"device_id"`
	ScreenID  string     `json:"screen_id"`
	Conflicts []Schedule `json:"conflicts"`
}

// ScheduleConflictReport is the advisory outcome of a conflict check
type ScheduleConflictReport struct {
	HasConflicts bool `json:"has_conflicts"`
	// Screens lists per-screen competition for targeted candidates
	Screens []ScheduleConflict `json:"screens,omitempty"`
	// Global lists competing untargeted schedules for untargeted candidates
	Global []Schedule `json:"global,omitempty"`
}
