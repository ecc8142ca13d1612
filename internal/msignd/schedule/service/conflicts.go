package service

import (
	"context"
	"sort"

	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// FindConflicts expands the candidate's targeting into concrete screens and
// reports, per screen, the existing schedules whose date range, weekday set,
// and daily window all intersect the candidate's. The check is advisory:
// it informs the operator before save, it never blocks one.
func (s *Service) FindConflicts(ctx context.Context, candidate *schedule.Schedule, explicitDeviceIDs []string) (*schedule.ConflictReport, error) {
	const op = "ScheduleService.FindConflicts"

	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListActive(ctx, candidate.OrganizationID)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list schedules", op, err)
	}

	// Drop the candidate's own row (present when editing) and anything that
	// can't overlap in time at all.
	overlapping := make([]*schedule.Schedule, 0, len(existing))
	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if candidate.Intersects(other) {
			overlapping = append(overlapping, other)
		}
	}

	report := &schedule.ConflictReport{}
	if len(overlapping) == 0 {
		return report, nil
	}

	screens, err := s.targetScreens(ctx, candidate, explicitDeviceIDs)
	if err != nil {
		return nil, err
	}

	for _, screen := range screens {
		if !candidate.Targets(screen) {
			continue
		}
		var conflicts []*schedule.Schedule
		for _, other := range overlapping {
			if other.Targets(screen) {
				conflicts = append(conflicts, other)
			}
		}
		if len(conflicts) > 0 {
			sortSchedules(conflicts)
			report.Screens = append(report.Screens, schedule.ScreenConflicts{
				Screen:    screen,
				Conflicts: conflicts,
			})
		}
	}

	// Untargeted candidates compete with every other untargeted schedule
	// even when the organization has no screens registered yet.
	if candidate.IsGlobal() {
		for _, other := range overlapping {
			if other.IsGlobal() {
				report.Global = append(report.Global, other)
			}
		}
		sortSchedules(report.Global)
	}

	report.HasConflicts = len(report.Screens) > 0 || len(report.Global) > 0
	return report, nil
}

// targetScreens expands the candidate's targeting plus any explicitly listed
// device ids into concrete screen records, de-duplicated by record id.
func (s *Service) targetScreens(ctx context.Context, candidate *schedule.Schedule, explicitDeviceIDs []string) ([]*device.Screen, error) {
	const op = "ScheduleService.targetScreens"

	seen := make(map[string]*device.Screen)

	for _, deviceID := range explicitDeviceIDs {
		screen, err := s.screens.FindByDeviceID(ctx, deviceID)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.NewError("NOT_FOUND", "unknown device: "+deviceID, op, err)
			}
			return nil, errors.NewError("LOOKUP_FAILED", "failed to look up device", op, err)
		}
		seen[screen.DeviceID] = screen
	}

	if candidate.TargetDeviceID != nil {
		if _, ok := seen[*candidate.TargetDeviceID]; !ok {
			screen, err := s.screens.FindByDeviceID(ctx, *candidate.TargetDeviceID)
			if err != nil {
				if errors.IsNotFound(err) {
					return nil, errors.NewError("NOT_FOUND", "unknown device: "+*candidate.TargetDeviceID, op, err)
				}
				return nil, errors.NewError("LOOKUP_FAILED", "failed to look up device", op, err)
			}
			seen[screen.DeviceID] = screen
		}
		return collect(seen), nil
	}

	filter := device.Filter{OrganizationID: candidate.OrganizationID}
	switch {
	case len(candidate.TargetDeviceTypes) > 0:
		filter.DeviceTypes = candidate.TargetDeviceTypes
	case len(candidate.TargetLocationIDs) > 0:
		filter.LocationIDs = candidate.TargetLocationIDs
	}

	screens, err := s.screens.List(ctx, filter)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list screens", op, err)
	}
	for _, screen := range screens {
		seen[screen.DeviceID] = screen
	}

	return collect(seen), nil
}

func collect(seen map[string]*device.Screen) []*device.Screen {
	screens := make([]*device.Screen, 0, len(seen))
	for _, screen := range seen {
		screens = append(screens, screen)
	}
	// Stable report order for callers and tests.
	sort.Slice(screens, func(i, j int) bool {
		return screens[i].DeviceID < screens[j].DeviceID
	})
	return screens
}
