package service

import (
	"context"
	"sort"
	"time"

	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// Resolve returns the ordered set of schedules active for the device at the
// given instant, with the winner at the head. Ordering is priority
// descending, then daily start time ascending, then schedule id ascending;
// the id tie-break keeps repeated calls reproducible.
func (s *Service) Resolve(ctx context.Context, deviceID string, at time.Time) (*schedule.Resolution, error) {
	const op = "ScheduleService.Resolve"

	screen, err := s.screens.FindByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", "unknown device: "+deviceID, op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to look up device", op, err)
	}

	candidates, err := s.repo.ListActive(ctx, screen.OrganizationID)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list schedules", op, err)
	}

	active := make([]*schedule.Schedule, 0, len(candidates))
	for _, sched := range candidates {
		if sched.ActiveAt(at) && sched.Targets(screen) {
			active = append(active, sched)
		}
	}

	sortSchedules(active)

	res := &schedule.Resolution{Active: active}
	if len(active) > 0 {
		res.Winner = active[0]
	}

	s.logger.Debug("resolved schedules",
		"deviceID", deviceID,
		"at", at,
		"activeCount", len(active),
	)

	return res, nil
}

// sortSchedules orders schedules by winning precedence in place
func sortSchedules(schedules []*schedule.Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		a, b := schedules[i], schedules[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID.String() < b.ID.String()
	})
}
