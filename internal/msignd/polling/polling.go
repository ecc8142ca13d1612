// Package polling computes the recommended poll cadence for devices
package polling

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// DefaultIntervalSeconds is the hard fallback cadence. A device with no
// cadence is worse than one with a stale default, so resolution never fails.
const DefaultIntervalSeconds = 900

// Period is an organization-defined time-of-day window carrying a poll
// interval. Periods are non-overlapping by convention, not enforcement;
// the first containing period in stored order wins.
type Period struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Name            string
	StartTime       schedule.TimeOfDay
	EndTime         schedule.TimeOfDay
	IntervalSeconds int
	Emergency       bool
	Position        int
}

// Contains reports whether the period's window covers the instant
func (p *Period) Contains(at time.Time) bool {
	minute := schedule.TimeOfDayFrom(at)
	return minute >= p.StartTime && minute < p.EndTime
}

// Resolution is the advisory cadence returned to a device
type Resolution struct {
	IntervalSeconds int
	Emergency       bool
	PeriodName      string
}

// Repository defines the interface for polling period persistence
type Repository interface {
	// ListForOrganization returns an organization's periods in stored order
	ListForOrganization(ctx context.Context, organizationID uuid.UUID) ([]*Period, error)

	// Save persists a period
	Save(ctx context.Context, period *Period) error

	// Delete removes a period
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service resolves the poll cadence for an organization
type Service struct {
	repo            Repository
	defaultInterval int
	logger          *slog.Logger
}

// NewService creates a polling interval service. A non-positive default
// interval falls back to DefaultIntervalSeconds.
func NewService(repo Repository, defaultInterval int, logger *slog.Logger) *Service {
	if defaultInterval <= 0 {
		defaultInterval = DefaultIntervalSeconds
	}
	return &Service{
		repo:            repo,
		defaultInterval: defaultInterval,
		logger:          logger,
	}
}

// IntervalFor returns the cadence for the organization at the given instant.
// Misconfiguration and storage failures both degrade to the safe default;
// devices always get an answer.
func (s *Service) IntervalFor(ctx context.Context, organizationID uuid.UUID, at time.Time) Resolution {
	fallback := Resolution{IntervalSeconds: s.defaultInterval, PeriodName: "default"}

	periods, err := s.repo.ListForOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to list polling periods, using default interval",
			"error", err,
			"organizationID", organizationID,
		)
		return fallback
	}

	for _, period := range periods {
		if period.Contains(at) {
			return Resolution{
				IntervalSeconds: period.IntervalSeconds,
				Emergency:       period.Emergency,
				PeriodName:      period.Name,
			}
		}
	}

	return fallback
}
