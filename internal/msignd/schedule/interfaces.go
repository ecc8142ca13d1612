package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/device"
)

// Repository defines the interface for schedule persistence
type Repository interface {
	// Save persists a schedule to storage
	Save(ctx context.Context, schedule *Schedule) error

	// FindByID retrieves a schedule by id
	FindByID(ctx context.Context, id uuid.UUID) (*Schedule, error)

	// ListActive retrieves all active schedules for an organization
	ListActive(ctx context.Context, organizationID uuid.UUID) ([]*Schedule, error)

	// List retrieves all schedules for an organization
	List(ctx context.Context, organizationID uuid.UUID) ([]*Schedule, error)

	// Deactivate clears the active flag without deleting the row
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Delete removes a schedule from storage
	Delete(ctx context.Context, id uuid.UUID) error
}

// Resolution is the outcome of resolving a screen at an instant. Active is
// ordered by priority descending, then start time ascending, then id; the
// winner is the head of that order.
type Resolution struct {
	Winner *Schedule
	Active []*Schedule
}

// ScreenConflicts groups the schedules competing with a candidate on one screen
type ScreenConflicts struct {
	Screen    *device.Screen
	Conflicts []*Schedule
}

// ConflictReport is the advisory outcome of a conflict check. Global holds
// competing untargeted schedules when the candidate is itself untargeted.
type ConflictReport struct {
	HasConflicts bool
	Screens      []ScreenConflicts
	Global       []*Schedule
}

// Resolver decides which schedule a screen must obey at a given instant
type Resolver interface {
	// Resolve returns the winning schedule and the full ordered active set
	// for the device at the given instant. The winner is nil when nothing
	// is scheduled; that is not an error.
	Resolve(ctx context.Context, deviceID string, at time.Time) (*Resolution, error)
}

// Service defines schedule business operations
type Service interface {
	Resolver

	// Create validates and persists a new schedule
	Create(ctx context.Context, schedule *Schedule) error

	// Get retrieves a schedule by id
	Get(ctx context.Context, id uuid.UUID) (*Schedule, error)

	// List retrieves all schedules for an organization
	List(ctx context.Context, organizationID uuid.UUID) ([]*Schedule, error)

	// Deactivate retires a schedule without deleting its history
	Deactivate(ctx context.Context, id uuid.UUID) error

	// FindConflicts surfaces existing schedules that would compete with the
	// candidate for the same screens at overlapping times. Advisory: the
	// caller decides whether conflicts block the save.
	FindConflicts(ctx context.Context, candidate *Schedule, explicitDeviceIDs []string) (*ConflictReport, error)
}
