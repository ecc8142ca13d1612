// Package service implements screen registry and health monitoring logic
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/alert"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/polling"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// Thresholds configures the health sweep classification rules
type Thresholds struct {
	// OfflineAfter is how long heartbeat silence lasts before a device is
	// classified offline
	OfflineAfter time.Duration
	// CriticalOfflineAfter escalates an offline alert to critical
	CriticalOfflineAfter time.Duration
	// TelemetryRecency bounds how old a telemetry sample may be and still
	// count for performance checks
	TelemetryRecency time.Duration

	MemoryWarnPercent  float64
	StorageWarnPercent float64
	CPUWarnPercent     float64
	MemoryCritPercent  float64
	StorageCritPercent float64
	CPUCritPercent     float64
}

// DefaultThresholds returns the stock sweep configuration
func DefaultThresholds() Thresholds {
	return Thresholds{
		OfflineAfter:         30 * time.Minute,
		CriticalOfflineAfter: 60 * time.Minute,
		TelemetryRecency:     10 * time.Minute,
		MemoryWarnPercent:    85,
		StorageWarnPercent:   90,
		CPUWarnPercent:       90,
		MemoryCritPercent:    95,
		StorageCritPercent:   98,
		CPUCritPercent:       98,
	}
}

// Service implements the device.Service interface
type Service struct {
	repo       device.Repository
	telemetry  device.TelemetryStore
	resolver   schedule.Resolver
	alerts     alert.Dispatcher
	polling    *polling.Service
	thresholds Thresholds
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a new device service instance
func New(
	repo device.Repository,
	telemetry device.TelemetryStore,
	resolver schedule.Resolver,
	alerts alert.Dispatcher,
	pollingSvc *polling.Service,
	thresholds Thresholds,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		telemetry:  telemetry,
		resolver:   resolver,
		alerts:     alerts,
		polling:    pollingSvc,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a new screen record for a paired device
func (s *Service) Register(ctx context.Context, screen *device.Screen) error {
	const op = "DeviceService.Register"

	existing, err := s.repo.FindByDeviceID(ctx, screen.DeviceID)
	if err != nil && !errors.IsNotFound(err) {
		return errors.NewError("LOOKUP_FAILED", "failed to check existing screen", op, err)
	}
	if existing != nil {
		return errors.NewError("SCREEN_EXISTS",
			"screen already registered for device: "+screen.DeviceID, op, errors.ErrConflict)
	}

	if err := s.repo.Save(ctx, screen); err != nil {
		return errors.NewError("SAVE_FAILED", "failed to save screen", op, err)
	}

	s.logger.Info("screen registered",
		"screenID", screen.ID,
		"deviceID", screen.DeviceID,
		"organizationID", screen.OrganizationID,
	)
	return nil
}

// Get retrieves a screen by record id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*device.Screen, error) {
	const op = "DeviceService.Get"

	screen, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", "screen not found", op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve screen", op, err)
	}
	return screen, nil
}

// GetByDeviceID retrieves a screen by device identifier
func (s *Service) GetByDeviceID(ctx context.Context, deviceID string) (*device.Screen, error) {
	const op = "DeviceService.GetByDeviceID"

	screen, err := s.repo.FindByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", "screen not found: "+deviceID, op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve screen", op, err)
	}
	return screen, nil
}

// List retrieves screens matching the filter
func (s *Service) List(ctx context.Context, filter device.Filter) ([]*device.Screen, error) {
	const op = "DeviceService.List"

	screens, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list screens", op, err)
	}
	return screens, nil
}
