// Package service implements the schedule resolver and conflict detector
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// Service implements the schedule.Service interface
type Service struct {
	repo    schedule.Repository
	screens device.Repository
	logger  *slog.Logger
}

// New creates a new schedule service instance
func New(repo schedule.Repository, screens device.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		screens: screens,
		logger:  logger,
	}
}

// Create validates and persists a new schedule
func (s *Service) Create(ctx context.Context, sched *schedule.Schedule) error {
	const op = "ScheduleService.Create"

	if err := sched.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, sched); err != nil {
		return errors.NewError("SAVE_FAILED", "failed to save schedule", op, err)
	}
	return nil
}

// Get retrieves a schedule by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	const op = "ScheduleService.Get"

	sched, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", "schedule not found", op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve schedule", op, err)
	}
	return sched, nil
}

// List retrieves all schedules for an organization
func (s *Service) List(ctx context.Context, organizationID uuid.UUID) ([]*schedule.Schedule, error) {
	const op = "ScheduleService.List"

	schedules, err := s.repo.List(ctx, organizationID)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list schedules", op, err)
	}
	return schedules, nil
}

// Deactivate retires a schedule without deleting its history
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	const op = "ScheduleService.Deactivate"

	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return errors.NewError("NOT_FOUND", "schedule not found", op, err)
		}
		return errors.NewError("UPDATE_FAILED", "failed to deactivate schedule", op, err)
	}
	return nil
}
