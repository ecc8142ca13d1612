// Package service implements the command queue business logic
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/command"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/metrics"
)

// DefaultPollLimit caps how many commands one poll may claim
const DefaultPollLimit = 10

// Service implements the command.Service interface
type Service struct {
	repo    command.Repository
	screens device.Repository
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a new command service instance
func New(repo command.Repository, screens device.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		screens: screens,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) screenByDeviceID(ctx context.Context, deviceID, op string) (*device.Screen, error) {
	screen, err := s.screens.FindByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", "unknown device: "+deviceID, op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to look up device", op, err)
	}
	return screen, nil
}

// Enqueue validates and creates a pending command for a device
func (s *Service) Enqueue(ctx context.Context, deviceID string, req command.EnqueueRequest) (*command.Command, error) {
	const op = "CommandService.Enqueue"

	screen, err := s.screenByDeviceID(ctx, deviceID, op)
	if err != nil {
		return nil, err
	}

	cmd, err := command.New(screen.ID, req.Type, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	cmd.Payload = req.Payload
	if req.Priority != 0 {
		if req.Priority < command.MinPriority || req.Priority > command.MaxPriority {
			return nil, errors.NewError("INVALID_INPUT", "priority out of range", op, errors.ErrInvalidInput)
		}
		cmd.Priority = req.Priority
	}
	if req.TimeoutSeconds != 0 {
		if req.TimeoutSeconds < 1 {
			return nil, errors.NewError("INVALID_INPUT", "timeout must be positive", op, errors.ErrInvalidInput)
		}
		cmd.TimeoutSeconds = req.TimeoutSeconds
	}
	if req.ScheduledFor != nil {
		cmd.ScheduledFor = *req.ScheduledFor
	}

	if err := s.repo.Create(ctx, cmd); err != nil {
		return nil, errors.NewError("SAVE_FAILED", "failed to enqueue command", op, err)
	}

	if err := s.repo.AppendEvent(ctx, screen.ID, cmd.ID, "enqueued", map[string]interface{}{
		"type":     string(cmd.Type),
		"priority": cmd.Priority,
		"by":       cmd.CreatedBy,
	}); err != nil {
		// The command is already queued; a missing audit row is logged,
		// not surfaced to the caller.
		s.logger.Error("failed to record enqueue event",
			"error", err,
			"commandID", cmd.ID,
			"deviceID", deviceID,
			"operation", op,
		)
	}

	metrics.CommandsEnqueued.WithLabelValues(string(cmd.Type)).Inc()
	s.logger.Info("command enqueued",
		"commandID", cmd.ID,
		"deviceID", deviceID,
		"type", cmd.Type,
		"priority", cmd.Priority,
	)

	return cmd, nil
}

// Poll claims up to limit due commands for the screen
func (s *Service) Poll(ctx context.Context, screenID uuid.UUID, limit int) ([]*command.Command, error) {
	const op = "CommandService.Poll"

	if limit <= 0 || limit > DefaultPollLimit {
		limit = DefaultPollLimit
	}

	claimed, err := s.repo.ClaimPending(ctx, screenID, limit, s.now())
	if err != nil {
		return nil, errors.NewError("CLAIM_FAILED", "failed to claim commands", op, err)
	}

	if len(claimed) > 0 {
		metrics.CommandsClaimed.Add(float64(len(claimed)))
		s.logger.Info("commands claimed",
			"screenID", screenID,
			"count", len(claimed),
		)
	}

	return claimed, nil
}

// Report finalizes a command with the device's terminal status
func (s *Service) Report(ctx context.Context, screenID, commandID uuid.UUID, req command.ReportRequest) (*command.Command, error) {
	const op = "CommandService.Report"

	if !req.Status.IsTerminal() {
		return nil, errors.NewError("INVALID_INPUT",
			"report status must be completed, failed or cancelled", op, errors.ErrInvalidInput)
	}

	cmd, err := s.repo.FindByID(ctx, commandID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", "unknown command", op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to look up command", op, err)
	}

	if cmd.ScreenID != screenID {
		s.logger.Warn("report for command owned by another screen",
			"commandID", commandID,
			"ownerScreenID", cmd.ScreenID,
			"reportingScreenID", screenID,
		)
		return nil, errors.NewError("FORBIDDEN", "command belongs to another device", op, errors.ErrForbidden)
	}

	updated, finished, err := s.repo.Finish(ctx, commandID, req.Status, req.Result, req.ErrorMessage, s.now())
	if err != nil {
		return nil, errors.NewError("UPDATE_FAILED", "failed to finalize command", op, err)
	}
	if !finished {
		// Already terminal: expected race outcome on device retry. Return
		// the stored command without a second audit entry.
		return cmd, nil
	}

	if err := s.repo.AppendEvent(ctx, screenID, commandID, "reported", map[string]interface{}{
		"status":           string(req.Status),
		"duration_seconds": updated.ExecutionDuration().Seconds(),
	}); err != nil {
		s.logger.Error("failed to record report event",
			"error", err,
			"commandID", commandID,
			"operation", op,
		)
	}

	metrics.CommandsReported.WithLabelValues(string(req.Status)).Inc()
	if d := updated.ExecutionDuration(); d > 0 {
		metrics.CommandDuration.Observe(d.Seconds())
	}

	s.logger.Info("command reported",
		"commandID", commandID,
		"screenID", screenID,
		"status", req.Status,
		"duration", updated.ExecutionDuration(),
	)

	return updated, nil
}

// Cancel cancels one pending command by id
func (s *Service) Cancel(ctx context.Context, deviceID string, commandID uuid.UUID) (int, error) {
	const op = "CommandService.Cancel"

	screen, err := s.screenByDeviceID(ctx, deviceID, op)
	if err != nil {
		return 0, err
	}

	cmd, err := s.repo.FindByID(ctx, commandID)
	if err != nil {
		if errors.IsNotFound(err) {
			return 0, errors.NewError("NOT_FOUND", "unknown command", op, err)
		}
		return 0, errors.NewError("LOOKUP_FAILED", "failed to look up command", op, err)
	}
	if cmd.ScreenID != screen.ID {
		return 0, errors.NewError("FORBIDDEN", "command belongs to another device", op, errors.ErrForbidden)
	}

	cancelled, err := s.repo.CancelPending(ctx, commandID)
	if err != nil {
		return 0, errors.NewError("UPDATE_FAILED", "failed to cancel command", op, err)
	}
	if !cancelled {
		// Executing or terminal commands are not cancellable; tell the
		// caller nothing happened rather than failing.
		return 0, nil
	}
	return 1, nil
}

// CancelAll cancels every pending command for a device
func (s *Service) CancelAll(ctx context.Context, deviceID string) (int, error) {
	const op = "CommandService.CancelAll"

	screen, err := s.screenByDeviceID(ctx, deviceID, op)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.CancelAllPending(ctx, screen.ID)
	if err != nil {
		return 0, errors.NewError("UPDATE_FAILED", "failed to cancel commands", op, err)
	}

	if count > 0 {
		s.logger.Info("pending commands cancelled",
			"deviceID", deviceID,
			"count", count,
		)
	}
	return count, nil
}

// Get retrieves a command by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*command.Command, error) {
	const op = "CommandService.Get"

	cmd, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", "unknown command", op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to look up command", op, err)
	}
	return cmd, nil
}

// ListForDevice retrieves a device's recent commands
func (s *Service) ListForDevice(ctx context.Context, deviceID string, limit int) ([]*command.Command, error) {
	const op = "CommandService.ListForDevice"

	screen, err := s.screenByDeviceID(ctx, deviceID, op)
	if err != nil {
		return nil, err
	}

	cmds, err := s.repo.ListForScreen(ctx, screen.ID, limit)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list commands", op, err)
	}
	return cmds, nil
}

// ExpireStale fails executing commands past their timeout
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	const op = "CommandService.ExpireStale"

	count, err := s.repo.FailStale(ctx, s.now())
	if err != nil {
		return 0, errors.NewError("UPDATE_FAILED", "failed to expire stale commands", op, err)
	}
	if count > 0 {
		s.logger.Warn("stale executing commands failed", "count", count)
	}
	return count, nil
}
