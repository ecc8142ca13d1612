package service

import (
	"context"

	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/metrics"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// Heartbeat ingests a device self-report and returns sync guidance. Schedule
// resolution failures degrade to SyncRequired=false rather than failing the
// heartbeat; the persistence step is the only hard failure.
func (s *Service) Heartbeat(ctx context.Context, screen *device.Screen, report device.HeartbeatReport) (*device.HeartbeatResult, error) {
	const op = "DeviceService.Heartbeat"

	if !device.ValidStatus(report.Status) {
		return nil, errors.NewError("INVALID_INPUT",
			"invalid status: "+string(report.Status), op, errors.ErrInvalidInput)
	}

	now := s.now().UTC()
	seenAt := report.ReportedAt
	if seenAt.IsZero() {
		seenAt = now
	}

	if err := s.repo.UpdateHeartbeat(ctx, screen.ID, report.Status, seenAt); err != nil {
		return nil, errors.NewError("UPDATE_FAILED", "failed to record heartbeat", op, err)
	}

	if report.Telemetry != nil {
		sample := *report.Telemetry
		sample.DeviceID = screen.DeviceID
		if sample.ReportedAt.IsZero() {
			sample.ReportedAt = seenAt
		}
		if err := s.telemetry.SaveSample(ctx, &sample); err != nil {
			// Telemetry is best effort; the heartbeat already landed.
			s.logger.Warn("failed to save telemetry sample",
				"error", err,
				"deviceID", screen.DeviceID,
			)
		}
	}

	result := &device.HeartbeatResult{}

	resolution, err := s.resolver.Resolve(ctx, screen.DeviceID, now)
	if err != nil {
		s.logger.Error("schedule resolution failed during heartbeat",
			"error", err,
			"deviceID", screen.DeviceID,
		)
	} else {
		result.ActiveScheduleCount = len(resolution.Active)
		result.SyncRequired = syncRequired(resolution, report)
	}

	if s.polling != nil {
		result.Emergency = s.polling.IntervalFor(ctx, screen.OrganizationID, now).Emergency
	}

	metrics.HeartbeatsTotal.WithLabelValues(string(report.Status)).Inc()

	s.logger.Debug("heartbeat processed",
		"deviceID", screen.DeviceID,
		"status", report.Status,
		"syncRequired", result.SyncRequired,
		"activeSchedules", result.ActiveScheduleCount,
	)
	return result, nil
}

// syncRequired compares what the device says it is playing against what the
// winning schedule says it should play.
func syncRequired(res *schedule.Resolution, report device.HeartbeatReport) bool {
	if res.Winner == nil {
		// Nothing scheduled; the device should be idle.
		return report.CurrentPlaylistID != nil
	}
	if report.CurrentPlaylistID == nil {
		return true
	}
	return *report.CurrentPlaylistID != res.Winner.PlaylistID
}
