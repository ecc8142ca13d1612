package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mesophy/mesophy-signage/internal/msignd/alert"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/metrics"
)

// Sweep walks every registered screen, classifies heartbeat silence as
// offline regardless of the last self-reported status, and checks the most
// recent telemetry sample against resource thresholds. Alerts are dispatched
// through the deduplicating dispatcher when opts.TriggerAlerts is set.
func (s *Service) Sweep(ctx context.Context, opts device.SweepOptions) (*device.SweepSummary, error) {
	const op = "DeviceService.Sweep"

	started := s.now().UTC()
	offlineAfter := s.thresholds.OfflineAfter
	if opts.OfflineThreshold > 0 {
		offlineAfter = opts.OfflineThreshold
	}

	screens, err := s.repo.List(ctx, device.Filter{})
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list screens for sweep", op, err)
	}

	summary := &device.SweepSummary{
		CheckedAt:    started,
		TotalDevices: len(screens),
	}

	for _, screen := range screens {
		minutes := screen.MinutesOffline(started)
		if minutes >= offlineAfter.Minutes() {
			summary.OfflineDevices = append(summary.OfflineDevices, device.OfflineFinding{
				Screen:         screen,
				MinutesOffline: minutes,
			})
			if screen.Status != device.StatusOffline {
				if err := s.repo.UpdateStatus(ctx, screen.ID, device.StatusOffline); err != nil {
					s.logger.Error("failed to mark screen offline",
						"error", err,
						"deviceID", screen.DeviceID,
					)
				}
			}
			continue
		}

		if screen.Status == device.StatusOnline {
			summary.OnlineDevices++
		}
		summary.PerformanceIssues = append(summary.PerformanceIssues, s.checkTelemetry(ctx, screen, started)...)
	}

	if opts.TriggerAlerts {
		s.dispatchFindings(ctx, summary)
	}

	metrics.DevicesOffline.Set(float64(len(summary.OfflineDevices)))
	metrics.SweepDuration.Observe(s.now().Sub(started).Seconds())

	s.logger.Info("health sweep complete",
		"total", summary.TotalDevices,
		"online", summary.OnlineDevices,
		"offline", len(summary.OfflineDevices),
		"performanceIssues", len(summary.PerformanceIssues),
		"alertsCreated", summary.AlertsCreated,
		"alertsSuppressed", summary.AlertsSuppressed,
	)
	return summary, nil
}

// checkTelemetry flags resource pressure from the screen's latest sample.
// Stale or missing samples are skipped; only responsive devices are checked.
func (s *Service) checkTelemetry(ctx context.Context, screen *device.Screen, now time.Time) []device.PerformanceFinding {
	sample, err := s.telemetry.LatestSample(ctx, screen.DeviceID)
	if err != nil {
		s.logger.Warn("failed to load telemetry sample",
			"error", err,
			"deviceID", screen.DeviceID,
		)
		return nil
	}
	if sample == nil || now.Sub(sample.ReportedAt) > s.thresholds.TelemetryRecency {
		return nil
	}

	var findings []device.PerformanceFinding
	check := func(metric string, value, warn, crit float64) {
		if value < warn {
			return
		}
		threshold := warn
		critical := false
		if value >= crit {
			threshold = crit
			critical = true
		}
		findings = append(findings, device.PerformanceFinding{
			Screen:    screen,
			Metric:    metric,
			Value:     value,
			Threshold: threshold,
			Critical:  critical,
		})
	}

	check("memory", sample.MemoryPercent, s.thresholds.MemoryWarnPercent, s.thresholds.MemoryCritPercent)
	check("storage", sample.StoragePercent, s.thresholds.StorageWarnPercent, s.thresholds.StorageCritPercent)
	check("cpu", sample.CPUPercent, s.thresholds.CPUWarnPercent, s.thresholds.CPUCritPercent)
	return findings
}

func (s *Service) dispatchFindings(ctx context.Context, summary *device.SweepSummary) {
	for _, finding := range summary.OfflineDevices {
		severity := alert.SeverityHigh
		if finding.MinutesOffline >= s.thresholds.CriticalOfflineAfter.Minutes() {
			severity = alert.SeverityCritical
		}
		minutes := finding.MinutesOffline
		s.dispatch(ctx, summary, &alert.Alert{
			ScreenID: finding.Screen.ID,
			Type:     alert.TypeDeviceOffline,
			Severity: severity,
			Message: fmt.Sprintf("device %s has not reported for %.0f minutes",
				finding.Screen.DeviceID, minutes),
			Details: map[string]interface{}{
				"device_id":       finding.Screen.DeviceID,
				"minutes_offline": minutes,
			},
			MetricValue: &minutes,
		})
	}

	for _, finding := range summary.PerformanceIssues {
		severity := alert.SeverityHigh
		if finding.Critical {
			severity = alert.SeverityCritical
		}
		value := finding.Value
		threshold := finding.Threshold
		s.dispatch(ctx, summary, &alert.Alert{
			ScreenID: finding.Screen.ID,
			Type:     alert.TypePerformanceWarning,
			Severity: severity,
			Message: fmt.Sprintf("device %s %s usage at %.1f%% (threshold %.0f%%)",
				finding.Screen.DeviceID, finding.Metric, value, threshold),
			Details: map[string]interface{}{
				"device_id": finding.Screen.DeviceID,
				"metric":    finding.Metric,
			},
			MetricValue: &value,
			Threshold:   &threshold,
		})
	}
}

func (s *Service) dispatch(ctx context.Context, summary *device.SweepSummary, a *alert.Alert) {
	created, err := s.alerts.Dispatch(ctx, a)
	if err != nil {
		s.logger.Error("alert dispatch failed",
			"error", err,
			"screenID", a.ScreenID,
			"type", a.Type,
		)
		return
	}
	if created {
		summary.AlertsCreated++
	} else {
		summary.AlertsSuppressed++
	}
}
