package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
	"github.com/mesophy/mesophy-signage/internal/msignd/auth"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/httputil"
)

// Heartbeat ingests a device self-report and answers with sync guidance and
// the current poll cadence
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.authedScreen(w, r)
	if !ok {
		return
	}

	var req v1.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid request body", "Heartbeat", errors.ErrInvalidInput))
		return
	}

	report := device.HeartbeatReport{
		Status:     device.Status(req.Status),
		ReportedAt: time.Now().UTC(),
	}
	if req.ActiveScheduleID != "" {
		id, err := uuid.Parse(req.ActiveScheduleID)
		if err != nil {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid active schedule id", "Heartbeat", errors.ErrInvalidInput))
			return
		}
		report.ActiveScheduleID = &id
	}
	if req.CurrentPlaylistID != "" {
		id, err := uuid.Parse(req.CurrentPlaylistID)
		if err != nil {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid current playlist id", "Heartbeat", errors.ErrInvalidInput))
			return
		}
		report.CurrentPlaylistID = &id
	}
	if req.Telemetry != nil {
		report.Telemetry = &device.Telemetry{
			CPUPercent:     req.Telemetry.CPUPercent,
			MemoryPercent:  req.Telemetry.MemoryPercent,
			StoragePercent: req.Telemetry.StoragePercent,
			Temperature:    req.Telemetry.Temperature,
			UptimeSeconds:  req.Telemetry.UptimeSeconds,
			ErrorDetail:    req.Telemetry.ErrorDetail,
		}
	}

	result, err := h.service.Heartbeat(r.Context(), screen, report)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	cadence := h.polling.IntervalFor(r.Context(), screen.OrganizationID, time.Now().UTC())

	httputil.Respond(w, http.StatusOK, v1.HeartbeatResponse{
		SyncRequired:        result.SyncRequired,
		ActiveScheduleCount: result.ActiveScheduleCount,
		Emergency:           result.Emergency || cadence.Emergency,
		PollIntervalSeconds: cadence.IntervalSeconds,
		ServerTime:          time.Now().UTC(),
	})
}

// PollingInterval answers the device's standalone cadence query
func (h *Handler) PollingInterval(w http.ResponseWriter, r *http.Request) {
	screen, ok := h.authedScreen(w, r)
	if !ok {
		return
	}

	cadence := h.polling.IntervalFor(r.Context(), screen.OrganizationID, time.Now().UTC())
	httputil.Respond(w, http.StatusOK, v1.PollingIntervalResponse{
		IntervalSeconds: cadence.IntervalSeconds,
		Emergency:       cadence.Emergency,
		PeriodName:      cadence.PeriodName,
	})
}

// authedScreen loads the screen record behind the request's device token
func (h *Handler) authedScreen(w http.ResponseWriter, r *http.Request) (*device.Screen, bool) {
	screenID, ok := auth.ScreenIDFromContext(r.Context())
	if !ok {
		httputil.Error(w, r, h.logger, errors.NewError("UNAUTHORIZED",
			"authentication required", "authedScreen", errors.ErrUnauthorized))
		return nil, false
	}

	screen, err := h.service.Get(r.Context(), screenID)
	if err != nil {
		if errors.IsNotFound(err) {
			// Token outlived its screen record; force a re-pair.
			httputil.Error(w, r, h.logger, errors.NewError("NOT_REGISTERED",
				"screen record missing", "authedScreen", errors.ErrNotRegistered))
			return nil, false
		}
		httputil.Error(w, r, h.logger, err)
		return nil, false
	}
	return screen, true
}
