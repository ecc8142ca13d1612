package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/httputil"
)

// ListScreens returns screens, optionally filtered by organization, status
// or device type query parameters
func (h *Handler) ListScreens(w http.ResponseWriter, r *http.Request) {
	var filter device.Filter

	if org := r.URL.Query().Get("organization_id"); org != "" {
		id, err := uuid.Parse(org)
		if err != nil {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid organization id", "ListScreens", errors.ErrInvalidInput))
			return
		}
		filter.OrganizationID = id
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Statuses = []device.Status{device.Status(status)}
	}
	if deviceType := r.URL.Query().Get("device_type"); deviceType != "" {
		filter.DeviceTypes = []string{deviceType}
	}

	screens, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	out := make([]v1.Screen, 0, len(screens))
	for _, s := range screens {
		out = append(out, toAPIScreen(s))
	}
	httputil.Respond(w, http.StatusOK, out)
}

// GetScreen returns one screen by record id or device id
func (h *Handler) GetScreen(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "deviceID")

	var (
		screen *device.Screen
		err    error
	)
	if id, parseErr := uuid.Parse(idStr); parseErr == nil {
		screen, err = h.service.Get(r.Context(), id)
	} else {
		screen, err = h.service.GetByDeviceID(r.Context(), idStr)
	}
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	httputil.Respond(w, http.StatusOK, toAPIScreen(screen))
}

// RunSweep triggers one health sweep and returns its summary
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	opts := device.SweepOptions{TriggerAlerts: true}
	if v := r.URL.Query().Get("alerts"); v == "false" {
		opts.TriggerAlerts = false
	}
	if v := r.URL.Query().Get("offline_threshold_minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid offline threshold", "RunSweep", errors.ErrInvalidInput))
			return
		}
		opts.OfflineThreshold = time.Duration(n) * time.Minute
	}

	summary, err := h.service.Sweep(r.Context(), opts)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	httputil.Respond(w, http.StatusOK, v1.SweepResponse{
		CheckedAt:         summary.CheckedAt,
		TotalDevices:      summary.TotalDevices,
		OnlineDevices:     summary.OnlineDevices,
		OfflineDevices:    len(summary.OfflineDevices),
		PerformanceIssues: len(summary.PerformanceIssues),
		AlertsCreated:     summary.AlertsCreated,
		AlertsSuppressed:  summary.AlertsSuppressed,
	})
}

// ListAlerts returns recent alerts, newest first
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid limit", "ListAlerts", errors.ErrInvalidInput))
			return
		}
		limit = n
	}

	alerts, err := h.alerts.ListRecent(r.Context(), limit)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	out := make([]v1.Alert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, v1.Alert{
			ID:          a.ID.String(),
			ScreenID:    a.ScreenID.String(),
			Type:        string(a.Type),
			Severity:    string(a.Severity),
			Message:     a.Message,
			Details:     a.Details,
			MetricValue: a.MetricValue,
			Threshold:   a.Threshold,
			CreatedAt:   a.CreatedAt,
		})
	}
	httputil.Respond(w, http.StatusOK, out)
}
