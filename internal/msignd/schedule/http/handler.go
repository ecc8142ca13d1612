// Package http exposes the schedule management and resolution endpoints
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
	"github.com/mesophy/mesophy-signage/internal/msignd/auth"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/httputil"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// Handler encapsulates the HTTP API for schedules
type Handler struct {
	service schedule.Service
	screens device.Service
	auth    auth.Service
	logger  *slog.Logger
}

// NewHandler creates a new schedule HTTP handler
func NewHandler(service schedule.Service, screens device.Service, authSvc auth.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		screens: screens,
		auth:    authSvc,
		logger:  logger,
	}
}

// DeviceRouter returns the router for device-facing schedule endpoints
func (h *Handler) DeviceRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(auth.DeviceAuth(h.auth))

	r.Get("/", h.ResolveSelf)

	return r
}

// ManagementRouter returns the router for operator schedule endpoints
func (h *Handler) ManagementRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/conflicts", h.CheckConflicts)
	r.Get("/resolve", h.Resolve)
	r.Get("/{scheduleID}", h.Get)
	r.Delete("/{scheduleID}", h.Deactivate)

	return r
}

// ResolveSelf resolves the authenticated device's schedule state
func (h *Handler) ResolveSelf(w http.ResponseWriter, r *http.Request) {
	screenID, ok := auth.ScreenIDFromContext(r.Context())
	if !ok {
		httputil.Error(w, r, h.logger, errors.NewError("UNAUTHORIZED",
			"authentication required", "ResolveSelf", errors.ErrUnauthorized))
		return
	}

	screen, err := h.screens.Get(r.Context(), screenID)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	h.resolveAndRespond(w, r, screen.DeviceID)
}

// Resolve answers an operator's "what should this screen be showing" query
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"device_id is required", "Resolve", errors.ErrInvalidInput))
		return
	}
	h.resolveAndRespond(w, r, deviceID)
}

func (h *Handler) resolveAndRespond(w http.ResponseWriter, r *http.Request, deviceID string) {
	at := time.Now().UTC()
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid timestamp, want RFC 3339", "Resolve", errors.ErrInvalidInput))
			return
		}
		at = parsed.UTC()
	}

	resolution, err := h.service.Resolve(r.Context(), deviceID, at)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	resp := v1.ScheduleResolution{
		Active:     make([]v1.Schedule, 0, len(resolution.Active)),
		ResolvedAt: at,
	}
	for _, s := range resolution.Active {
		resp.Active = append(resp.Active, toAPISchedule(s))
	}
	if resolution.Winner != nil {
		winner := toAPISchedule(resolution.Winner)
		resp.Winner = &winner
	}
	httputil.Respond(w, http.StatusOK, resp)
}

// Create validates and persists a new schedule
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req v1.Schedule
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid request body", "Create", errors.ErrInvalidInput))
		return
	}

	sched, err := fromAPISchedule(&req)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	if err := h.service.Create(r.Context(), sched); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusCreated, toAPISchedule(sched))
}

// List returns an organization's schedules
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.URL.Query().Get("organization_id"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"organization_id is required", "List", errors.ErrInvalidInput))
		return
	}

	schedules, err := h.service.List(r.Context(), orgID)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	out := make([]v1.Schedule, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, toAPISchedule(s))
	}
	httputil.Respond(w, http.StatusOK, out)
}

// Get returns one schedule by id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "scheduleID"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid schedule id", "Get", errors.ErrInvalidInput))
		return
	}

	sched, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusOK, toAPISchedule(sched))
}

// Deactivate retires a schedule
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "scheduleID"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid schedule id", "Deactivate", errors.ErrInvalidInput))
		return
	}

	if err := h.service.Deactivate(r.Context(), id); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusNoContent, nil)
}

// CheckConflicts runs the advisory conflict check on a candidate schedule
func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	var req v1.Schedule
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid request body", "CheckConflicts", errors.ErrInvalidInput))
		return
	}

	candidate, err := fromAPISchedule(&req)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	report, err := h.service.FindConflicts(r.Context(), candidate, nil)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	resp := v1.ScheduleConflictReport{HasConflicts: report.HasConflicts}
	for _, sc := range report.Screens {
		conflict := v1.ScheduleConflict{
			DeviceID: sc.Screen.DeviceID,
			ScreenID: sc.Screen.ID.String(),
		}
		for _, s := range sc.Conflicts {
			conflict.Conflicts = append(conflict.Conflicts, toAPISchedule(s))
		}
		resp.Screens = append(resp.Screens, conflict)
	}
	for _, s := range report.Global {
		resp.Global = append(resp.Global, toAPISchedule(s))
	}
	httputil.Respond(w, http.StatusOK, resp)
}
