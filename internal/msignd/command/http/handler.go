// Package http exposes the command queue endpoints
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
	"github.com/mesophy/mesophy-signage/internal/msignd/auth"
	"github.com/mesophy/mesophy-signage/internal/msignd/command"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/httputil"
	"github.com/mesophy/mesophy-signage/internal/msignd/ratelimit"
)

// Handler encapsulates the HTTP API for the command queue
type Handler struct {
	service   command.Service
	auth      auth.Service
	ratelimit ratelimit.Service
	logger    *slog.Logger
}

// NewHandler creates a new command HTTP handler
func NewHandler(service command.Service, authSvc auth.Service, ratelimitSvc ratelimit.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		auth:      authSvc,
		ratelimit: ratelimitSvc,
		logger:    logger,
	}
}

// DeviceRouter returns the router for device-facing command endpoints
func (h *Handler) DeviceRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(auth.DeviceAuth(h.auth))
	r.Use(ratelimit.Middleware(h.ratelimit, h.logger, ratelimit.Options{
		LimitType: "device_poll",
		GetToken: func(r *http.Request) string {
			return r.Header.Get("Authorization")
		},
	}))

	r.Post("/poll", h.Poll)
	r.Post("/{commandID}/report", h.Report)

	return r
}

// ManagementRouter returns the router for operator command endpoints,
// mounted under a device id
func (h *Handler) ManagementRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/", h.Enqueue)
	r.Get("/", h.List)
	r.Delete("/", h.CancelAll)
	r.Get("/{commandID}", h.Get)
	r.Delete("/{commandID}", h.Cancel)

	return r
}

// SweepRouter returns the router for fleet-wide queue maintenance, meant to
// be driven by an external scheduler rather than a built-in timer
func (h *Handler) SweepRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/expire", h.Expire)

	return r
}

// Poll claims due commands for the authenticated screen
func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) {
	screenID, ok := auth.ScreenIDFromContext(r.Context())
	if !ok {
		httputil.Error(w, r, h.logger, errors.NewError("UNAUTHORIZED",
			"authentication required", "Poll", errors.ErrUnauthorized))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid limit", "Poll", errors.ErrInvalidInput))
			return
		}
		limit = n
	}

	claimed, err := h.service.Poll(r.Context(), screenID, limit)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	out := make([]v1.Command, 0, len(claimed))
	for _, cmd := range claimed {
		out = append(out, toAPICommand(cmd))
	}
	httputil.Respond(w, http.StatusOK, v1.CommandPollResponse{
		Commands:   out,
		ServerTime: time.Now().UTC(),
	})
}

// Report finalizes a command with the device's terminal outcome
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	screenID, ok := auth.ScreenIDFromContext(r.Context())
	if !ok {
		httputil.Error(w, r, h.logger, errors.NewError("UNAUTHORIZED",
			"authentication required", "Report", errors.ErrUnauthorized))
		return
	}

	commandID, err := uuid.Parse(chi.URLParam(r, "commandID"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid command id", "Report", errors.ErrInvalidInput))
		return
	}

	var req v1.CommandReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid request body", "Report", errors.ErrInvalidInput))
		return
	}

	report := command.ReportRequest{
		Status: command.Status(req.Status),
		Result: req.Result,
	}
	if req.ErrorMessage != "" {
		report.ErrorMessage = &req.ErrorMessage
	}

	cmd, err := h.service.Report(r.Context(), screenID, commandID, report)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusOK, toAPICommand(cmd))
}

// Enqueue creates a new command for the device in the route
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	var req v1.CommandEnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid request body", "Enqueue", errors.ErrInvalidInput))
		return
	}

	cmd, err := h.service.Enqueue(r.Context(), deviceID, command.EnqueueRequest{
		Type:           command.Type(req.Type),
		Payload:        req.Payload,
		Priority:       req.Priority,
		TimeoutSeconds: req.TimeoutSeconds,
		ScheduledFor:   req.ScheduledFor,
		CreatedBy:      req.CreatedBy,
	})
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusCreated, toAPICommand(cmd))
}

// List returns the device's recent commands, newest first
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid limit", "List", errors.ErrInvalidInput))
			return
		}
		limit = n
	}

	commands, err := h.service.ListForDevice(r.Context(), deviceID, limit)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	out := make([]v1.Command, 0, len(commands))
	for _, cmd := range commands {
		out = append(out, toAPICommand(cmd))
	}
	httputil.Respond(w, http.StatusOK, out)
}

// Get returns one command by id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	commandID, err := uuid.Parse(chi.URLParam(r, "commandID"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid command id", "Get", errors.ErrInvalidInput))
		return
	}

	cmd, err := h.service.Get(r.Context(), commandID)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusOK, toAPICommand(cmd))
}

// Cancel withdraws one pending command
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	commandID, err := uuid.Parse(chi.URLParam(r, "commandID"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid command id", "Cancel", errors.ErrInvalidInput))
		return
	}

	cancelled, err := h.service.Cancel(r.Context(), deviceID, commandID)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusOK, v1.CommandCancelResponse{Cancelled: cancelled})
}

// CancelAll withdraws every pending command for a device
func (h *Handler) CancelAll(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	cancelled, err := h.service.CancelAll(r.Context(), deviceID)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusOK, v1.CommandCancelResponse{Cancelled: cancelled})
}

// Expire fails executing commands that outlived their timeout
func (h *Handler) Expire(w http.ResponseWriter, r *http.Request) {
	expired, err := h.service.ExpireStale(r.Context())
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusOK, v1.CommandExpireResponse{Expired: expired})
}

func toAPICommand(cmd *command.Command) v1.Command {
	out := v1.Command{
		ID:             cmd.ID.String(),
		ScreenID:       cmd.ScreenID.String(),
		Type:           string(cmd.Type),
		Payload:        cmd.Payload,
		Priority:       cmd.Priority,
		TimeoutSeconds: cmd.TimeoutSeconds,
		ScheduledFor:   cmd.ScheduledFor,
		Status:         string(cmd.Status),
		StartedAt:      cmd.StartedAt,
		CompletedAt:    cmd.CompletedAt,
		Result:         cmd.Result,
		CreatedBy:      cmd.CreatedBy,
		CreatedAt:      cmd.CreatedAt,
	}
	if cmd.ErrorMessage != nil {
		out.ErrorMessage = *cmd.ErrorMessage
	}
	return out
}
