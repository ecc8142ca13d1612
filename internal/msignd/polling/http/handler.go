// Package http exposes the polling period management endpoints
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
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/httputil"
	"github.com/mesophy/mesophy-signage/internal/msignd/polling"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// Handler encapsulates the HTTP API for polling periods
type Handler struct {
	repo    polling.Repository
	service *polling.Service
	logger  *slog.Logger
}

// NewHandler creates a new polling period HTTP handler
func NewHandler(repo polling.Repository, service *polling.Service, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, service: service, logger: logger}
}

// ManagementRouter returns the router for operator polling endpoints
func (h *Handler) ManagementRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", h.List)
	r.Post("/", h.Save)
	r.Get("/current", h.Current)
	r.Delete("/{periodID}", h.Delete)

	return r
}

// List returns an organization's polling periods in stored order
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.URL.Query().Get("organization_id"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"organization_id is required", "List", errors.ErrInvalidInput))
		return
	}

	periods, err := h.repo.ListForOrganization(r.Context(), orgID)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	out := make([]v1.PollingPeriod, 0, len(periods))
	for _, p := range periods {
		out = append(out, toAPIPeriod(p))
	}
	httputil.Respond(w, http.StatusOK, out)
}

// Save creates or updates a polling period
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req v1.PollingPeriod
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid request body", "Save", errors.ErrInvalidInput))
		return
	}

	period, err := fromAPIPeriod(&req)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	if err := h.repo.Save(r.Context(), period); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusCreated, toAPIPeriod(period))
}

// Current answers the operator's "what cadence is in force now" query
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.URL.Query().Get("organization_id"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"organization_id is required", "Current", errors.ErrInvalidInput))
		return
	}

	cadence := h.service.IntervalFor(r.Context(), orgID, time.Now().UTC())
	httputil.Respond(w, http.StatusOK, v1.PollingIntervalResponse{
		IntervalSeconds: cadence.IntervalSeconds,
		Emergency:       cadence.Emergency,
		PeriodName:      cadence.PeriodName,
	})
}

// Delete removes a polling period
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "periodID"))
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid period id", "Delete", errors.ErrInvalidInput))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}
	httputil.Respond(w, http.StatusNoContent, nil)
}

func toAPIPeriod(p *polling.Period) v1.PollingPeriod {
	return v1.PollingPeriod{
		ID:              p.ID.String(),
		OrganizationID:  p.OrganizationID.String(),
		Name:            p.Name,
		StartTime:       p.StartTime.String(),
		EndTime:         p.EndTime.String(),
		IntervalSeconds: p.IntervalSeconds,
		Emergency:       p.Emergency,
		Position:        p.Position,
	}
}

func fromAPIPeriod(in *v1.PollingPeriod) (*polling.Period, error) {
	const op = "fromAPIPeriod"

	invalid := func(msg string) error {
		return errors.NewError("INVALID_INPUT", msg, op, errors.ErrInvalidInput)
	}

	out := &polling.Period{
		Name:      in.Name,
		Emergency: in.Emergency,
		Position:  in.Position,
	}

	if in.ID != "" {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, invalid("invalid period id")
		}
		out.ID = id
	} else {
		out.ID = uuid.New()
	}

	orgID, err := uuid.Parse(in.OrganizationID)
	if err != nil {
		return nil, invalid("invalid organization id")
	}
	out.OrganizationID = orgID

	start, err := schedule.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return nil, invalid("invalid start_time, want HH:MM")
	}
	out.StartTime = start
	end, err := schedule.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return nil, invalid("invalid end_time, want HH:MM")
	}
	out.EndTime = end
	if start >= end {
		return nil, invalid("start_time must come before end_time")
	}

	if in.IntervalSeconds < 1 {
		return nil, invalid("interval_seconds must be positive")
	}
	out.IntervalSeconds = in.IntervalSeconds

	return out, nil
}
