// Package http exposes the device-facing and management screen endpoints
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mesophy/mesophy-signage/internal/msignd/alert"
	"github.com/mesophy/mesophy-signage/internal/msignd/auth"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/polling"
	"github.com/mesophy/mesophy-signage/internal/msignd/ratelimit"
)

// Handler encapsulates the HTTP API for screens, pairing and monitoring
type Handler struct {
	service   device.Service
	auth      auth.Service
	polling   *polling.Service
	alerts    alert.Repository
	ratelimit ratelimit.Service
	logger    *slog.Logger
}

// NewHandler creates a new screen HTTP handler
func NewHandler(
	service device.Service,
	authSvc auth.Service,
	pollingSvc *polling.Service,
	alerts alert.Repository,
	ratelimitSvc ratelimit.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		service:   service,
		auth:      authSvc,
		polling:   pollingSvc,
		alerts:    alerts,
		ratelimit: ratelimitSvc,
		logger:    logger,
	}
}

// DeviceRouter returns the router for device-facing screen endpoints.
// The command and schedule routers are mounted here so every device route
// lives under one path prefix.
func (h *Handler) DeviceRouter(commands, schedules http.Handler) http.Handler {
	r := chi.NewRouter()

	// Pairing happens before the device has a credential
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Use(ratelimit.Middleware(h.ratelimit, h.logger, ratelimit.Options{
			LimitType: "pairing_code",
		}))
		r.Post("/pairing/code", h.RequestPairingCode)
		r.Post("/pairing/exchange", h.ExchangePairingCode)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(auth.DeviceAuth(h.auth))
		r.With(ratelimit.Middleware(h.ratelimit, h.logger, ratelimit.Options{
			LimitType: "heartbeat",
			GetToken:  bearerToken,
		})).Post("/heartbeat", h.Heartbeat)
		r.Get("/polling-interval", h.PollingInterval)
	})

	r.Mount("/commands", commands)
	r.Mount("/schedule", schedules)

	return r
}

// ManagementRouter returns the router for operator screen endpoints. The
// per-device command queue router is mounted under each device.
func (h *Handler) ManagementRouter(commands http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", h.ListScreens)
	r.Post("/pairing/activate", h.ActivatePairingCode)
	r.Get("/{deviceID}", h.GetScreen)
	r.Mount("/{deviceID}/commands", commands)

	return r
}

// MonitorRouter returns the router for health sweep and alert endpoints
func (h *Handler) MonitorRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/sweep", h.RunSweep)
	r.Get("/alerts", h.ListAlerts)

	return r
}

func bearerToken(r *http.Request) string {
	return r.Header.Get("Authorization")
}
