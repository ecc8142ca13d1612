package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mesophy/mesophy-signage/internal/msignd/alert"
	alertpg "github.com/mesophy/mesophy-signage/internal/msignd/alert/postgres"
	"github.com/mesophy/mesophy-signage/internal/msignd/auth"
	authpg "github.com/mesophy/mesophy-signage/internal/msignd/auth/postgres"
	commandhttp "github.com/mesophy/mesophy-signage/internal/msignd/command/http"
	commandpg "github.com/mesophy/mesophy-signage/internal/msignd/command/postgres"
	commandservice "github.com/mesophy/mesophy-signage/internal/msignd/command/service"
	"github.com/mesophy/mesophy-signage/internal/msignd/config"
	devicehttp "github.com/mesophy/mesophy-signage/internal/msignd/device/http"
	devicepg "github.com/mesophy/mesophy-signage/internal/msignd/device/postgres"
	deviceredis "github.com/mesophy/mesophy-signage/internal/msignd/device/redis"
	deviceservice "github.com/mesophy/mesophy-signage/internal/msignd/device/service"
	"github.com/mesophy/mesophy-signage/internal/msignd/httputil"
	"github.com/mesophy/mesophy-signage/internal/msignd/polling"
	pollinghttp "github.com/mesophy/mesophy-signage/internal/msignd/polling/http"
	pollingpg "github.com/mesophy/mesophy-signage/internal/msignd/polling/postgres"
	"github.com/mesophy/mesophy-signage/internal/msignd/ratelimit"
	ratelimitredis "github.com/mesophy/mesophy-signage/internal/msignd/ratelimit/redis"
	schedulehttp "github.com/mesophy/mesophy-signage/internal/msignd/schedule/http"
	schedulepg "github.com/mesophy/mesophy-signage/internal/msignd/schedule/postgres"
	scheduleservice "github.com/mesophy/mesophy-signage/internal/msignd/schedule/service"
)

// setupRouter wires the services together and builds the full route tree
func setupRouter(cfg *config.Config, db *sql.DB, redisClient *redis.Client, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(httputil.RequestIDHeader)
	r.Use(middleware.RealIP)
	r.Use(httputil.Recover(logger))
	r.Use(httputil.RequestLogger(logger))

	ratelimitSvc := ratelimit.NewService(ratelimitredis.NewStore(redisClient), logger)

	authSvc := auth.NewService(authpg.NewRepository(db, logger), logger)

	deviceRepo := devicepg.NewRepository(db, logger)
	telemetryStore := deviceredis.NewTelemetryStore(redisClient)

	scheduleRepo := schedulepg.NewRepository(db, logger)
	scheduleSvc := scheduleservice.New(scheduleRepo, deviceRepo, logger)

	alertRepo := alertpg.NewRepository(db, logger)
	alertSvc := alert.NewService(alertRepo, cfg.Monitor.AlertSuppression, logger)

	pollingRepo := pollingpg.NewRepository(db, logger)
	pollingSvc := polling.NewService(pollingRepo, cfg.Polling.DefaultIntervalSeconds, logger)

	deviceSvc := deviceservice.New(
		deviceRepo,
		telemetryStore,
		scheduleSvc,
		alertSvc,
		pollingSvc,
		deviceservice.Thresholds{
			OfflineAfter:         cfg.Monitor.OfflineThreshold,
			CriticalOfflineAfter: cfg.Monitor.CriticalOfflineTime,
			TelemetryRecency:     cfg.Monitor.TelemetryRecency,
			MemoryWarnPercent:    cfg.Monitor.MemoryWarnPercent,
			StorageWarnPercent:   cfg.Monitor.StorageWarnPercent,
			CPUWarnPercent:       cfg.Monitor.CPUWarnPercent,
			MemoryCritPercent:    cfg.Monitor.MemoryCritPercent,
			StorageCritPercent:   cfg.Monitor.StorageCritPercent,
			CPUCritPercent:       cfg.Monitor.CPUCritPercent,
		},
		logger,
	)

	commandSvc := commandservice.New(commandpg.NewRepository(db, logger), deviceRepo, logger)

	commandHandler := commandhttp.NewHandler(commandSvc, authSvc, ratelimitSvc, logger)
	scheduleHandler := schedulehttp.NewHandler(scheduleSvc, deviceSvc, authSvc, logger)
	deviceHandler := devicehttp.NewHandler(deviceSvc, authSvc, pollingSvc, alertRepo, ratelimitSvc, logger)
	pollingHandler := pollinghttp.NewHandler(pollingRepo, pollingSvc, logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Device surface: pairing, heartbeat, command queue, schedule sync
		r.Mount("/screens", deviceHandler.DeviceRouter(
			commandHandler.DeviceRouter(),
			scheduleHandler.DeviceRouter(),
		))

		// Operator surface
		r.Group(func(r chi.Router) {
			r.Use(auth.OperatorAuth(cfg.Auth.OperatorToken))
			r.Use(ratelimit.Middleware(ratelimitSvc, logger, ratelimit.Options{
				LimitType: "api_request",
			}))

			r.Mount("/devices", deviceHandler.ManagementRouter(commandHandler.ManagementRouter()))
			r.Mount("/commands", commandHandler.SweepRouter())
			r.Mount("/schedules", scheduleHandler.ManagementRouter())
			r.Mount("/polling-periods", pollingHandler.ManagementRouter())
			r.Mount("/monitor", deviceHandler.MonitorRouter())
		})
	})

	return r
}
