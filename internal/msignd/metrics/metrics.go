// Package metrics exposes Prometheus collectors for the control server
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HeartbeatsTotal counts heartbeat reports by self-reported status.
	HeartbeatsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msign_heartbeats_total",
		Help: "Total number of device heartbeat reports received",
	}, []string{"status"})

	// CommandsEnqueued counts commands accepted into the queue by type.
	CommandsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msign_commands_enqueued_total",
		Help: "Total number of remote commands enqueued",
	}, []string{"type"})

	// CommandsClaimed counts commands handed to devices on poll.
	CommandsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "msign_commands_claimed_total",
		Help: "Total number of commands claimed by polling devices",
	})

	// CommandsReported counts terminal command reports by outcome.
	CommandsReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msign_commands_reported_total",
		Help: "Total number of terminal command reports",
	}, []string{"status"})

	// CommandDuration tracks device-side execution time from claim to report.
	CommandDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "msign_command_duration_seconds",
		Help:    "Elapsed time between command claim and terminal report",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	// DevicesOffline tracks the offline device count from the last sweep.
	DevicesOffline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "msign_devices_offline",
		Help: "Number of devices classified offline by the last health sweep",
	})

	// SweepDuration tracks health sweep execution time.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "msign_health_sweep_duration_seconds",
		Help:    "Duration of device health sweep runs",
		Buckets: prometheus.DefBuckets,
	})

	// AlertsDispatched counts alert dispatch outcomes.
	AlertsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msign_alerts_dispatched_total",
		Help: "Total number of alerts created or suppressed",
	}, []string{"type", "outcome"})
)
