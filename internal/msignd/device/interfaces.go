package device

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for screen persistence
type Repository interface {
	// Save persists a screen to storage
	Save(ctx context.Context, screen *Screen) error

	// FindByID retrieves a screen by its record id
	FindByID(ctx context.Context, id uuid.UUID) (*Screen, error)

	// FindByDeviceID retrieves a screen by its stable device identifier
	FindByDeviceID(ctx context.Context, deviceID string) (*Screen, error)

	// List retrieves screens matching the given filter
	List(ctx context.Context, filter Filter) ([]*Screen, error)

	// UpdateHeartbeat records a heartbeat: status, last_seen, last_heartbeat.
	// The guard timestamp prevents an out-of-order heartbeat from moving
	// last_seen backwards; status itself stays last-writer-wins.
	UpdateHeartbeat(ctx context.Context, id uuid.UUID, status Status, seenAt time.Time) error

	// UpdateStatus sets the status field only (used by the offline sweep)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// Delete removes a screen from storage
	Delete(ctx context.Context, id uuid.UUID) error
}

// Filter defines criteria for listing screens
type Filter struct {
	// OrganizationID restricts to one organization when set
	OrganizationID uuid.UUID
	// LocationIDs filters by location
	LocationIDs []uuid.UUID
	// DeviceTypes filters by device-type tag
	DeviceTypes []string
	// Statuses filters by current status
	Statuses []Status
}

// TelemetryStore holds the most recent telemetry sample per device.
// Samples expire on their own after a short retention window.
type TelemetryStore interface {
	// SaveSample stores the latest sample for a device
	SaveSample(ctx context.Context, sample *Telemetry) error

	// LatestSample returns the most recent sample for a device, or nil when
	// none is available within the retention window
	LatestSample(ctx context.Context, deviceID string) (*Telemetry, error)
}

// HeartbeatReport is a device's periodic self-report
type HeartbeatReport struct {
	Status            Status
	Telemetry         *Telemetry
	ActiveScheduleID  *uuid.UUID
	CurrentPlaylistID *uuid.UUID
	ReportedAt        time.Time
}

// HeartbeatResult tells the device what to do next
type HeartbeatResult struct {
	SyncRequired        bool
	ActiveScheduleCount int
	Emergency           bool
}

// SweepOptions configures a health sweep run
type SweepOptions struct {
	// OfflineThreshold overrides the configured silence threshold when > 0
	OfflineThreshold time.Duration
	// TriggerAlerts dispatches alerts for findings when true
	TriggerAlerts bool
}

// OfflineFinding describes a device classified offline by silence
type OfflineFinding struct {
	Screen         *Screen
	MinutesOffline float64
}

// PerformanceFinding describes a device exceeding a resource threshold
type PerformanceFinding struct {
	Screen    *Screen
	Metric    string
	Value     float64
	Threshold float64
	Critical  bool
}

// SweepSummary is the outcome of one health sweep
type SweepSummary struct {
	CheckedAt         time.Time
	TotalDevices      int
	OnlineDevices     int
	OfflineDevices    []OfflineFinding
	PerformanceIssues []PerformanceFinding
	AlertsCreated     int
	AlertsSuppressed  int
}

// Service defines screen business operations
type Service interface {
	// Register creates a new screen record for a paired device
	Register(ctx context.Context, screen *Screen) error

	// Get retrieves a screen by record id
	Get(ctx context.Context, id uuid.UUID) (*Screen, error)

	// GetByDeviceID retrieves a screen by device identifier
	GetByDeviceID(ctx context.Context, deviceID string) (*Screen, error)

	// List retrieves screens matching the filter
	List(ctx context.Context, filter Filter) ([]*Screen, error)

	// Heartbeat ingests a device self-report and returns sync guidance
	Heartbeat(ctx context.Context, screen *Screen, report HeartbeatReport) (*HeartbeatResult, error)

	// Sweep classifies silent devices offline and flags resource pressure
	Sweep(ctx context.Context, opts SweepOptions) (*SweepSummary, error)
}
