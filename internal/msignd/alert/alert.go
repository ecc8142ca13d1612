// Package alert turns monitor findings into deduplicated alert records
package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type identifies what condition an alert describes
type Type string

const (
	// TypeDeviceOffline indicates heartbeat silence past the threshold
	TypeDeviceOffline Type = "device_offline"
	// TypePerformanceWarning indicates resource usage past a threshold
	TypePerformanceWarning Type = "performance_warning"
)

// Severity grades an alert by magnitude
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Alert is an immutable record of a monitor finding. Alerts are never
// mutated, only superseded by newer ones.
type Alert struct {
	ID          uuid.UUID
	ScreenID    uuid.UUID
	Type        Type
	Severity    Severity
	Message     string
	Details     map[string]interface{}
	MetricValue *float64
	Threshold   *float64
	CreatedAt   time.Time
}

// Repository defines the interface for alert persistence
type Repository interface {
	// Create persists a new alert
	Create(ctx context.Context, alert *Alert) error

	// LatestByScreenAndType returns the most recent alert of the given type
	// for the screen, or a not-found error when none exists
	LatestByScreenAndType(ctx context.Context, screenID uuid.UUID, alertType Type) (*Alert, error)

	// ListRecent returns recent alerts, newest first
	ListRecent(ctx context.Context, limit int) ([]*Alert, error)
}

// Dispatcher creates alerts for monitor findings, suppressing duplicates of
// the same (screen, type) within the suppression window
type Dispatcher interface {
	// Dispatch records the alert unless a same-typed alert for the screen
	// exists inside the suppression window. Returns whether a new alert
	// was created.
	Dispatch(ctx context.Context, alert *Alert) (bool, error)
}
