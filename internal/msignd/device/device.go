// Package device implements the screen registry and health monitoring
package device

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents a screen's current operational status
type Status string

const (
	// StatusOnline indicates a screen that reported recently
	StatusOnline Status = "online"
	// StatusOffline indicates a screen that has gone silent
	StatusOffline Status = "offline"
	// StatusError indicates a screen that self-reported a fault
	StatusError Status = "error"
	// StatusMaintenance indicates a screen taken out of rotation on purpose
	StatusMaintenance Status = "maintenance"
)

// ValidStatus reports whether s is one of the known screen statuses
func ValidStatus(s Status) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusError, StatusMaintenance:
		return true
	}
	return false
}

// Screen represents a physical display device. DeviceID is the stable
// identifier the device itself knows; ID is the server-side record id.
type Screen struct {
	ID             uuid.UUID
	DeviceID       string
	OrganizationID uuid.UUID
	LocationID     *uuid.UUID
	Name           string
	DeviceType     string
	Status         Status
	LastSeen       *time.Time
	LastHeartbeat  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewScreen creates a screen record for a freshly paired device
func NewScreen(deviceID, name string, organizationID uuid.UUID) (*Screen, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("screen name cannot be empty")
	}
	if organizationID == uuid.Nil {
		return nil, fmt.Errorf("organization id cannot be empty")
	}

	now := time.Now()
	return &Screen{
		ID:             uuid.New(),
		DeviceID:       deviceID,
		OrganizationID: organizationID,
		Name:           name,
		Status:         StatusOffline,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// MinutesOffline returns how long the screen has been silent as of now.
// Screens that never reported are treated as silent since creation.
func (s *Screen) MinutesOffline(now time.Time) float64 {
	last := s.CreatedAt
	if s.LastSeen != nil {
		last = *s.LastSeen
	}
	return now.Sub(last).Minutes()
}

// Telemetry is a device's self-reported resource sample. Samples are kept
// only briefly (the most recent one per device) for alerting comparisons.
type Telemetry struct {
	DeviceID       string    `json:"device_id"`
	CPUPercent     float64   `json:"cpu_percent"`
	MemoryPercent  float64   `json:"memory_percent"`
	StoragePercent float64   `json:"storage_percent"`
	Temperature    *float64  `json:"temperature,omitempty"`
	UptimeSeconds  float64   `json:"uptime_seconds"`
	ErrorDetail    string    `json:"error_detail,omitempty"`
	ReportedAt     time.Time `json:"reported_at"`
}
