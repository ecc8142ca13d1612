package v1

import "time"

// Screen is the API representation of a registered display device
type Screen struct {
	ID             string     `json:"id"`
	DeviceID       string     `json:"device_id"`
	OrganizationID string     `json:"organization_id"`
	LocationID     string     `json:"location_id,omitempty"`
	Name           string     `json:"name"`
	DeviceType     string     `json:"device_type,omitempty"`
	Status         string     `json:"status"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`
	LastHeartbeat  *time.Time `json:"last_heartbeat,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Telemetry is a device's self-reported resource sample
type Telemetry struct {
	CPUPercent     float64  `json:"cpu_percent"`
	MemoryPercent  float64  `json:"memory_percent"`
	StoragePercent float64  `json:"storage_percent"`
	Temperature    *float64 `json:"temperature,omitempty"`
	UptimeSeconds  float64  `json:"uptime_seconds,omitempty"`
	ErrorDetail    string   `json:"error_detail,omitempty"`
}

// HeartbeatRequest is a device's periodic self-report
type HeartbeatRequest struct {
	// Status is the device's own view of its health
	Status string `json:"status"`
	// ActiveScheduleID is what the device believes it is obeying
	ActiveScheduleID string `json:"active_schedule_id,omitempty"`
	// CurrentPlaylistID is what the device is actually showing
	CurrentPlaylistID string     `json:"current_playlist_id,omitempty"`
	Telemetry         *Telemetry `json:"telemetry,omitempty"`
}

// HeartbeatResponse tells the device what to do next
type HeartbeatResponse struct {
	// SyncRequired asks the device to refetch its schedule state
	SyncRequired bool `json:"sync_required"`
	// ActiveScheduleCount is how many schedules currently match the device
	ActiveScheduleCount int `json:"active_schedule_count"`
	// Emergency signals the emergency polling regime is in force
	Emergency bool `json:"emergency"`
	// PollIntervalSeconds is how long to wait before the next poll
	PollIntervalSeconds int `json:"poll_interval_seconds"`
	ServerTime          time.Time `json:"server_time"`
}

// SweepResponse summarizes one health sweep run
type SweepResponse struct {
	CheckedAt         time.Time `json:"checked_at"`
	TotalDevices      int       `json:"total_devices"`
	OnlineDevices     int       `json:"online_devices"`
	OfflineDevices    int       `json:"offline_devices"`
	PerformanceIssues int       `json:"performance_issues"`
	AlertsCreated     int       `json:"alerts_created"`
	AlertsSuppressed  int       `json:"alerts_suppressed"`
}

// Alert is the API representation of a monitor alert
type Alert struct {
	ID          string                 `json:"id"`
	ScreenID    string                 `json:"screen_id"`
	Type        string                 `json:"type"`
	Severity    string                 `json:"severity"`
	Message     string                 `json:"message"`
	Details     map[string]interface{} `json:"details,omitempty"`
	MetricValue *float64               `json:"metric_value,omitempty"`
	Threshold   *float64               `json:"threshold,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
