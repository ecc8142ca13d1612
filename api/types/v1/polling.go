package v1

// PollingPeriod is an organization-defined poll cadence window
type PollingPeriod struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`

	// StartTime and EndTime are HH:MM within one day
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	IntervalSeconds int  `json:"interval_seconds"`
	Emergency       bool `json:"emergency"`
	Position        int  `json:"position"`
}

// PollingIntervalResponse is the advisory cadence for a device
type PollingIntervalResponse struct {
	IntervalSeconds int    `json:"interval_seconds"`
	Emergency       bool   `json:"emergency"`
	PeriodName      string `json:"period_name"`
}

// ErrorResponse is the uniform error body for API failures
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
