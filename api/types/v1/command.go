package v1

import "time"

// Command is the API representation of a queued remote command
type Command struct {
	ID             string                 `json:"id"`
	ScreenID       string                 `json:"screen_id"`
	Type           string                 `json:"type"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	Priority       int                    `json:"priority"`
	TimeoutSeconds int                    `json:"timeout_seconds"`
	ScheduledFor   time.Time              `json:"scheduled_for"`
	Status         string                 `json:"status"`
	StartedAt      *time.Time             `json:"started_at,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	Result         map[string]interface{} `json:"result,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	CreatedBy      string                 `json:"created_by,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// CommandEnqueueRequest creates a new command for a device
type CommandEnqueueRequest struct {
	Type           string                 `json:"type"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	Priority       int                    `json:"priority,omitempty"`
	TimeoutSeconds int                    `json:"timeout_seconds,omitempty"`
	ScheduledFor   *time.Time             `json:"scheduled_for,omitempty"`
	CreatedBy      string                 `json:"created_by,omitempty"`
}

// CommandPollResponse hands a polling device its claimed commands
type CommandPollResponse struct {
	Commands   []Command `json:"commands"`
	ServerTime time.Time `json:"server_time"`
}

// CommandReportRequest carries a device's terminal outcome for a command
type CommandReportRequest struct {
	Status       string                 `json:"status"`
	Result       map[string]interface{} `json:"result,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

// CommandCancelResponse reports how many commands a cancel affected
type CommandCancelResponse struct {
	Cancelled int `json:"cancelled"`
}

// CommandExpireResponse reports how many executing commands a staleness
// sweep failed
type CommandExpireResponse struct {
	Expired int `json:"expired"`
}
