// Package command implements the per-screen remote command queue
package command

import (
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
)

// Status represents a command's lifecycle state. Transitions are monotonic:
// pending -> executing -> one of the terminal states. There is no
// resurrection from a terminal state.
type Status string

const (
	// StatusPending indicates a command waiting to be claimed
	StatusPending Status = "pending"
	// StatusExecuting indicates a command claimed by a device poll
	StatusExecuting Status = "executing"
	// StatusCompleted indicates the device reported success
	StatusCompleted Status = "completed"
	// StatusFailed indicates the device reported failure
	StatusFailed Status = "failed"
	// StatusCancelled indicates the command was withdrawn before delivery
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status is a terminal state
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Type identifies a remote instruction. The set is closed: the device-side
// executor only knows these.
type Type string

const (
	TypeRestart          Type = "restart"
	TypeRestartContent   Type = "restart_content"
	TypeReboot           Type = "reboot"
	TypeShutdown         Type = "shutdown"
	TypeSyncContent      Type = "sync_content"
	TypeClearCache       Type = "clear_cache"
	TypeHealthCheck      Type = "health_check"
	TypeUpdateConfig     Type = "update_config"
	TypeGetLogs          Type = "get_logs"
	TypeTestDisplay      Type = "test_display"
	TypeEmergencyMessage Type = "emergency_message"
)

var knownTypes = map[Type]struct{}{
	TypeRestart:          {},
	TypeRestartContent:   {},
	TypeReboot:           {},
	TypeShutdown:         {},
	TypeSyncContent:      {},
	TypeClearCache:       {},
	TypeHealthCheck:      {},
	TypeUpdateConfig:     {},
	TypeGetLogs:          {},
	TypeTestDisplay:      {},
	TypeEmergencyMessage: {},
}

// ValidType reports whether t is a known command type
func ValidType(t Type) bool {
	_, ok := knownTypes[t]
	return ok
}

// Defaults applied when the caller leaves fields unset
const (
	DefaultPriority       = 5
	MinPriority           = 1
	MaxPriority           = 10
	DefaultTimeoutSeconds = 300
)

// Command is one remote instruction targeted at exactly one screen. Payload
// is opaque at this layer; shape validation belongs to the device executor.
type Command struct {
	ID             uuid.UUID
	ScreenID       uuid.UUID
	Type           Type
	Payload        map[string]interface{}
	Priority       int
	TimeoutSeconds int
	ScheduledFor   time.Time
	Status         Status
	StartedAt      *time.Time
	CompletedAt    *time.Time
	Result         map[string]interface{}
	ErrorMessage   *string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New builds a pending command with defaults for unset fields
func New(screenID uuid.UUID, cmdType Type, createdBy string) (*Command, error) {
	const op = "Command.New"

	if !ValidType(cmdType) {
		return nil, errors.NewError("INVALID_INPUT",
			"unknown command type: "+string(cmdType), op, errors.ErrInvalidInput)
	}
	if screenID == uuid.Nil {
		return nil, errors.NewError("INVALID_INPUT", "screen id is required", op, errors.ErrInvalidInput)
	}

	now := time.Now()
	return &Command{
		ID:             uuid.New(),
		ScreenID:       screenID,
		Type:           cmdType,
		Priority:       DefaultPriority,
		TimeoutSeconds: DefaultTimeoutSeconds,
		ScheduledFor:   now,
		Status:         StatusPending,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Stale reports whether an executing command has outlived its timeout
func (c *Command) Stale(now time.Time) bool {
	if c.Status != StatusExecuting || c.StartedAt == nil {
		return false
	}
	return now.Sub(*c.StartedAt) > time.Duration(c.TimeoutSeconds)*time.Second
}

// ExecutionDuration returns the claim-to-report elapsed time, zero when the
// command never ran to a report
func (c *Command) ExecutionDuration() time.Duration {
	if c.StartedAt == nil || c.CompletedAt == nil {
		return 0
	}
	return c.CompletedAt.Sub(*c.StartedAt)
}
