package command

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for command persistence
type Repository interface {
	// Create persists a new pending command
	Create(ctx context.Context, cmd *Command) error

	// FindByID retrieves a command by id
	FindByID(ctx context.Context, id uuid.UUID) (*Command, error)

	// ListForScreen retrieves a screen's commands, newest first
	ListForScreen(ctx context.Context, screenID uuid.UUID, limit int) ([]*Command, error)

	// ClaimPending atomically transitions up to limit due pending commands
	// for the screen to executing and returns them, highest priority first.
	// Two concurrent claims must never both receive the same command; this
	// is the queue's one hard mutual-exclusion point.
	ClaimPending(ctx context.Context, screenID uuid.UUID, limit int, now time.Time) ([]*Command, error)

	// Finish transitions an executing or pending command to the given
	// terminal status. Returns the updated command, or (nil, false) when
	// the command was already terminal.
	Finish(ctx context.Context, id uuid.UUID, status Status, result map[string]interface{}, errorMessage *string, at time.Time) (*Command, bool, error)

	// CancelPending cancels one pending command. Reports false when the
	// command exists but is no longer pending.
	CancelPending(ctx context.Context, id uuid.UUID) (bool, error)

	// CancelAllPending cancels every pending command for a screen and
	// returns how many were affected
	CancelAllPending(ctx context.Context, screenID uuid.UUID) (int, error)

	// ListStale lists executing commands past started_at + timeout as of now
	ListStale(ctx context.Context, now time.Time) ([]*Command, error)

	// FailStale marks stale executing commands failed and returns the count.
	// Meant for the external staleness sweep, not an internal timer.
	FailStale(ctx context.Context, now time.Time) (int, error)

	// AppendEvent records a dispatch-activity audit entry for a screen
	AppendEvent(ctx context.Context, screenID, commandID uuid.UUID, event string, detail map[string]interface{}) error
}

// EnqueueRequest carries the caller-supplied fields for a new command
type EnqueueRequest struct {
	Type           Type
	Payload        map[string]interface{}
	Priority       int        // 0 means default
	TimeoutSeconds int        // 0 means default
	ScheduledFor   *time.Time // nil means now
	CreatedBy      string
}

// ReportRequest carries a device's terminal report for a command
type ReportRequest struct {
	Status       Status
	Result       map[string]interface{}
	ErrorMessage *string
}

// Service defines command queue business operations
type Service interface {
	// Enqueue validates and creates a pending command for a device
	Enqueue(ctx context.Context, deviceID string, req EnqueueRequest) (*Command, error)

	// Poll claims up to limit due commands for the screen. Claiming is
	// atomic per command; a concurrent retry poll sees already-claimed
	// commands as executing and skips them.
	Poll(ctx context.Context, screenID uuid.UUID, limit int) ([]*Command, error)

	// Report finalizes a command with the device's terminal status. A
	// repeat report on a terminal command is a benign no-op that returns
	// the stored command unchanged.
	Report(ctx context.Context, screenID, commandID uuid.UUID, req ReportRequest) (*Command, error)

	// Cancel cancels one pending command. Non-pending targets are a no-op
	// reported back via the returned count.
	Cancel(ctx context.Context, deviceID string, commandID uuid.UUID) (int, error)

	// CancelAll cancels every pending command for a device
	CancelAll(ctx context.Context, deviceID string) (int, error)

	// Get retrieves a command by id
	Get(ctx context.Context, id uuid.UUID) (*Command, error)

	// ListForDevice retrieves a device's recent commands
	ListForDevice(ctx context.Context, deviceID string, limit int) ([]*Command, error)

	// ExpireStale fails executing commands past their timeout; exposed for
	// the companion sweep process
	ExpireStale(ctx context.Context) (int, error)
}
