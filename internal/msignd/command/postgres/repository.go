// Package postgres implements the command repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/command"
	"github.com/mesophy/mesophy-signage/internal/msignd/database"
)

// Repository implements the command.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL command repository
func NewRepository(db *sql.DB, logger *slog.Logger) command.Repository {
	return &Repository{db: db, logger: logger}
}

const commandColumns = `
	id, screen_id, command_type, payload, priority, timeout_seconds,
	scheduled_for, status, started_at, completed_at, result,
	error_message, created_by, created_at, updated_at`

// Create persists a new pending command
func (r *Repository) Create(ctx context.Context, cmd *command.Command) error {
	const op = "CommandRepository.Create"

	payload, err := marshalJSON(cmd.Payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO commands (
			id, screen_id, command_type, payload, priority, timeout_seconds,
			scheduled_for, status, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		cmd.ID,
		cmd.ScreenID,
		string(cmd.Type),
		payload,
		cmd.Priority,
		cmd.TimeoutSeconds,
		cmd.ScheduledFor,
		string(cmd.Status),
		cmd.CreatedBy,
		cmd.CreatedAt,
		cmd.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert command",
			"error", err,
			"commandID", cmd.ID,
			"operation", op,
		)
		return database.MapError(err, op)
	}
	return nil
}

// FindByID retrieves a command by id
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*command.Command, error) {
	const op = "CommandRepository.FindByID"

	row := r.db.QueryRowContext(ctx,
		`SELECT `+commandColumns+` FROM commands WHERE id = $1`, id)

	cmd, err := scanCommand(row)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return cmd, nil
}

// ListForScreen retrieves a screen's commands, newest first
func (r *Repository) ListForScreen(ctx context.Context, screenID uuid.UUID, limit int) ([]*command.Command, error) {
	const op = "CommandRepository.ListForScreen"

	if limit <= 0 {
		limit = 50
	}
	return r.list(ctx, op, `
		SELECT `+commandColumns+`
		FROM commands
		WHERE screen_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, screenID, limit)
}

// ClaimPending atomically claims up to limit due pending commands. The
// SELECT and UPDATE run as one statement: row locks plus SKIP LOCKED mean a
// concurrent poll cannot observe the same command as pending. A plain
// read-then-write would lose this guarantee.
func (r *Repository) ClaimPending(ctx context.Context, screenID uuid.UUID, limit int, now time.Time) ([]*command.Command, error) {
	const op = "CommandRepository.ClaimPending"

	var claimed []*command.Command
	err := database.RunInTx(ctx, r.db, nil, func(tx *database.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			UPDATE commands
			SET status = 'executing', started_at = $3, updated_at = $3
			WHERE id IN (
				SELECT id FROM commands
				WHERE screen_id = $1
				  AND status = 'pending'
				  AND scheduled_for <= $3
				ORDER BY priority DESC, created_at ASC
				LIMIT $2
				FOR UPDATE SKIP LOCKED
			)
			RETURNING `+commandColumns,
			screenID, limit, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			cmd, err := scanCommand(rows)
			if err != nil {
				return err
			}
			claimed = append(claimed, cmd)
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("failed to claim commands",
			"error", err,
			"screenID", screenID,
			"operation", op,
		)
		return nil, database.MapError(err, op)
	}

	// RETURNING order is not defined; restore delivery order.
	sortByPriority(claimed)
	return claimed, nil
}

// Finish transitions a non-terminal command to the given terminal status
func (r *Repository) Finish(ctx context.Context, id uuid.UUID, status command.Status, result map[string]interface{}, errorMessage *string, at time.Time) (*command.Command, bool, error) {
	const op = "CommandRepository.Finish"

	resultJSON, err := marshalJSON(result)
	if err != nil {
		return nil, false, fmt.Errorf("error marshaling result: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE commands
		SET status = $2, result = $3, error_message = $4,
		    completed_at = $5, updated_at = $5
		WHERE id = $1 AND status IN ('pending', 'executing')
		RETURNING `+commandColumns,
		id, string(status), resultJSON, errorMessage, at,
	)

	cmd, err := scanCommand(row)
	if err != nil {
		if err == sql.ErrNoRows {
			// Row exists but is already terminal, or doesn't exist at all;
			// the caller distinguishes via its earlier lookup.
			return nil, false, nil
		}
		return nil, false, database.MapError(err, op)
	}
	return cmd, true, nil
}

// CancelPending cancels one pending command
func (r *Repository) CancelPending(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "CommandRepository.CancelPending"

	result, err := r.db.ExecContext(ctx, `
		UPDATE commands
		SET status = 'cancelled', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, database.MapError(err, op)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, database.MapError(err, op)
	}
	return affected > 0, nil
}

// CancelAllPending cancels every pending command for a screen
func (r *Repository) CancelAllPending(ctx context.Context, screenID uuid.UUID) (int, error) {
	const op = "CommandRepository.CancelAllPending"

	result, err := r.db.ExecContext(ctx, `
		UPDATE commands
		SET status = 'cancelled', completed_at = NOW(), updated_at = NOW()
		WHERE screen_id = $1 AND status = 'pending'
	`, screenID)
	if err != nil {
		return 0, database.MapError(err, op)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, database.MapError(err, op)
	}
	return int(affected), nil
}

// ListStale lists executing commands past their timeout as of now
func (r *Repository) ListStale(ctx context.Context, now time.Time) ([]*command.Command, error) {
	const op = "CommandRepository.ListStale"

	return r.list(ctx, op, `
		SELECT `+commandColumns+`
		FROM commands
		WHERE status = 'executing'
		  AND started_at + make_interval(secs => timeout_seconds) < $1
		ORDER BY started_at ASC
	`, now)
}

// FailStale marks stale executing commands failed
func (r *Repository) FailStale(ctx context.Context, now time.Time) (int, error) {
	const op = "CommandRepository.FailStale"

	result, err := r.db.ExecContext(ctx, `
		UPDATE commands
		SET status = 'failed',
		    error_message = 'timed out waiting for device report',
		    completed_at = $1, updated_at = $1
		WHERE status = 'executing'
		  AND started_at + make_interval(secs => timeout_seconds) < $1
	`, now)
	if err != nil {
		return 0, database.MapError(err, op)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, database.MapError(err, op)
	}
	return int(affected), nil
}

// AppendEvent records a dispatch-activity audit entry for a screen
func (r *Repository) AppendEvent(ctx context.Context, screenID, commandID uuid.UUID, event string, detail map[string]interface{}) error {
	const op = "CommandRepository.AppendEvent"

	detailJSON, err := marshalJSON(detail)
	if err != nil {
		return fmt.Errorf("error marshaling event detail: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO screen_command_events (screen_id, command_id, event, detail)
		VALUES ($1, $2, $3, $4)
	`, screenID, commandID, event, detailJSON)
	if err != nil {
		return database.MapError(err, op)
	}
	return nil
}

func (r *Repository) list(ctx context.Context, op, query string, args ...interface{}) ([]*command.Command, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list commands", "error", err, "operation", op)
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	var cmds []*command.Command
	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, database.MapError(err, op)
		}
		cmds = append(cmds, cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}
	return cmds, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCommand(row rowScanner) (*command.Command, error) {
	var (
		cmd        command.Command
		cmdType    string
		status     string
		payload    []byte
		result     []byte
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)

	err := row.Scan(
		&cmd.ID,
		&cmd.ScreenID,
		&cmdType,
		&payload,
		&cmd.Priority,
		&cmd.TimeoutSeconds,
		&cmd.ScheduledFor,
		&status,
		&startedAt,
		&finishedAt,
		&result,
		&cmd.ErrorMessage,
		&cmd.CreatedBy,
		&cmd.CreatedAt,
		&cmd.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cmd.Type = command.Type(cmdType)
	cmd.Status = command.Status(status)
	if startedAt.Valid {
		t := startedAt.Time
		cmd.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		cmd.CompletedAt = &t
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cmd.Payload); err != nil {
			return nil, fmt.Errorf("error unmarshaling payload: %w", err)
		}
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &cmd.Result); err != nil {
			return nil, fmt.Errorf("error unmarshaling result: %w", err)
		}
	}

	return &cmd, nil
}

func marshalJSON(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func sortByPriority(cmds []*command.Command) {
	sort.SliceStable(cmds, func(i, j int) bool {
		if cmds[i].Priority != cmds[j].Priority {
			return cmds[i].Priority > cmds[j].Priority
		}
		return cmds[i].CreatedAt.Before(cmds[j].CreatedAt)
	})
}
