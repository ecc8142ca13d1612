// Package postgres implements the schedule repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mesophy/mesophy-signage/internal/msignd/database"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// Repository implements the schedule.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL schedule repository
func NewRepository(db *sql.DB, logger *slog.Logger) schedule.Repository {
	return &Repository{db: db, logger: logger}
}

const scheduleColumns = `
	id, organization_id, name, playlist_id,
	target_device_id, target_device_types, target_location_ids,
	start_date, end_date, start_minute, end_minute,
	weekdays, priority, is_active, created_at, updated_at`

// Save persists a schedule, inserting or updating by id
func (r *Repository) Save(ctx context.Context, s *schedule.Schedule) error {
	const op = "ScheduleRepository.Save"

	locationIDs := make([]string, len(s.TargetLocationIDs))
	for i, id := range s.TargetLocationIDs {
		locationIDs[i] = id.String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (
			id, organization_id, name, playlist_id,
			target_device_id, target_device_types, target_location_ids,
			start_date, end_date, start_minute, end_minute,
			weekdays, priority, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			playlist_id = EXCLUDED.playlist_id,
			target_device_id = EXCLUDED.target_device_id,
			target_device_types = EXCLUDED.target_device_types,
			target_location_ids = EXCLUDED.target_location_ids,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			weekdays = EXCLUDED.weekdays,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`,
		s.ID,
		s.OrganizationID,
		s.Name,
		s.PlaylistID,
		s.TargetDeviceID,
		pq.Array(s.TargetDeviceTypes),
		pq.Array(locationIDs),
		s.StartDate,
		s.EndDate,
		int(s.StartTime),
		int(s.EndTime),
		int(s.Weekdays),
		s.Priority,
		s.Active,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to save schedule",
			"error", err,
			"scheduleID", s.ID,
			"operation", op,
		)
		return database.MapError(err, op)
	}
	return nil
}

// FindByID retrieves a schedule by id
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	const op = "ScheduleRepository.FindByID"

	row := r.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)

	s, err := scanSchedule(row)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return s, nil
}

// ListActive retrieves all active schedules for an organization
func (r *Repository) ListActive(ctx context.Context, organizationID uuid.UUID) ([]*schedule.Schedule, error) {
	const op = "ScheduleRepository.ListActive"
	return r.list(ctx, op, `
		SELECT `+scheduleColumns+`
		FROM schedules
		WHERE organization_id = $1 AND is_active
		ORDER BY priority DESC, start_minute ASC, id ASC
	`, organizationID)
}

// List retrieves all schedules for an organization
func (r *Repository) List(ctx context.Context, organizationID uuid.UUID) ([]*schedule.Schedule, error) {
	const op = "ScheduleRepository.List"
	return r.list(ctx, op, `
		SELECT `+scheduleColumns+`
		FROM schedules
		WHERE organization_id = $1
		ORDER BY priority DESC, start_minute ASC, id ASC
	`, organizationID)
}

func (r *Repository) list(ctx context.Context, op, query string, args ...interface{}) ([]*schedule.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list schedules", "error", err, "operation", op)
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	var schedules []*schedule.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, database.MapError(err, op)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}
	return schedules, nil
}

// Deactivate clears the active flag without deleting the row
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	const op = "ScheduleRepository.Deactivate"

	result, err := r.db.ExecContext(ctx,
		`UPDATE schedules SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, op)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return database.MapError(sql.ErrNoRows, op)
	}
	return nil
}

// Delete removes a schedule from storage
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "ScheduleRepository.Delete"

	result, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, op)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return database.MapError(sql.ErrNoRows, op)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*schedule.Schedule, error) {
	var (
		s           schedule.Schedule
		deviceTypes pq.StringArray
		locationIDs pq.StringArray
		endDate     sql.NullTime
		startMinute int
		endMinute   int
		weekdays    int
	)

	err := row.Scan(
		&s.ID,
		&s.OrganizationID,
		&s.Name,
		&s.PlaylistID,
		&s.TargetDeviceID,
		&deviceTypes,
		&locationIDs,
		&s.StartDate,
		&endDate,
		&startMinute,
		&endMinute,
		&weekdays,
		&s.Priority,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.TargetDeviceTypes = deviceTypes
	s.TargetLocationIDs = make([]uuid.UUID, 0, len(locationIDs))
	for _, raw := range locationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		s.TargetLocationIDs = append(s.TargetLocationIDs, id)
	}
	if endDate.Valid {
		t := endDate.Time
		s.EndDate = &t
	}
	s.StartTime = schedule.TimeOfDay(startMinute)
	s.EndTime = schedule.TimeOfDay(endMinute)
	s.Weekdays = schedule.WeekdaySet(weekdays)

	return &s, nil
}
