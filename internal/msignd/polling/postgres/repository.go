// Package postgres implements the polling period repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/database"
	"github.com/mesophy/mesophy-signage/internal/msignd/polling"
	"github.com/mesophy/mesophy-signage/internal/msignd/schedule"
)

// Repository implements the polling.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL polling period repository
func NewRepository(db *sql.DB, logger *slog.Logger) polling.Repository {
	return &Repository{db: db, logger: logger}
}

// ListForOrganization returns an organization's periods in stored order
func (r *Repository) ListForOrganization(ctx context.Context, organizationID uuid.UUID) ([]*polling.Period, error) {
	const op = "PollingRepository.ListForOrganization"

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, organization_id, name, start_minute, end_minute,
		       interval_seconds, is_emergency, position
		FROM polling_periods
		WHERE organization_id = $1
		ORDER BY position ASC, start_minute ASC
	`, organizationID)
	if err != nil {
		r.logger.Error("failed to list polling periods", "error", err, "operation", op)
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	var periods []*polling.Period
	for rows.Next() {
		var (
			p           polling.Period
			startMinute int
			endMinute   int
		)
		if err := rows.Scan(
			&p.ID,
			&p.OrganizationID,
			&p.Name,
			&startMinute,
			&endMinute,
			&p.IntervalSeconds,
			&p.Emergency,
			&p.Position,
		); err != nil {
			return nil, database.MapError(err, op)
		}
		p.StartTime = schedule.TimeOfDay(startMinute)
		p.EndTime = schedule.TimeOfDay(endMinute)
		periods = append(periods, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}
	return periods, nil
}

// Save persists a period
func (r *Repository) Save(ctx context.Context, p *polling.Period) error {
	const op = "PollingRepository.Save"

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO polling_periods (
			id, organization_id, name, start_minute, end_minute,
			interval_seconds, is_emergency, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			interval_seconds = EXCLUDED.interval_seconds,
			is_emergency = EXCLUDED.is_emergency,
			position = EXCLUDED.position
	`,
		p.ID,
		p.OrganizationID,
		p.Name,
		int(p.StartTime),
		int(p.EndTime),
		p.IntervalSeconds,
		p.Emergency,
		p.Position,
	)
	if err != nil {
		return database.MapError(err, op)
	}
	return nil
}

// Delete removes a period
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "PollingRepository.Delete"

	result, err := r.db.ExecContext(ctx, `DELETE FROM polling_periods WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, op)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return database.MapError(sql.ErrNoRows, op)
	}
	return nil
}
