// Package postgres implements the alert repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/alert"
	"github.com/mesophy/mesophy-signage/internal/msignd/database"
)

// Repository implements the alert.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL alert repository
func NewRepository(db *sql.DB, logger *slog.Logger) alert.Repository {
	return &Repository{db: db, logger: logger}
}

const alertColumns = `
	id, screen_id, alert_type, severity, message, details,
	metric_value, threshold, created_at`

// Create persists a new alert
func (r *Repository) Create(ctx context.Context, a *alert.Alert) error {
	const op = "AlertRepository.Create"

	details := a.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("error marshaling details: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO alerts (
			id, screen_id, alert_type, severity, message, details,
			metric_value, threshold, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		a.ID,
		a.ScreenID,
		string(a.Type),
		string(a.Severity),
		a.Message,
		detailsJSON,
		a.MetricValue,
		a.Threshold,
		a.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert alert",
			"error", err,
			"alertID", a.ID,
			"operation", op,
		)
		return database.MapError(err, op)
	}
	return nil
}

// LatestByScreenAndType returns the most recent alert of the given type
func (r *Repository) LatestByScreenAndType(ctx context.Context, screenID uuid.UUID, alertType alert.Type) (*alert.Alert, error) {
	const op = "AlertRepository.LatestByScreenAndType"

	row := r.db.QueryRowContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE screen_id = $1 AND alert_type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, screenID, string(alertType))

	a, err := scanAlert(row)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return a, nil
}

// ListRecent returns recent alerts, newest first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*alert.Alert, error) {
	const op = "AlertRepository.ListRecent"

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	var alerts []*alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, database.MapError(err, op)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}
	return alerts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*alert.Alert, error) {
	var (
		a         alert.Alert
		alertType string
		severity  string
		details   []byte
	)

	err := row.Scan(
		&a.ID,
		&a.ScreenID,
		&alertType,
		&severity,
		&a.Message,
		&details,
		&a.MetricValue,
		&a.Threshold,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Type = alert.Type(alertType)
	a.Severity = alert.Severity(severity)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &a.Details); err != nil {
			return nil, fmt.Errorf("error unmarshaling details: %w", err)
		}
	}

	return &a, nil
}
