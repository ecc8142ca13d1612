// Package postgres implements the screen repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mesophy/mesophy-signage/internal/msignd/database"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
)

// Repository implements the device.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL screen repository
func NewRepository(db *sql.DB, logger *slog.Logger) device.Repository {
	return &Repository{db: db, logger: logger}
}

const screenColumns = `
	id, device_id, organization_id, location_id, name, device_type,
	status, last_seen, last_heartbeat, created_at, updated_at`

// Save persists a screen, inserting or updating by id
func (r *Repository) Save(ctx context.Context, s *device.Screen) error {
	const op = "DeviceRepository.Save"

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO screens (
			id, device_id, organization_id, location_id, name, device_type,
			status, last_seen, last_heartbeat, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			location_id = EXCLUDED.location_id,
			name = EXCLUDED.name,
			device_type = EXCLUDED.device_type,
			status = EXCLUDED.status,
			updated_at = NOW()
	`,
		s.ID,
		s.DeviceID,
		s.OrganizationID,
		s.LocationID,
		s.Name,
		s.DeviceType,
		s.Status,
		s.LastSeen,
		s.LastHeartbeat,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, op)
	}
	return nil
}

// FindByID retrieves a screen by its record id
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*device.Screen, error) {
	const op = "DeviceRepository.FindByID"

	row := r.db.QueryRowContext(ctx,
		`SELECT `+screenColumns+` FROM screens WHERE id = $1`, id)
	screen, err := scanScreen(row)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return screen, nil
}

// FindByDeviceID retrieves a screen by its stable device identifier
func (r *Repository) FindByDeviceID(ctx context.Context, deviceID string) (*device.Screen, error) {
	const op = "DeviceRepository.FindByDeviceID"

	row := r.db.QueryRowContext(ctx,
		`SELECT `+screenColumns+` FROM screens WHERE device_id = $1`, deviceID)
	screen, err := scanScreen(row)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return screen, nil
}

// List retrieves screens matching the filter, ordered by device id
func (r *Repository) List(ctx context.Context, filter device.Filter) ([]*device.Screen, error) {
	const op = "DeviceRepository.List"

	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.OrganizationID != uuid.Nil {
		where = append(where, "organization_id = "+arg(filter.OrganizationID))
	}
	if len(filter.LocationIDs) > 0 {
		ids := make([]string, len(filter.LocationIDs))
		for i, id := range filter.LocationIDs {
			ids[i] = id.String()
		}
		where = append(where, "location_id = ANY("+arg(pq.Array(ids))+")")
	}
	if len(filter.DeviceTypes) > 0 {
		where = append(where, "device_type = ANY("+arg(pq.Array(filter.DeviceTypes))+")")
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, "status = ANY("+arg(pq.Array(statuses))+")")
	}

	query := `SELECT ` + screenColumns + ` FROM screens`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY device_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	var screens []*device.Screen
	for rows.Next() {
		screen, err := scanScreen(rows)
		if err != nil {
			return nil, database.MapError(err, op)
		}
		screens = append(screens, screen)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}
	return screens, nil
}

// UpdateHeartbeat records a heartbeat. The greatest-timestamp guard keeps a
// delayed heartbeat from moving last_seen backwards.
func (r *Repository) UpdateHeartbeat(ctx context.Context, id uuid.UUID, status device.Status, seenAt time.Time) error {
	const op = "DeviceRepository.UpdateHeartbeat"

	result, err := r.db.ExecContext(ctx, `
		UPDATE screens SET
			status = $2,
			last_seen = GREATEST(COALESCE(last_seen, $3), $3),
			last_heartbeat = GREATEST(COALESCE(last_heartbeat, $3), $3),
			updated_at = NOW()
		WHERE id = $1
	`, id, status, seenAt)
	if err != nil {
		return database.MapError(err, op)
	}
	return requireRow(result, op)
}

// UpdateStatus sets the status field only
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status device.Status) error {
	const op = "DeviceRepository.UpdateStatus"

	result, err := r.db.ExecContext(ctx, `
		UPDATE screens SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return database.MapError(err, op)
	}
	return requireRow(result, op)
}

// Delete removes a screen from storage
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "DeviceRepository.Delete"

	result, err := r.db.ExecContext(ctx, `DELETE FROM screens WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, op)
	}
	return requireRow(result, op)
}

func requireRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return database.MapError(err, op)
	}
	if rows == 0 {
		return database.MapError(sql.ErrNoRows, op)
	}
	return nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func scanScreen(row interface{ Scan(...interface{}) error }) (*device.Screen, error) {
	var (
		s          device.Screen
		locationID sql.NullString
	)
	err := row.Scan(
		&s.ID,
		&s.DeviceID,
		&s.OrganizationID,
		&locationID,
		&s.Name,
		&s.DeviceType,
		&s.Status,
		&s.LastSeen,
		&s.LastHeartbeat,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if locationID.Valid {
		id, err := uuid.Parse(locationID.String)
		if err != nil {
			return nil, err
		}
		s.LocationID = &id
	}
	return &s, nil
}
