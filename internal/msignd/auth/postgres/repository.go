// Package postgres implements the auth repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/auth"
	"github.com/mesophy/mesophy-signage/internal/msignd/database"
)

// Repository implements the auth.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL auth repository
func NewRepository(db *sql.DB, logger *slog.Logger) auth.Repository {
	return &Repository{db: db, logger: logger}
}

// SaveToken stores a token hash
func (r *Repository) SaveToken(ctx context.Context, token *auth.Token) error {
	const op = "AuthRepository.SaveToken"

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_tokens (id, screen_id, token_hash, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		token.ID,
		token.ScreenID,
		token.Hash,
		token.ExpiresAt,
		token.CreatedAt,
		token.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, op)
	}
	return nil
}

// FindTokenByHash looks a token up by its storage hash
func (r *Repository) FindTokenByHash(ctx context.Context, hash []byte) (*auth.Token, error) {
	const op = "AuthRepository.FindTokenByHash"

	var t auth.Token
	err := r.db.QueryRowContext(ctx, `
		SELECT id, screen_id, token_hash, expires_at, created_at, updated_at
		FROM device_tokens
		WHERE token_hash = $1
	`, hash).Scan(
		&t.ID,
		&t.ScreenID,
		&t.Hash,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	return &t, nil
}

// DeleteTokensForScreen removes all tokens for a screen
func (r *Repository) DeleteTokensForScreen(ctx context.Context, screenID uuid.UUID) error {
	const op = "AuthRepository.DeleteTokensForScreen"

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM device_tokens WHERE screen_id = $1`, screenID)
	if err != nil {
		return database.MapError(err, op)
	}
	return nil
}

// SavePairingCode persists a pairing code, inserting or updating by code
func (r *Repository) SavePairingCode(ctx context.Context, code *auth.PairingCode) error {
	const op = "AuthRepository.SavePairingCode"

	deviceInfo, err := json.Marshal(code.DeviceInfo)
	if err != nil {
		return database.MapError(err, op)
	}

	var token sql.NullString
	if code.Token != "" {
		token = sql.NullString{String: code.Token, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pairing_codes (
			code, device_info, screen_id, token,
			expires_at, claimed_at, delivered_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO UPDATE SET
			screen_id = EXCLUDED.screen_id,
			token = EXCLUDED.token,
			claimed_at = EXCLUDED.claimed_at,
			delivered_at = EXCLUDED.delivered_at
	`,
		code.Code,
		deviceInfo,
		code.ScreenID,
		token,
		code.ExpiresAt,
		code.ClaimedAt,
		code.DeliveredAt,
		code.CreatedAt,
	)
	if err != nil {
		return database.MapError(err, op)
	}
	return nil
}

// FindPairingCode retrieves a pairing code
func (r *Repository) FindPairingCode(ctx context.Context, code string) (*auth.PairingCode, error) {
	const op = "AuthRepository.FindPairingCode"

	var (
		c          auth.PairingCode
		deviceInfo []byte
		screenID   sql.NullString
		token      sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT code, device_info, screen_id, token,
			expires_at, claimed_at, delivered_at, created_at
		FROM pairing_codes
		WHERE code = $1
	`, code).Scan(
		&c.Code,
		&deviceInfo,
		&screenID,
		&token,
		&c.ExpiresAt,
		&c.ClaimedAt,
		&c.DeliveredAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, database.MapError(err, op)
	}

	if err := json.Unmarshal(deviceInfo, &c.DeviceInfo); err != nil {
		return nil, database.MapError(err, op)
	}
	if screenID.Valid {
		id, err := uuid.Parse(screenID.String)
		if err != nil {
			return nil, database.MapError(err, op)
		}
		c.ScreenID = &id
	}
	if token.Valid {
		c.Token = token.String
	}
	return &c, nil
}

// DeletePairingCode removes a pairing code
func (r *Repository) DeletePairingCode(ctx context.Context, code string) error {
	const op = "AuthRepository.DeletePairingCode"

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM pairing_codes WHERE code = $1`, code)
	if err != nil {
		return database.MapError(err, op)
	}
	return nil
}
