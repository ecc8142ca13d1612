// Package auth implements device bearer tokens and the pairing-code flow
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
)

const (
	// TokenLifetime is how long a device bearer token stays valid
	TokenLifetime = 90 * 24 * time.Hour
	// PairingCodeLifetime bounds how long an unclaimed pairing code lives
	PairingCodeLifetime = 15 * time.Minute
)

// Token is a device bearer credential. The plain value is only populated at
// creation; only the hash is stored.
type Token struct {
	ID        uuid.UUID
	ScreenID  uuid.UUID
	Value     string // plain text, creation only
	Hash      []byte
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewToken creates a bearer token for a screen
func NewToken(screenID uuid.UUID) (*Token, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	hash := HashToken(value)

	now := time.Now()
	return &Token{
		ID:        uuid.New(),
		ScreenID:  screenID,
		Value:     value,
		Hash:      hash,
		ExpiresAt: now.Add(TokenLifetime),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HashToken returns the storage hash for a plain token value
func HashToken(value string) []byte {
	sum := sha256.Sum256([]byte(value))
	return sum[:]
}

// IsExpired reports whether the token has passed its expiry
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Validate checks a presented plain token against the stored hash
func (t *Token) Validate(value string, now time.Time) error {
	if t.IsExpired(now) {
		return errors.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(HashToken(value), t.Hash) != 1 {
		return errors.ErrUnauthorized
	}
	return nil
}

// PairingCode is a short-lived human-readable code a device displays so an
// operator can claim it. The flow is request, activate, exchange: the device
// requests a code, an operator activates it against a screen record, and the
// device exchanges the code for its bearer token exactly once.
type PairingCode struct {
	Code        string
	DeviceInfo  map[string]interface{}
	ScreenID    *uuid.UUID // set on activation
	Token       string     // plain bearer token, cleared after delivery
	ExpiresAt   time.Time
	ClaimedAt   *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time
}

// NewPairingCode creates a pairing code like "WDJC-XYZK"
func NewPairingCode(deviceInfo map[string]interface{}) (*PairingCode, error) {
	raw := make([]byte, 5)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	code := strings.ToUpper(base32.StdEncoding.EncodeToString(raw)[:8])
	code = code[:4] + "-" + code[4:]

	now := time.Now()
	return &PairingCode{
		Code:       code,
		DeviceInfo: deviceInfo,
		ExpiresAt:  now.Add(PairingCodeLifetime),
		CreatedAt:  now,
	}, nil
}

// IsExpired reports whether the code has passed its expiry
func (c *PairingCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Claim binds the code to a screen and stashes the token for one delivery
func (c *PairingCode) Claim(screenID uuid.UUID, token string, now time.Time) error {
	const op = "PairingCode.Claim"

	if c.IsExpired(now) {
		return errors.NewError("CODE_EXPIRED", "pairing code expired", op, errors.ErrInvalidInput)
	}
	if c.ClaimedAt != nil {
		return errors.NewError("CODE_CLAIMED", "pairing code already claimed", op, errors.ErrConflict)
	}

	c.ScreenID = &screenID
	c.Token = token
	c.ClaimedAt = &now
	return nil
}

// Deliver hands out the stashed token exactly once
func (c *PairingCode) Deliver(now time.Time) (string, error) {
	const op = "PairingCode.Deliver"

	if c.IsExpired(now) {
		return "", errors.NewError("CODE_EXPIRED", "pairing code expired", op, errors.ErrInvalidInput)
	}
	if c.ClaimedAt == nil {
		return "", errors.NewError("CODE_PENDING", "pairing code not yet activated", op, errors.ErrNotFound)
	}
	if c.DeliveredAt != nil {
		return "", errors.NewError("CODE_DELIVERED", "pairing code already used", op, errors.ErrConflict)
	}

	token := c.Token
	c.Token = ""
	c.DeliveredAt = &now
	return token, nil
}
