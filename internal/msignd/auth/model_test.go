package auth

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
)

func TestNewToken(t *testing.T) {
	screenID := uuid.New()
	token, err := NewToken(screenID)
	require.NoError(t, err)

	assert.Equal(t, screenID, token.ScreenID)
	assert.NotEmpty(t, token.Value)
	assert.Equal(t, HashToken(token.Value), token.Hash)
	assert.WithinDuration(t, time.Now().Add(TokenLifetime), token.ExpiresAt, time.Minute)

	// Two tokens never share a value.
	other, err := NewToken(screenID)
	require.NoError(t, err)
	assert.NotEqual(t, token.Value, other.Value)
}

func TestTokenValidate(t *testing.T) {
	token, err := NewToken(uuid.New())
	require.NoError(t, err)
	now := time.Now()

	assert.NoError(t, token.Validate(token.Value, now))
	assert.Error(t, token.Validate("wrong-value", now))
	assert.Error(t, token.Validate(token.Value, now.Add(TokenLifetime+time.Hour)))
}

func TestNewPairingCode(t *testing.T) {
	code, err := NewPairingCode(map[string]interface{}{"model": "raspberry-pi-4"})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z2-7]{4}-[A-Z2-7]{4}$`), code.Code)
	assert.Nil(t, code.ScreenID)
	assert.Nil(t, code.ClaimedAt)
	assert.WithinDuration(t, time.Now().Add(PairingCodeLifetime), code.ExpiresAt, time.Minute)
}

func TestPairingCodeFlow(t *testing.T) {
	code, err := NewPairingCode(nil)
	require.NoError(t, err)

	screenID := uuid.New()
	now := time.Now()

	// Exchange before activation tells the device to keep polling.
	_, err = code.Deliver(now)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, code.Claim(screenID, "plain-token", now))
	require.NotNil(t, code.ScreenID)
	assert.Equal(t, screenID, *code.ScreenID)

	// A second activation is a conflict.
	err = code.Claim(uuid.New(), "other-token", now)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	token, err := code.Deliver(now)
	require.NoError(t, err)
	assert.Equal(t, "plain-token", token)
	assert.Empty(t, code.Token, "the stashed token must be cleared on delivery")

	// Delivery is one-shot.
	_, err = code.Deliver(now)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestPairingCodeExpiry(t *testing.T) {
	code, err := NewPairingCode(nil)
	require.NoError(t, err)

	late := time.Now().Add(PairingCodeLifetime + time.Minute)

	err = code.Claim(uuid.New(), "token", late)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = code.Deliver(late)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}
