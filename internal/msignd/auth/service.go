package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
)

// Service manages device credentials and pairing
type Service interface {
	// IssueToken generates a fresh bearer token for a screen, revoking any
	// prior tokens
	IssueToken(ctx context.Context, screenID uuid.UUID) (*Token, error)

	// ValidateToken resolves a presented bearer token to a screen id
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)

	// RevokeTokens invalidates all tokens for a screen
	RevokeTokens(ctx context.Context, screenID uuid.UUID) error

	// RequestCode creates a pairing code for an unpaired device
	RequestCode(ctx context.Context, deviceInfo map[string]interface{}) (*PairingCode, error)

	// ActivateCode binds a pairing code to a screen and prepares its token
	ActivateCode(ctx context.Context, code string, screenID uuid.UUID) error

	// ExchangeCode hands the bearer token to the device, once. Before
	// activation it returns a not-found error so the device keeps polling.
	ExchangeCode(ctx context.Context, code string) (string, uuid.UUID, error)
}

// Repository defines storage operations for tokens and pairing codes
type Repository interface {
	SaveToken(ctx context.Context, token *Token) error
	FindTokenByHash(ctx context.Context, hash []byte) (*Token, error)
	DeleteTokensForScreen(ctx context.Context, screenID uuid.UUID) error

	SavePairingCode(ctx context.Context, code *PairingCode) error
	FindPairingCode(ctx context.Context, code string) (*PairingCode, error)
	DeletePairingCode(ctx context.Context, code string) error
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new authentication service
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *service) IssueToken(ctx context.Context, screenID uuid.UUID) (*Token, error) {
	const op = "AuthService.IssueToken"

	if err := s.repo.DeleteTokensForScreen(ctx, screenID); err != nil {
		return nil, errors.NewError("REVOKE_FAILED", "failed to revoke existing tokens", op, err)
	}

	token, err := NewToken(screenID)
	if err != nil {
		return nil, errors.NewError("GENERATE_FAILED", "failed to generate token", op, err)
	}

	if err := s.repo.SaveToken(ctx, token); err != nil {
		return nil, errors.NewError("SAVE_FAILED", "failed to save token", op, err)
	}

	s.logger.Info("issued device token",
		"screenID", screenID,
		"expiresAt", token.ExpiresAt,
	)
	return token, nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	const op = "AuthService.ValidateToken"

	stored, err := s.repo.FindTokenByHash(ctx, HashToken(token))
	if err != nil {
		if errors.IsNotFound(err) {
			// Unknown token: the device may have been unpaired, so tell
			// it to re-pair rather than retry.
			return uuid.Nil, errors.NewError("NOT_REGISTERED",
				"token not recognized", op, errors.ErrNotRegistered)
		}
		return uuid.Nil, errors.NewError("LOOKUP_FAILED", "failed to look up token", op, err)
	}

	if err := stored.Validate(token, s.now()); err != nil {
		return uuid.Nil, errors.NewError("UNAUTHORIZED", "token rejected", op, err)
	}
	return stored.ScreenID, nil
}

func (s *service) RevokeTokens(ctx context.Context, screenID uuid.UUID) error {
	const op = "AuthService.RevokeTokens"

	if err := s.repo.DeleteTokensForScreen(ctx, screenID); err != nil {
		return errors.NewError("REVOKE_FAILED", "failed to revoke tokens", op, err)
	}
	return nil
}

func (s *service) RequestCode(ctx context.Context, deviceInfo map[string]interface{}) (*PairingCode, error) {
	const op = "AuthService.RequestCode"

	code, err := NewPairingCode(deviceInfo)
	if err != nil {
		return nil, errors.NewError("GENERATE_FAILED", "failed to generate pairing code", op, err)
	}

	if err := s.repo.SavePairingCode(ctx, code); err != nil {
		return nil, errors.NewError("SAVE_FAILED", "failed to save pairing code", op, err)
	}

	s.logger.Info("pairing code issued", "code", code.Code, "expiresAt", code.ExpiresAt)
	return code, nil
}

func (s *service) ActivateCode(ctx context.Context, code string, screenID uuid.UUID) error {
	const op = "AuthService.ActivateCode"

	pairing, err := s.repo.FindPairingCode(ctx, code)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NewError("CODE_NOT_FOUND", "pairing code not found: "+code, op, err)
		}
		return errors.NewError("LOOKUP_FAILED", "failed to look up pairing code", op, err)
	}

	token, err := s.IssueToken(ctx, screenID)
	if err != nil {
		return err
	}

	if err := pairing.Claim(screenID, token.Value, s.now()); err != nil {
		return err
	}
	if err := s.repo.SavePairingCode(ctx, pairing); err != nil {
		return errors.NewError("SAVE_FAILED", "failed to save pairing code", op, err)
	}

	s.logger.Info("pairing code activated", "code", code, "screenID", screenID)
	return nil
}

func (s *service) ExchangeCode(ctx context.Context, code string) (string, uuid.UUID, error) {
	const op = "AuthService.ExchangeCode"

	pairing, err := s.repo.FindPairingCode(ctx, code)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", uuid.Nil, errors.NewError("CODE_NOT_FOUND",
				"pairing code not found: "+code, op, err)
		}
		return "", uuid.Nil, errors.NewError("LOOKUP_FAILED", "failed to look up pairing code", op, err)
	}

	token, err := pairing.Deliver(s.now())
	if err != nil {
		return "", uuid.Nil, err
	}
	if err := s.repo.SavePairingCode(ctx, pairing); err != nil {
		return "", uuid.Nil, errors.NewError("SAVE_FAILED", "failed to save pairing code", op, err)
	}

	return token, *pairing.ScreenID, nil
}
