package services

import (
	"context"
	"log/slog"
	"time"

	"quadrantplanner/apperror"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

// AuthService rotates refresh tokens. Identity lives with the external
// auth provider; the only server-side auth state is the bcrypt hash of
// each user's current refresh token.
type AuthService struct {
	store  store.Store
	logger *slog.Logger
}

func NewAuthService(st store.Store, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{store: st, logger: logger}
}

// Refresh mints a new token pair for a validly-signed refresh token.
// When a stored record exists the presented token must match its hash,
// so a rotated-out or revoked token is rejected even though its
// signature still verifies. The new token's hash replaces the record.
func (s *AuthService) Refresh(ctx context.Context, userID, presented string) (accessToken, refreshToken string, err error) {
	rec, err := s.store.GetRefreshToken(ctx, userID)
	if err != nil {
		return "", "", apperror.Store("failed to load refresh token", err)
	}
	if rec != nil {
		if rec.Revoked {
			return "", "", apperror.Unauthorized("Refresh token has been revoked")
		}
		if time.Now().After(rec.ExpiresAt) {
			return "", "", apperror.Unauthorized("Refresh token has expired")
		}
		if CompareRefreshToken(rec.TokenHash, presented) != nil {
			s.logger.Warn("refresh token mismatch", "user_id", userID)
			return "", "", apperror.Unauthorized("Refresh token is no longer valid")
		}
	}

	accessToken, err = CreateAccessToken(userID, "")
	if err != nil {
		return "", "", apperror.Store("failed to create access token", err)
	}
	refreshToken, err = CreateRefreshToken(userID)
	if err != nil {
		return "", "", apperror.Store("failed to create refresh token", err)
	}

	hashed, err := HashRefreshToken(refreshToken)
	if err != nil {
		return "", "", apperror.Store("failed to hash refresh token", err)
	}
	now := time.Now().UTC()
	err = s.store.UpsertRefreshToken(ctx, model.RefreshTokenRecord{
		UserID:    userID,
		TokenHash: hashed,
		CreatedAt: now,
		ExpiresAt: now.Add(RefreshTokenTTL),
	})
	if err != nil {
		return "", "", apperror.Store("failed to store refresh token", err)
	}
	return accessToken, refreshToken, nil
}

// Revoke invalidates the user's current refresh token.
func (s *AuthService) Revoke(ctx context.Context, userID string) error {
	rec, err := s.store.GetRefreshToken(ctx, userID)
	if err != nil {
		return apperror.Store("failed to load refresh token", err)
	}
	if rec == nil {
		return nil
	}
	rec.Revoked = true
	if err := s.store.UpsertRefreshToken(ctx, *rec); err != nil {
		return apperror.Store("failed to revoke refresh token", err)
	}
	s.logger.Info("revoked refresh token", "user_id", userID)
	return nil
}
