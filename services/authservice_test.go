package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrantplanner/apperror"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

func newAuthService(m *store.Memory) *AuthService {
	return NewAuthService(m, testLogger())
}

func setTokenSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh-secret")
}

func TestRefreshStoresTokenHash(t *testing.T) {
	setTokenSecrets(t)

	m := store.NewMemory()
	first, err := CreateRefreshToken("u1")
	require.NoError(t, err)

	access, refreshed, err := newAuthService(m).Refresh(context.Background(), "u1", first)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refreshed)
	assert.NotEqual(t, first, refreshed)

	rec, err := m.GetRefreshToken(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NoError(t, CompareRefreshToken(rec.TokenHash, refreshed))
	assert.False(t, rec.Revoked)
}

func TestRefreshRejectsRotatedOutToken(t *testing.T) {
	setTokenSecrets(t)

	m := store.NewMemory()
	auth := newAuthService(m)
	first, err := CreateRefreshToken("u1")
	require.NoError(t, err)

	_, second, err := auth.Refresh(context.Background(), "u1", first)
	require.NoError(t, err)

	// the first token still carries a valid signature but was replaced
	_, _, err = auth.Refresh(context.Background(), "u1", first)
	assert.True(t, apperror.IsUnauthorized(err))

	_, _, err = auth.Refresh(context.Background(), "u1", second)
	assert.NoError(t, err)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	setTokenSecrets(t)

	m := store.NewMemory()
	auth := newAuthService(m)
	first, err := CreateRefreshToken("u1")
	require.NoError(t, err)

	_, second, err := auth.Refresh(context.Background(), "u1", first)
	require.NoError(t, err)
	require.NoError(t, auth.Revoke(context.Background(), "u1"))

	_, _, err = auth.Refresh(context.Background(), "u1", second)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestRefreshRejectsExpiredRecord(t *testing.T) {
	setTokenSecrets(t)

	m := store.NewMemory()
	token, err := CreateRefreshToken("u1")
	require.NoError(t, err)
	hashed, err := HashRefreshToken(token)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, m.UpsertRefreshToken(context.Background(), model.RefreshTokenRecord{
		UserID:    "u1",
		TokenHash: hashed,
		CreatedAt: past.Add(-RefreshTokenTTL),
		ExpiresAt: past,
	}))

	_, _, err = newAuthService(m).Refresh(context.Background(), "u1", token)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestRevokeWithoutRecordIsNoop(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	assert.NoError(t, newAuthService(m).Revoke(context.Background(), "u1"))
}
