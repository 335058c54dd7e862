package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrantplanner/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "access-secret")

	token, err := CreateAccessToken("u1", "u1@example.com")
	require.NoError(t, err)

	var claims model.AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("access-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.Equal(t, "quadrantplanner", claims.Issuer)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh-secret")

	token, err := CreateRefreshToken("u1")
	require.NoError(t, err)

	var claims model.RefreshClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("refresh-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, "u1", claims.UserID)
}

func TestHashRefreshToken(t *testing.T) {
	t.Parallel()

	hashed, err := HashRefreshToken("some-long-opaque-token")
	require.NoError(t, err)
	assert.NotEqual(t, "some-long-opaque-token", hashed)

	assert.NoError(t, CompareRefreshToken(hashed, "some-long-opaque-token"))
	assert.Error(t, CompareRefreshToken(hashed, "a-different-token"))
}
