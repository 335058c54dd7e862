package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshTokenRecord is the server-side state for a user's refresh
// token. Only the bcrypt hash of the token is persisted; presenting a
// token that no longer matches means it was rotated out or revoked.
type RefreshTokenRecord struct {
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
}

type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
