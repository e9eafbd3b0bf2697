package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenClaims represents the claims contained in a JWT token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	Name      string
	ExpiresAt time.Time
}

// TokenService verifies bearer tokens issued by the identity provider. It can
// also mint access tokens for local development and tests.
type TokenService interface {
	// GenerateAccessToken signs an access token for the user.
	GenerateAccessToken(ctx context.Context, userID uuid.UUID, email string, ttl time.Duration) (string, error)

	// ValidateAccessToken validates an access token and returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)
}
