package auth

import (
	"time"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs the compact claim set carried by login tokens.
// The secret is injected at construction time, never read from a global.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer signing with the given secret and
// token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a bearer token for the user carrying {uid, role, exp, iat}.
func (i *TokenIssuer) Issue(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  user.ID,
		"role": user.Role,
		"exp":  now.Add(i.ttl).Unix(),
		"iat":  now.Unix(),
	})
	return token.SignedString(i.secret)
}
