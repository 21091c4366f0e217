package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// JWTAccessGenerate produces client-credentials access tokens with the
// {uid, role} claims the bearer middleware expects. The role is read from
// the acting user's row at issue time so a stale client record cannot
// escalate privileges.
type JWTAccessGenerate struct {
	signedKey    []byte
	signedMethod jwt.SigningMethod
	db           *gorm.DB
}

// NewJWTAccessGenerate creates a JWT access token generator for the
// OAuth2 manager.
func NewJWTAccessGenerate(key []byte, method jwt.SigningMethod, db *gorm.DB) *JWTAccessGenerate {
	return &JWTAccessGenerate{
		signedKey:    key,
		signedMethod: method,
		db:           db,
	}
}

// Token generates the signed access token. Called by the OAuth2 manager.
func (g *JWTAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	// client_credentials carries no request-level user, the client's owning
	// user is the acting identity.
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", fmt.Errorf("cannot generate token: no user ID available")
	}

	role, err := g.lookupRole(userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch user role: %w", err)
	}

	claims := jwt.MapClaims{
		"aud":  data.Client.GetID(),
		"uid":  userID,
		"role": role,
		"exp":  data.TokenInfo.GetAccessCreateAt().Add(data.TokenInfo.GetAccessExpiresIn()).Unix(),
		"iat":  data.TokenInfo.GetAccessCreateAt().Unix(),
	}
	if scope := data.TokenInfo.GetScope(); scope != "" {
		claims["scope"] = scope
	}

	access, err := jwt.NewWithClaims(g.signedMethod, claims).SignedString(g.signedKey)
	if err != nil {
		return "", "", err
	}

	refresh := ""
	if isGenRefresh {
		refreshClaims := jwt.MapClaims{
			"id":  access,
			"exp": data.TokenInfo.GetRefreshCreateAt().Add(data.TokenInfo.GetRefreshExpiresIn()).Unix(),
		}
		refresh, err = jwt.NewWithClaims(g.signedMethod, refreshClaims).SignedString(g.signedKey)
		if err != nil {
			return "", "", err
		}
	}

	return access, refresh, nil
}

// lookupRole fetches the acting user's role from the database.
func (g *JWTAccessGenerate) lookupRole(userIDStr string) (string, error) {
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return "", fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	if err := g.db.First(&user, userID).Error; err != nil {
		return "", fmt.Errorf("user %d not found: %w", userID, err)
	}

	if user.Role == "" {
		return models.RoleUser, nil
	}
	return user.Role, nil
}
