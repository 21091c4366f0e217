package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys populated by JWTAuth.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// JWTAuth validates the bearer token on every request and attaches the
// authenticated principal to the gin context. Tokens from password login
// and from the client-credentials flow share the same claim shape, so a
// single middleware verifies both.
func JWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondUnauthenticated(c, "Missing token")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondUnauthenticated(c, "Missing token")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			respondUnauthenticated(c, "Missing token")
			return
		}

		claims, err := parseAndValidateJWT(tokenString, jwtSecret)
		if err != nil {
			respondUnauthenticated(c, "Invalid token")
			return
		}

		principal, err := principalFromClaims(claims)
		if err != nil {
			respondUnauthenticated(c, "Invalid token")
			return
		}

		c.Set(ContextUserID, principal.ID)
		c.Set(ContextUserRole, principal.Role)
		c.Next()
	}
}

// CurrentPrincipal reads the authenticated principal placed in the context
// by JWTAuth.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	id, okID := c.Get(ContextUserID)
	role, okRole := c.Get(ContextUserRole)
	if !okID || !okRole {
		return models.Principal{}, false
	}
	userID, okID := id.(uint)
	userRole, okRole := role.(string)
	if !okID || !okRole {
		return models.Principal{}, false
	}
	return models.Principal{ID: userID, Role: userRole}, true
}

func respondUnauthenticated(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.NewUnauthenticatedError(message))
	c.Abort()
}

// parseJWTToken validates and parses a JWT token using HMAC signing method.
// Returns the claims if valid, error otherwise.
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method to prevent algorithm confusion attacks
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}

	return claims, nil
}

// parseAndValidateJWT parses the JWT and performs strict time-claim validation.
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil && exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("invalid nbf claim: %w", err)
	}
	if nbf != nil && nbf.After(now) {
		return nil, fmt.Errorf("token not yet valid")
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// principalFromClaims extracts the {uid, role} claim pair. Both are
// strictly required, with no defaults.
func principalFromClaims(claims jwt.MapClaims) (models.Principal, error) {
	userID, err := extractUserID(claims)
	if err != nil {
		return models.Principal{}, err
	}
	if userID == 0 {
		return models.Principal{}, fmt.Errorf("invalid user identifier: cannot be zero")
	}

	role, err := extractRole(claims)
	if err != nil {
		return models.Principal{}, err
	}

	return models.Principal{ID: userID, Role: role}, nil
}

// extractUserID extracts and validates the user ID from the uid claim.
// Client-credentials tokens carry it as a numeric string, login tokens as
// a JSON number.
func extractUserID(claims jwt.MapClaims) (uint, error) {
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsedID, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", uid)
		}
		return uint(parsedID), nil
	}

	if uid, ok := claims["uid"].(float64); ok {
		if uid <= 0 {
			return 0, fmt.Errorf("invalid uid claim: must be positive, got: %f", uid)
		}
		return uint(uid), nil
	}

	return 0, fmt.Errorf("token missing required 'uid' claim")
}

// extractRole extracts and validates the role claim against the known roles.
func extractRole(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", fmt.Errorf("token missing required 'role' claim")
	}
	if !models.ValidRole(role) {
		return "", fmt.Errorf("invalid role %q", role)
	}
	return role, nil
}
