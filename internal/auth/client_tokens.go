package auth

import (
	"net/http"
	"time"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientTokenService issues access tokens to registered API clients via the
// OAuth2 client-credentials grant. Issued tokens carry the same {uid, role}
// claim shape as login tokens, so the bearer middleware accepts both.
type ClientTokenService struct {
	manager *manage.Manager
	db      *gorm.DB
}

// NewClientTokenService wires the OAuth2 manager with the gorm-backed
// client and token stores and the custom JWT access generator.
func NewClientTokenService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *ClientTokenService {
	manager := manage.NewDefaultManager()

	manager.MapAccessGenerate(NewJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS256, db))
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: tokenTTL})
	manager.MustTokenStorage(NewTokenStore(db), nil)
	manager.MapClientStorage(NewClientStore(db))

	return &ClientTokenService{
		manager: manager,
		db:      db,
	}
}

// HandleToken handles POST /auth/token. Only the client_credentials grant
// is supported; the SPA authenticates through password login instead.
// @Summary Token endpoint for API clients
// @Description Obtain an access token using the client_credentials grant
// @Tags auth
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Must be client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client secret"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/auth/token [post]
func (s *ClientTokenService) HandleToken(c *gin.Context) {
	if c.PostForm("grant_type") != "client_credentials" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}

	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")

	var client models.APIClient
	if err := s.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	// Stored secrets are bcrypt hashes; verify against the presented secret.
	if err := bcrypt.CompareHashAndPassword([]byte(client.Secret), []byte(clientSecret)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	ti, err := s.manager.GenerateAccessToken(c, oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        client.Scopes,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_generation_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": ti.GetAccess(),
		"token_type":   "Bearer",
		"expires_in":   int64(ti.GetAccessExpiresIn() / time.Second),
		"scope":        ti.GetScope(),
	})
}
