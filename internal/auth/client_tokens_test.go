package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.APIClient{}, &models.ClientToken{})
	require.NoError(t, err)

	return db
}

func createClientFixture(t *testing.T, db *gorm.DB, secret, role string) *models.APIClient {
	user := &models.User{Name: "Owner", Email: "owner@test.local", Password: "secret123", Role: role}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(user).Error)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	require.NoError(t, err)
	client := &models.APIClient{
		ID:     "test_client_id",
		Secret: string(hashedSecret),
		Name:   "CI importer",
		Domain: "http://localhost:8080",
		UserID: user.ID,
		Scopes: "read write",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func tokenRouter(svc *ClientTokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/token", svc.HandleToken)
	return router
}

func postForm(router *gin.Engine, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/auth/token", bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClientCredentialsFlow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientTokenService(db, testJWTSecret, time.Hour)
	require.NotNil(t, svc)

	client := createClientFixture(t, db, "test_secret", models.RoleUser)
	router := tokenRouter(svc)

	// The plain text secret is verified against the stored bcrypt hash.
	w := postForm(router, "grant_type=client_credentials&client_id=test_client_id&client_secret=test_secret")
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	assert.Contains(t, response, "access_token")
	assert.Equal(t, "Bearer", response["token_type"])
	assert.InDelta(t, float64(3600), response["expires_in"], 5)

	// The access token must carry the same claim shape as login tokens.
	accessToken := response["access_token"].(string)
	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, client.GetUserID(), claims["uid"])
	assert.Equal(t, models.RoleUser, claims["role"])
	assert.Equal(t, client.ID, claims["aud"])
}

func TestClientCredentialsInvalidSecret(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientTokenService(db, testJWTSecret, time.Hour)

	createClientFixture(t, db, "correct_secret", models.RoleUser)
	router := tokenRouter(svc)

	w := postForm(router, "grant_type=client_credentials&client_id=test_client_id&client_secret=wrong_secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientCredentialsUnknownClient(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientTokenService(db, testJWTSecret, time.Hour)
	router := tokenRouter(svc)

	w := postForm(router, "grant_type=client_credentials&client_id=nobody&client_secret=whatever")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientCredentialsUnsupportedGrant(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientTokenService(db, testJWTSecret, time.Hour)
	router := tokenRouter(svc)

	w := postForm(router, "grant_type=authorization_code&client_id=test_client_id&client_secret=test_secret")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientTokenCarriesOwnerRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewClientTokenService(db, testJWTSecret, time.Hour)

	createClientFixture(t, db, "test_secret", models.RoleAdmin)
	router := tokenRouter(svc)

	w := postForm(router, "grant_type=client_credentials&client_id=test_client_id&client_secret=test_secret")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	token, err := jwt.Parse(response["access_token"].(string), func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, token.Claims.(jwt.MapClaims)["role"])
}

func TestTokenIssuerClaims(t *testing.T) {
	issuer := NewTokenIssuer(testJWTSecret, 2*time.Hour)
	user := &models.User{Email: "alice@test.local", Role: models.RoleUser}
	user.ID = 42

	signed, err := issuer.Issue(user)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["uid"])
	assert.Equal(t, models.RoleUser, claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), exp.Time, time.Minute)
}
