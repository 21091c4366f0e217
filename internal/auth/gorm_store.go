package auth

import (
	"context"
	"time"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"
)

// ClientStore resolves API clients for the OAuth2 manager.
type ClientStore struct {
	db *gorm.DB
}

func NewClientStore(db *gorm.DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) GetByID(ctx context.Context, id string) (oauth2.ClientInfo, error) {
	var client models.APIClient
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// TokenStore persists issued client tokens. Only the client-credentials
// grant is in use, so the authorization-code paths are inert.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	userID := info.GetUserID()
	token := &models.ClientToken{
		ClientID:    info.GetClientID(),
		UserID:      &userID,
		AccessToken: info.GetAccess(),
		Scopes:      info.GetScope(),
		ExpiresAt:   info.GetAccessCreateAt().Add(info.GetAccessExpiresIn()),
	}
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *TokenStore) RemoveByAccess(ctx context.Context, access string) error {
	return s.db.WithContext(ctx).Where("access_token = ?", access).Delete(&models.ClientToken{}).Error
}

func (s *TokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	// Refresh tokens are not issued for client credentials.
	return nil
}

func (s *TokenStore) RemoveByCode(ctx context.Context, code string) error {
	return nil
}

func (s *TokenStore) GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	var token models.ClientToken
	if err := s.db.WithContext(ctx).Where("access_token = ?", access).First(&token).Error; err != nil {
		return nil, err
	}

	info := &oauthmodels.Token{
		ClientID:        token.ClientID,
		Access:          token.AccessToken,
		AccessCreateAt:  token.CreatedAt,
		AccessExpiresIn: time.Until(token.ExpiresAt),
		Scope:           token.Scopes,
	}
	if token.UserID != nil {
		info.UserID = *token.UserID
	}
	return info, nil
}

func (s *TokenStore) GetByRefresh(ctx context.Context, refresh string) (oauth2.TokenInfo, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *TokenStore) GetByCode(ctx context.Context, code string) (oauth2.TokenInfo, error) {
	return nil, gorm.ErrRecordNotFound
}
