package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// APIClient is a registered machine integration (CI jobs, importers)
// allowed to obtain access tokens through the client-credentials grant.
// Issued tokens act on behalf of the owning user.
type APIClient struct {
	ID        string         `gorm:"primaryKey" json:"client_id"`
	Secret    string         `gorm:"not null" json:"-"` // bcrypt hash
	Name      string         `json:"name"`
	Domain    string         `json:"domain"`
	UserID    uint           `json:"user_id"`
	Scopes    string         `json:"scopes"` // space-separated
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (APIClient) TableName() string {
	return "api_clients"
}

// oauth2.ClientInfo implementation so the token manager can load
// clients straight from the store.

func (c *APIClient) GetID() string {
	return c.ID
}

func (c *APIClient) GetSecret() string {
	return c.Secret
}

func (c *APIClient) GetDomain() string {
	return c.Domain
}

func (c *APIClient) IsPublic() bool {
	return false
}

func (c *APIClient) GetUserID() string {
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword implements oauth2.ClientPasswordVerifier so the token
// manager checks the presented secret against the stored bcrypt hash
// instead of comparing it to the hash literal.
func (c *APIClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
