package models

import (
	"time"
)

// ClientToken records an access token issued through the
// client-credentials grant so it can be revoked and audited.
type ClientToken struct {
	ID          uint    `gorm:"primaryKey"`
	ClientID    string  `gorm:"not null"`
	UserID      *string // acting user identity, nullable
	AccessToken string  `gorm:"uniqueIndex;not null"`
	Scopes      string
	ExpiresAt   time.Time `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ClientToken) TableName() string {
	return "client_tokens"
}
