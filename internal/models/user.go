package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles a user (and therefore a token) can carry.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"default:'user'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HashPassword replaces the plaintext Password with its bcrypt hash.
// Must be called before the user is persisted.
func (u *User) HashPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Principal is the authenticated identity attached to a request by the
// auth middleware. It lives only for the duration of that request.
type Principal struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
