package model

import (
	"strings"
	"time"
)

// RoleAdmin is the only role this service authenticates.
const RoleAdmin = "admin"

// Admin represents an administrator account.
// ID is assigned by the store and treated as opaque.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the view of the admin that is safe to hand to clients.
func (a *Admin) Public() PublicAdmin {
	return PublicAdmin{Email: a.Email, Role: a.Role, ID: a.ID}
}

// PublicAdmin is the admin identity exposed by login and /auth/me.
type PublicAdmin struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	ID    string `json:"id"`
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Every lookup and write goes through it, so it must stay idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,trimmed_email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"-"`
	User        PublicAdmin `json:"user"`
}
