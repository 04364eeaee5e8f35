package domain

import (
	"strings"
	"time"
)

// DefaultRole is applied at registration when neither the caller nor the
// configuration supplies one.
const DefaultRole = "user"

// RoleAdmin is the bearer-token role allowed to use the administrative routes.
const RoleAdmin = "admin"

// Account models a registered identity and its hashed credential.
type Account struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	SecretHash string    `json:"-"`
	Mobile     string    `json:"mobile"`
	Role       string    `json:"role,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NormalizeEmail returns the canonical form used as the identity key.
// Uniqueness is case-insensitive, so every store lookup goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
