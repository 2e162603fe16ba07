package model

import "time"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleUser  UserRole = "user"  // Default role, full participation
	UserRoleGuest UserRole = "guest" // Read-only: cannot create, edit, or attend
	UserRoleAdmin UserRole = "admin" // Operational access
)

// User represents a user account
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Hash      *string   `json:"-"` // Never expose password hash
	Role      UserRole  `json:"role"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// IsGuest returns true if the user has the guest role
func (u *User) IsGuest() bool {
	return u.Role == UserRoleGuest
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// TokenClaims represents extracted JWT claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// IsGuest returns true if the claims carry the guest role
func (c *TokenClaims) IsGuest() bool {
	return c.Role == string(UserRoleGuest)
}
