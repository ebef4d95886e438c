// Package models defines the core data structures shared by the CreatorHub
// client and the development backend: accounts, listings, filters and
// creator profiles.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the account type chosen at registration.
type Role string

const (
	// RoleBuyer browses listings and places orders.
	RoleBuyer Role = "buyer"
	// RoleCreator publishes and manages listings.
	RoleCreator Role = "creator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleCreator
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is the account record returned by the "who am I" endpoint.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	FullName         string    `json:"full_name"`
	UserType         Role      `json:"user_type"`
	CreatedAt        time.Time `json:"created_at"`
	IsActive         bool      `json:"is_active"`
	ProfileCompleted bool      `json:"profile_completed"`
}

// Account is a stored user with its credential.
type Account struct {
	User
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}

// Identity is the authenticated principal held by the session store.
// A non-nil Identity always carries a role and a token.
type Identity struct {
	ID               string
	Email            string
	Username         string
	DisplayName      string
	Role             Role
	Token            string
	ProfileCompleted bool
}

// NewIdentity builds an Identity from the account record and the bearer
// token that was used to fetch it.
func NewIdentity(u User, token string) *Identity {
	name := u.FullName
	if name == "" {
		name = u.Username
	}
	return &Identity{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		DisplayName:      name,
		Role:             u.UserType,
		Token:            token,
		ProfileCompleted: u.ProfileCompleted,
	}
}

// IsCreator reports whether the identity is a creator account.
func (i *Identity) IsCreator() bool {
	return i != nil && i.Role == RoleCreator
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the account creation payload.
type Registration struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	UserType Role   `json:"user_type"`
}

// TokenResponse is returned by login and registration.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
