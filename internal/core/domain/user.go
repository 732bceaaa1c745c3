package domain

import (
	"errors"
	"time"
)

// Role is the authorization level carried by a user and its session tokens.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// User models a registered account. PasswordHash is only populated by
// repository lookups that need it for credential checks and is never
// serialised.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser carries the data required to persist a new account. Password is
// plaintext; the repository hashes it before storage.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// UserPatch is a partial update. Nil fields are left untouched. Password is
// plaintext; the repository hashes it before storage.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
	IsActive *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Role == nil && p.IsActive == nil
}

// SelfService strips the fields a user may not change on their own account.
func (p UserPatch) SelfService() UserPatch {
	return UserPatch{Name: p.Name, Email: p.Email, Password: p.Password}
}

// Sanitized returns a copy of u without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
