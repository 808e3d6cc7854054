package auth

import (
	"errors"
	"time"
)

// Role is a user's access level.
type Role string

// Valid roles.
const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOperator
}

// User is a dashboard account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Activity     time.Time `json:"activity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sentinel errors for auth operations.
var (
	// ErrUserNotFound indicates no user exists with the given ID or username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates the username is already in use.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRole indicates a role outside {admin, operator}.
	ErrInvalidRole = errors.New("invalid role")

	// ErrTokenInvalid indicates a malformed, expired or forged token.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrAdminProtected indicates a bulk delete touching an admin account.
	ErrAdminProtected = errors.New("admin accounts cannot be bulk deleted")

	// ErrMissingFields indicates a required user field is empty.
	ErrMissingFields = errors.New("missing required fields")
)
