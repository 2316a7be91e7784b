package roster

import (
	"errors"
	"strings"
	"time"
)

// Role is the single role attached to an identity.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher || r == RoleStudent
}

var (
	// ErrDuplicate means the username or email is already taken.
	ErrDuplicate = errors.New("roster: username or email already exists")

	// ErrNotFound means no identity matches.
	ErrNotFound = errors.New("roster: identity not found")

	// ErrBadCredentials means the login attempt did not match.
	ErrBadCredentials = errors.New("roster: invalid credentials")
)

// Identity is a uniquely identified human account with exactly one role.
// Identities are archived, never deleted.
type Identity struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Department string    `json:"department,omitempty"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewIdentity validates the basic shape of a new account.
func NewIdentity(username, name, email string, role Role, department string) (Identity, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return Identity{}, errors.New("roster: username and email required")
	}
	if !role.Valid() {
		return Identity{}, errors.New("roster: unknown role " + string(role))
	}
	return Identity{
		Username:   username,
		Name:       strings.TrimSpace(name),
		Email:      email,
		Role:       role,
		Department: strings.TrimSpace(department),
	}, nil
}

// UsernameFromName derives a username the way bulk imports do:
// lowercased, spaces collapsed to dots.
func UsernameFromName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), ".")
}
