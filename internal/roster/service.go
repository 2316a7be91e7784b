package roster

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store persists identities with their password hashes.
type Store interface {
	Create(ctx context.Context, id Identity, passwordHash []byte) (Identity, error)
	// FindByLogin matches username or email and returns the stored hash.
	FindByLogin(ctx context.Context, usernameOrEmail string) (Identity, []byte, error)
	Get(ctx context.Context, id string) (Identity, error)
	List(ctx context.Context, role Role) ([]Identity, error)
	Archive(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
}

// Service provisions and authenticates identities.
type Service struct {
	store Store
}

// NewService creates a service over a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create provisions a new account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, username, name, email, password string, role Role, department string) (Identity, error) {
	id, err := NewIdentity(username, name, email, role, department)
	if err != nil {
		return Identity{}, err
	}
	if password == "" {
		return Identity{}, ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, err
	}
	id.ID = uuid.NewString()
	return s.store.Create(ctx, id, hash)
}

// Authenticate verifies a login attempt. Archived accounts and unknown
// logins both come back as ErrBadCredentials; the distinction is not
// leaked to the caller of the login endpoint.
func (s *Service) Authenticate(ctx context.Context, usernameOrEmail, password string) (Identity, error) {
	id, hash, err := s.store.FindByLogin(ctx, usernameOrEmail)
	if err != nil {
		return Identity{}, ErrBadCredentials
	}
	if id.Archived {
		return Identity{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return Identity{}, ErrBadCredentials
	}
	return id, nil
}

// Get returns one identity by id.
func (s *Service) Get(ctx context.Context, id string) (Identity, error) {
	return s.store.Get(ctx, id)
}

// List returns identities, optionally filtered by role.
func (s *Service) List(ctx context.Context, role Role) ([]Identity, error) {
	return s.store.List(ctx, role)
}

// Archive retires an account; records referencing it stay intact.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.store.Archive(ctx, id)
}

// ChangePassword replaces the stored hash after verifying the old password.
func (s *Service) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	ident, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.Authenticate(ctx, ident.Username, oldPassword); err != nil {
		return err
	}
	if newPassword == "" {
		return ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}
