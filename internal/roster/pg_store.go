package roster

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGStore persists identities in Postgres.
type PGStore struct {
	db *sql.DB
}

// NewPGStore creates a store over an open connection.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const identityColumns = `id, username, name, email, role, department, archived, created_at`

// Create stores a new identity; unique violations map to ErrDuplicate.
func (s *PGStore) Create(ctx context.Context, id Identity, passwordHash []byte) (Identity, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, name, email, role, department, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, id.ID, id.Username, id.Name, id.Email, id.Role, id.Department, passwordHash)
	if err := row.Scan(&id.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Identity{}, ErrDuplicate
		}
		return Identity{}, err
	}
	return id, nil
}

// FindByLogin matches username or email.
func (s *PGStore) FindByLogin(ctx context.Context, usernameOrEmail string) (Identity, []byte, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+identityColumns+`, password_hash
		FROM users WHERE username = $1 OR email = $1
	`, usernameOrEmail)
	var id Identity
	var hash []byte
	if err := row.Scan(&id.ID, &id.Username, &id.Name, &id.Email, &id.Role, &id.Department, &id.Archived, &id.CreatedAt, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, nil, ErrNotFound
		}
		return Identity{}, nil, err
	}
	return id, hash, nil
}

// Get returns one identity by id.
func (s *PGStore) Get(ctx context.Context, id string) (Identity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+identityColumns+` FROM users WHERE id = $1
	`, id)
	var ident Identity
	if err := row.Scan(&ident.ID, &ident.Username, &ident.Name, &ident.Email, &ident.Role, &ident.Department, &ident.Archived, &ident.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, err
	}
	return ident, nil
}

// List returns unarchived identities, optionally filtered by role.
func (s *PGStore) List(ctx context.Context, role Role) ([]Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE NOT archived`
	args := []any{}
	if role != "" {
		query += ` AND role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY username`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []Identity
	for rows.Next() {
		var ident Identity
		if err := rows.Scan(&ident.ID, &ident.Username, &ident.Name, &ident.Email, &ident.Role, &ident.Department, &ident.Archived, &ident.CreatedAt); err != nil {
			return nil, err
		}
		ids = append(ids, ident)
	}
	return ids, rows.Err()
}

// Archive retires an account; no rows are ever deleted.
func (s *PGStore) Archive(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET archived = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored hash.
func (s *PGStore) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
