package announce

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Audience selects who a notification reaches: "all", a role name, or an
// explicit list of identity ids.
type Audience struct {
	Role        string   `json:"role,omitempty"`
	IdentityIDs []string `json:"identityIds,omitempty"`
}

// Announcement is one portal-wide or scoped notice.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	Audience  Audience  `json:"audience"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository persists announcements in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores an announcement.
func (r *Repository) Insert(ctx context.Context, a Announcement) (Announcement, error) {
	if a.Title == "" {
		return Announcement{}, errors.New("announce: title required")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	audience, err := json.Marshal(a.Audience)
	if err != nil {
		return Announcement{}, err
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO announcements (id, title, body, link, audience, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, a.ID, a.Title, a.Body, a.Link, audience, a.CreatedBy)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return Announcement{}, err
	}
	return a, nil
}

// List returns announcements newest first, capped at limit.
func (r *Repository) List(ctx context.Context, limit int) ([]Announcement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, body, link, audience, created_by, created_at
		FROM announcements ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Announcement
	for rows.Next() {
		var a Announcement
		var audience []byte
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.Link, &audience, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(audience, &a.Audience); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
