package marks

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Report is a saved ranking sheet for one teacher's workspace.
type Report struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	TeacherEmail string    `json:"teacherEmail"`
	WorkspaceID  string    `json:"workspaceId"`
	Subjects     []string  `json:"subjects"`
	Link         string    `json:"link,omitempty"`
	Rows         []Row     `json:"data"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repository persists reports in Postgres; subjects and rows are stored
// as jsonb documents.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a new report and returns it with id and timestamp set.
func (r *Repository) Insert(ctx context.Context, rep Report) (Report, error) {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.Status == "" {
		rep.Status = "active"
	}
	subjects, err := json.Marshal(rep.Subjects)
	if err != nil {
		return Report{}, err
	}
	rows, err := json.Marshal(rep.Rows)
	if err != nil {
		return Report{}, err
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO unom_reports (id, title, teacher_email, workspace_id, subjects, link, rows, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, rep.ID, rep.Title, rep.TeacherEmail, rep.WorkspaceID, subjects, rep.Link, rows, rep.Status)
	if err := row.Scan(&rep.CreatedAt); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// Get returns one report by id.
func (r *Repository) Get(ctx context.Context, id string) (*Report, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, teacher_email, workspace_id, subjects, link, rows, status, created_at
		FROM unom_reports WHERE id = $1
	`, id)
	rep, err := scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rep, nil
}

// ListByTeacher returns a teacher's reports, newest first.
func (r *Repository) ListByTeacher(ctx context.Context, teacherEmail string) ([]Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, teacher_email, workspace_id, subjects, link, rows, status, created_at
		FROM unom_reports WHERE teacher_email = $1 ORDER BY created_at DESC
	`, teacherEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reps []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reps = append(reps, *rep)
	}
	return reps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(s rowScanner) (*Report, error) {
	var rep Report
	var subjects, rowsJSON []byte
	if err := s.Scan(&rep.ID, &rep.Title, &rep.TeacherEmail, &rep.WorkspaceID, &subjects, &rep.Link, &rowsJSON, &rep.Status, &rep.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subjects, &rep.Subjects); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rowsJSON, &rep.Rows); err != nil {
		return nil, err
	}
	return &rep, nil
}
