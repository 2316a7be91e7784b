// Package coursework covers the notification-relevant surface of exams
// and assignment submissions.
package coursework

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Exam is a scheduled test distributed as an external form link.
type Exam struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Duration  string    `json:"duration,omitempty"`
	CreatedBy string    `json:"createdBy"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submission statuses.
const (
	StatusPending  = "Pending"
	StatusReviewed = "Reviewed"
)

// Submission is one student's assignment hand-in.
type Submission struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Status      string    `json:"status"`
	Grade       string    `json:"grade,omitempty"`
	Feedback    string    `json:"feedback,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Repository persists exams and submissions in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertExam stores a new exam record.
func (r *Repository) InsertExam(ctx context.Context, e Exam) (Exam, error) {
	if e.Title == "" || e.Link == "" {
		return Exam{}, errors.New("coursework: exam title and link required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO exams (id, title, link, duration, created_by, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, e.ID, e.Title, e.Link, e.Duration, e.CreatedBy, e.IsActive)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return Exam{}, err
	}
	return e, nil
}

// ListExams returns exams, optionally only active ones, newest first.
func (r *Repository) ListExams(ctx context.Context, activeOnly bool) ([]Exam, error) {
	query := `SELECT id, title, link, duration, created_by, is_active, created_at FROM exams`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Exam
	for rows.Next() {
		var e Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Link, &e.Duration, &e.CreatedBy, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertSubmission stores a new hand-in with status Pending.
func (r *Repository) InsertSubmission(ctx context.Context, s Submission) (Submission, error) {
	if s.StudentID == "" || s.Link == "" {
		return Submission{}, errors.New("coursework: student and link required")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Status = StatusPending
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO submissions (id, student_id, title, link, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING submitted_at
	`, s.ID, s.StudentID, s.Title, s.Link, s.Status)
	if err := row.Scan(&s.SubmittedAt); err != nil {
		return Submission{}, err
	}
	return s, nil
}

// Grade marks a submission reviewed with a grade and optional feedback.
func (r *Repository) Grade(ctx context.Context, id, grade, feedback string) (*Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE submissions
		SET status = $2, grade = $3, feedback = $4
		WHERE id = $1
		RETURNING id, student_id, title, link, status, grade, feedback, submitted_at
	`, id, StatusReviewed, grade, feedback)
	var s Submission
	var g, f sql.NullString
	if err := row.Scan(&s.ID, &s.StudentID, &s.Title, &s.Link, &s.Status, &g, &f, &s.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.Grade, s.Feedback = g.String, f.String
	return &s, nil
}

// ListSubmissions returns hand-ins, optionally for one student.
func (r *Repository) ListSubmissions(ctx context.Context, studentID string) ([]Submission, error) {
	query := `SELECT id, student_id, title, link, status, grade, feedback, submitted_at FROM submissions`
	args := []any{}
	if studentID != "" {
		query += ` WHERE student_id = $1`
		args = append(args, studentID)
	}
	query += ` ORDER BY submitted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		var s Submission
		var g, f sql.NullString
		if err := rows.Scan(&s.ID, &s.StudentID, &s.Title, &s.Link, &s.Status, &g, &f, &s.SubmittedAt); err != nil {
			return nil, err
		}
		s.Grade, s.Feedback = g.String, f.String
		out = append(out, s)
	}
	return out, rows.Err()
}
