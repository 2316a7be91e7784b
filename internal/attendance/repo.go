package attendance

import (
	"context"
	"database/sql"
	"time"
)

// RecordMeta carries denormalized identity fields stored alongside the
// status, matching the ledger's document shape.
type RecordMeta struct {
	TeacherName string `json:"teacherName"`
	Department  string `json:"department"`
}

// Record is one identity's status for one calendar day. The key
// (date_str, teacher_id) is unique; writes are idempotent merges.
type Record struct {
	DateStr   string    `json:"dateStr"`
	Date      time.Time `json:"date"`
	TeacherID string    `json:"teacherId"`
	Status    string    `json:"status"`
	Remarks   string    `json:"remarks,omitempty"`
	RecordMeta
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert merge-writes a record keyed by (date_str, teacher_id).
func (r *Repository) Upsert(ctx context.Context, rec Record) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO teacher_attendance (date_str, date, teacher_id, teacher_name, department, status, remarks, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		ON CONFLICT (date_str, teacher_id) DO UPDATE SET
			status = EXCLUDED.status,
			remarks = EXCLUDED.remarks,
			teacher_name = EXCLUDED.teacher_name,
			department = EXCLUDED.department,
			updated_at = NOW()
		RETURNING updated_at
	`, rec.DateStr, rec.Date, rec.TeacherID, rec.TeacherName, rec.Department, rec.Status, rec.Remarks)
	if err := row.Scan(&rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListRange returns all records whose date key falls in the inclusive range.
func (r *Repository) ListRange(ctx context.Context, startKey, endKey string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_str, date, teacher_id, teacher_name, department, status, remarks, updated_at
		FROM teacher_attendance
		WHERE date_str >= $1 AND date_str <= $2
		ORDER BY date_str, teacher_id
	`, startKey, endKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.DateStr, &rec.Date, &rec.TeacherID, &rec.TeacherName, &rec.Department, &rec.Status, &rec.Remarks, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ListForIdentity returns one identity's records in the inclusive range.
func (r *Repository) ListForIdentity(ctx context.Context, identityID, startKey, endKey string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_str, date, teacher_id, teacher_name, department, status, remarks, updated_at
		FROM teacher_attendance
		WHERE teacher_id = $1 AND date_str >= $2 AND date_str <= $3
		ORDER BY date_str
	`, identityID, startKey, endKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.DateStr, &rec.Date, &rec.TeacherID, &rec.TeacherName, &rec.Department, &rec.Status, &rec.Remarks, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
