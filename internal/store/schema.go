package store

import "context"

// Migrate creates the portal schema if it does not exist yet. Statements
// are idempotent so every process can run this at startup.
func (d *DB) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT UNIQUE NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		email         TEXT UNIQUE NOT NULL,
		role          TEXT NOT NULL,
		department    TEXT NOT NULL DEFAULT '',
		password_hash BYTEA NOT NULL,
		archived      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS teacher_attendance (
		date_str     TEXT NOT NULL,
		teacher_id   TEXT NOT NULL,
		date         TIMESTAMPTZ NOT NULL,
		status       TEXT NOT NULL,
		remarks      TEXT NOT NULL DEFAULT '',
		teacher_name TEXT NOT NULL DEFAULT '',
		department   TEXT NOT NULL DEFAULT '',
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (date_str, teacher_id)
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_teacher ON teacher_attendance(teacher_id);

	CREATE TABLE IF NOT EXISTS geofence_config (
		id            INT PRIMARY KEY,
		lat           DOUBLE PRECISION NOT NULL,
		lng           DOUBLE PRECISION NOT NULL,
		radius_meters DOUBLE PRECISION NOT NULL,
		enabled       BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS unom_reports (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		teacher_email TEXT NOT NULL,
		workspace_id  TEXT NOT NULL DEFAULT '',
		subjects      JSONB NOT NULL,
		link          TEXT NOT NULL DEFAULT '',
		rows          JSONB NOT NULL,
		status        TEXT NOT NULL DEFAULT 'active',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_reports_teacher ON unom_reports(teacher_email);

	CREATE TABLE IF NOT EXISTS announcements (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		body       TEXT NOT NULL DEFAULT '',
		link       TEXT NOT NULL DEFAULT '',
		audience   JSONB NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS exams (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		link       TEXT NOT NULL,
		duration   TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		is_active  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id           TEXT PRIMARY KEY,
		student_id   TEXT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		link         TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'Pending',
		grade        TEXT,
		feedback     TEXT,
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_student ON submissions(student_id);
	`
	_, err := d.Client.ExecContext(ctx, schema)
	return err
}
