package marks

import (
	"context"
	"errors"
	"fmt"
)

// ReportStore is the persistence surface for saved reports.
type ReportStore interface {
	Insert(ctx context.Context, rep Report) (Report, error)
	Get(ctx context.Context, id string) (*Report, error)
	ListByTeacher(ctx context.Context, teacherEmail string) ([]Report, error)
}

// Service validates, ranks and persists reports.
type Service struct {
	repo ReportStore
}

// NewService creates a service over a report store.
func NewService(repo ReportStore) *Service {
	return &Service{repo: repo}
}

// RawRow is the wire shape of one submitted row: raw cells keyed by subject.
type RawRow struct {
	Email string            `json:"email"`
	Cells map[string]string `json:"cells"`
}

// SaveReport validates every cell, computes totals and ranks, then
// persists the report. Any invalid cell rejects the whole report before
// a single write.
func (s *Service) SaveReport(ctx context.Context, title, teacherEmail, workspaceID, link string, subjects []string, raw []RawRow) (Report, error) {
	if title == "" {
		return Report{}, errors.New("marks: title required")
	}
	if len(subjects) == 0 {
		return Report{}, errors.New("marks: at least one subject required")
	}
	if len(raw) == 0 {
		return Report{}, errors.New("marks: no rows to save")
	}

	rows := make([]Row, 0, len(raw))
	for _, rr := range raw {
		row := Row{Email: rr.Email, Entries: make(map[string]Entry, len(subjects))}
		for _, subject := range subjects {
			cell, ok := rr.Cells[subject]
			if !ok || cell == "" {
				// An empty cell scores zero rather than failing the sheet.
				row.Entries[subject] = Entry{}
				continue
			}
			entry, err := ParseEntry(cell)
			if err != nil {
				return Report{}, fmt.Errorf("row %s, subject %s: %w", rr.Email, subject, err)
			}
			row.Entries[subject] = entry
		}
		ComputeTotals(&row, subjects)
		rows = append(rows, row)
	}
	Rank(rows, subjects)

	return s.repo.Insert(ctx, Report{
		Title:        title,
		TeacherEmail: teacherEmail,
		WorkspaceID:  workspaceID,
		Subjects:     subjects,
		Link:         link,
		Rows:         rows,
	})
}

// GetReport returns one report by id, nil when absent.
func (s *Service) GetReport(ctx context.Context, id string) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// ListReports returns a teacher's reports, newest first.
func (s *Service) ListReports(ctx context.Context, teacherEmail string) ([]Report, error) {
	return s.repo.ListByTeacher(ctx, teacherEmail)
}
