package marks

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	inserted []Report
}

func (f *fakeStore) Insert(_ context.Context, rep Report) (Report, error) {
	rep.ID = "r1"
	rep.CreatedAt = time.Now()
	f.inserted = append(f.inserted, rep)
	return rep, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*Report, error) {
	for i := range f.inserted {
		if f.inserted[i].ID == id {
			return &f.inserted[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByTeacher(context.Context, string) ([]Report, error) {
	return f.inserted, nil
}

func TestSaveReportRanksRows(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := NewService(store)

	rep, err := svc.SaveReport(context.Background(), "Sem 3", "t@u.edu", "ws1", "",
		[]string{"Math", "Physics"},
		[]RawRow{
			{Email: "a@u.edu", Cells: map[string]string{"Math": "80", "Physics": "70"}},
			{Email: "b@u.edu", Cells: map[string]string{"Math": "AB", "Physics": "90"}},
			{Email: "c@u.edu", Cells: map[string]string{"Math": "60", "Physics": "60"}},
		})
	if err != nil {
		t.Fatalf("SaveReport() error: %v", err)
	}
	if rep.Status != "active" {
		t.Errorf("Status = %q, want active", rep.Status)
	}
	if rep.Rows[0].Email != "a@u.edu" || rep.Rows[0].Rank != 1 {
		t.Errorf("top row = %+v, want a@u.edu rank 1", rep.Rows[0])
	}
	if rep.Rows[len(rep.Rows)-1].Rank != 0 {
		t.Errorf("disqualified row not last with rank 0: %+v", rep.Rows)
	}
}

func TestSaveReportRejectsBadCellBeforeWrite(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.SaveReport(context.Background(), "Sem 3", "t@u.edu", "ws1", "",
		[]string{"Math"},
		[]RawRow{
			{Email: "a@u.edu", Cells: map[string]string{"Math": "120"}},
		})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("SaveReport(bad cell) = %v, want ErrOutOfRange", err)
	}
	if len(store.inserted) != 0 {
		t.Error("rejected report was still persisted")
	}
}

func TestSaveReportEnforcesComponentCaps(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := NewService(store)

	// 30 internal exceeds the 25 cap even though the sum is a legal total.
	_, err := svc.SaveReport(context.Background(), "Sem 3", "t@u.edu", "ws1", "",
		[]string{"Math"},
		[]RawRow{
			{Email: "a@u.edu", Cells: map[string]string{"Math": "30+60"}},
		})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("SaveReport(over-cap component) = %v, want ErrOutOfRange", err)
	}
	if len(store.inserted) != 0 {
		t.Error("rejected report was still persisted")
	}

	rep, err := svc.SaveReport(context.Background(), "Sem 3", "t@u.edu", "ws1", "",
		[]string{"Math"},
		[]RawRow{
			{Email: "a@u.edu", Cells: map[string]string{"Math": "20+55"}},
		})
	if err != nil {
		t.Fatalf("SaveReport(valid components) error: %v", err)
	}
	if rep.Rows[0].Total != 75 {
		t.Errorf("Total = %g, want 75", rep.Rows[0].Total)
	}
}

func TestSaveReportRequiresShape(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeStore{})
	ctx := context.Background()

	if _, err := svc.SaveReport(ctx, "", "t@u.edu", "ws1", "", []string{"Math"}, []RawRow{{Email: "a"}}); err == nil {
		t.Error("empty title accepted")
	}
	if _, err := svc.SaveReport(ctx, "T", "t@u.edu", "ws1", "", nil, []RawRow{{Email: "a"}}); err == nil {
		t.Error("no subjects accepted")
	}
	if _, err := svc.SaveReport(ctx, "T", "t@u.edu", "ws1", "", []string{"Math"}, nil); err == nil {
		t.Error("no rows accepted")
	}
}
