package marks

import (
	"errors"
	"testing"
)

func row(email string, cells map[string]string) Row {
	entries := make(map[string]Entry, len(cells))
	for subject, raw := range cells {
		e, err := ParseEntry(raw)
		if err != nil {
			panic(err)
		}
		entries[subject] = e
	}
	return Row{Email: email, Entries: entries}
}

func TestRankExcludesDisqualified(t *testing.T) {
	t.Parallel()

	subjects := []string{"Math", "Physics"}
	rows := []Row{
		row("a@u.edu", map[string]string{"Math": "80", "Physics": "70"}),
		row("b@u.edu", map[string]string{"Math": "AB", "Physics": "90"}),
		row("c@u.edu", map[string]string{"Math": "60", "Physics": "60"}),
	}
	for i := range rows {
		ComputeTotals(&rows[i], subjects)
	}

	Rank(rows, subjects)

	byEmail := make(map[string]Row)
	for _, r := range rows {
		byEmail[r.Email] = r
	}

	if got := byEmail["b@u.edu"].Rank; got != 0 {
		t.Errorf("disqualified row rank = %d, want 0", got)
	}
	if got := byEmail["a@u.edu"]; got.Rank != 1 || got.Total != 150 {
		t.Errorf("top row = rank %d total %g, want rank 1 total 150", got.Rank, got.Total)
	}
	if got := byEmail["c@u.edu"]; got.Rank != 2 || got.Total != 120 {
		t.Errorf("second row = rank %d total %g, want rank 2 total 120", got.Rank, got.Total)
	}

	// Ranked rows come before unranked ones in display order.
	if rows[len(rows)-1].Email != "b@u.edu" {
		t.Errorf("disqualified row not sorted last: %+v", rows)
	}
}

func TestComputeTotalsSkipsMarkers(t *testing.T) {
	t.Parallel()

	subjects := []string{"Math", "Physics"}
	r := row("b@u.edu", map[string]string{"Math": "AB", "Physics": "90"})
	ComputeTotals(&r, subjects)

	if r.Total != 90 {
		t.Errorf("Total = %g, want 90", r.Total)
	}
	want := 90.0 / float64(len(subjects)*MaxSubject) * 100
	if r.Percentage != want {
		t.Errorf("Percentage = %g, want %g", r.Percentage, want)
	}
}

func TestParseEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    Entry
		wantErr bool
	}{
		{"80", Entry{Score: 80}, false},
		{" ab ", Entry{Marker: MarkerAbsent}, false},
		{"ra", Entry{Marker: MarkerReappear}, false},
		{"101", Entry{}, true},
		{"-1", Entry{}, true},
		{"eighty", Entry{}, true},
		{"20+55", Entry{Score: 75}, false},
		{" 25 + 75 ", Entry{Score: 100}, false},
		{"26+0", Entry{}, true},
		{"0+76", Entry{}, true},
		{"20+sixty", Entry{}, true},
	}
	for _, tt := range tests {
		got, err := ParseEntry(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEntry(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseEntry(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestValidateComponents(t *testing.T) {
	t.Parallel()

	if err := ValidateComponents(25, 75); err != nil {
		t.Errorf("ValidateComponents(25,75) = %v, want nil", err)
	}
	if err := ValidateComponents(26, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("internal over max = %v, want ErrOutOfRange", err)
	}
	if err := ValidateComponents(0, 76); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("external over max = %v, want ErrOutOfRange", err)
	}
	if err := ValidateComponents(-1, 10); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative internal = %v, want ErrOutOfRange", err)
	}
}

func TestRankTieOrderIsStable(t *testing.T) {
	t.Parallel()

	subjects := []string{"Math"}
	rows := []Row{
		row("first@u.edu", map[string]string{"Math": "50"}),
		row("second@u.edu", map[string]string{"Math": "50"}),
	}
	for i := range rows {
		ComputeTotals(&rows[i], subjects)
	}
	Rank(rows, subjects)

	if rows[0].Email != "first@u.edu" || rows[0].Rank != 1 || rows[1].Rank != 2 {
		t.Errorf("tie broke input order: %+v", rows)
	}
}
