package marks

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Per-subject score limits for the university pattern: internal out of 25,
// external out of 75.
const (
	MaxInternal = 25
	MaxExternal = 75
	MaxSubject  = MaxInternal + MaxExternal
)

// Disqualifying markers a teacher can enter instead of a score.
const (
	MarkerAbsent   = "AB"
	MarkerReappear = "RA"
)

// ErrOutOfRange means a mark exceeds its component maximum.
var ErrOutOfRange = errors.New("marks: score out of range")

// Entry is one subject cell in a report row: either a numeric score or a
// disqualifying marker.
type Entry struct {
	Score  float64 `json:"score"`
	Marker string  `json:"marker,omitempty"`
}

// Disqualified reports whether the cell carries a disqualifying marker.
func (e Entry) Disqualified() bool {
	return e.Marker != ""
}

// ParseEntry interprets a raw cell: "AB"/"RA" (any case) are markers,
// "internal+external" (e.g. "20+55") is a component pair validated against
// the per-component caps, anything else must be a number within the
// subject maximum.
func ParseEntry(raw string) (Entry, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	switch trimmed {
	case MarkerAbsent, MarkerReappear:
		return Entry{Marker: trimmed}, nil
	}
	if inner, outer, found := strings.Cut(trimmed, "+"); found {
		internal, err1 := strconv.ParseFloat(strings.TrimSpace(inner), 64)
		external, err2 := strconv.ParseFloat(strings.TrimSpace(outer), 64)
		if err1 != nil || err2 != nil {
			return Entry{}, fmt.Errorf("marks: unparseable cell %q", raw)
		}
		if err := ValidateComponents(internal, external); err != nil {
			return Entry{}, err
		}
		return Entry{Score: internal + external}, nil
	}
	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("marks: unparseable cell %q", raw)
	}
	if score < 0 || score > MaxSubject {
		return Entry{}, fmt.Errorf("%w: %g not in [0, %d]", ErrOutOfRange, score, MaxSubject)
	}
	return Entry{Score: score}, nil
}

// ValidateComponents checks an internal/external mark pair before any
// write; out-of-range components are rejected, never partially applied.
func ValidateComponents(internal, external float64) error {
	if internal < 0 || internal > MaxInternal {
		return fmt.Errorf("%w: internal %g not in [0, %d]", ErrOutOfRange, internal, MaxInternal)
	}
	if external < 0 || external > MaxExternal {
		return fmt.Errorf("%w: external %g not in [0, %d]", ErrOutOfRange, external, MaxExternal)
	}
	return nil
}

// Row is one student's line in a report.
type Row struct {
	Email      string           `json:"email"`
	Entries    map[string]Entry `json:"entries"`
	Total      float64          `json:"total"`
	Percentage float64          `json:"percentage"`
	// Rank is 1-based; 0 means unranked (disqualified in some subject).
	Rank int `json:"rank"`
}

// disqualified reports whether any subject cell carries a marker.
func (r Row) disqualified(subjects []string) bool {
	for _, s := range subjects {
		if r.Entries[s].Disqualified() {
			return true
		}
	}
	return false
}

// ComputeTotals fills Total and Percentage from the row's scored subjects.
// Percentage is taken against the full paper count, not just attempted ones.
func ComputeTotals(r *Row, subjects []string) {
	var total float64
	for _, s := range subjects {
		e := r.Entries[s]
		if !e.Disqualified() {
			total += e.Score
		}
	}
	r.Total = total
	if len(subjects) > 0 {
		r.Percentage = total / float64(len(subjects)*MaxSubject) * 100
	}
}

// Rank orders rows by descending total and assigns 1-based ranks. A row
// with a disqualifying marker in any subject is excluded from ranking and
// gets the sentinel rank 0; excluded rows sort after ranked ones.
func Rank(rows []Row, subjects []string) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].disqualified(subjects), rows[j].disqualified(subjects)
		if di != dj {
			return !di
		}
		if di {
			return false
		}
		return rows[i].Total > rows[j].Total
	})
	rank := 0
	for i := range rows {
		if rows[i].disqualified(subjects) {
			rows[i].Rank = 0
			continue
		}
		rank++
		rows[i].Rank = rank
	}
}
