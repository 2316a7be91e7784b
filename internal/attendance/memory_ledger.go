package attendance

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryLedger is a process-local Ledger for tests, with the same
// merge-write semantics as the Postgres repository.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]Record // key: dateStr + "_" + teacherID
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]Record)}
}

// Upsert merge-writes a record keyed by (dateStr, teacherID).
func (l *MemoryLedger) Upsert(_ context.Context, rec Record) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec.UpdatedAt = time.Now().UTC()
	l.records[rec.DateStr+"_"+rec.TeacherID] = rec
	return rec, nil
}

// ListRange returns records in the inclusive date-key range.
func (l *MemoryLedger) ListRange(_ context.Context, startKey, endKey string) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var recs []Record
	for _, rec := range l.records {
		if rec.DateStr >= startKey && rec.DateStr <= endKey {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].DateStr != recs[j].DateStr {
			return recs[i].DateStr < recs[j].DateStr
		}
		return recs[i].TeacherID < recs[j].TeacherID
	})
	return recs, nil
}

// ListForIdentity returns one identity's records in the inclusive range.
func (l *MemoryLedger) ListForIdentity(_ context.Context, identityID, startKey, endKey string) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var recs []Record
	for _, rec := range l.records {
		if rec.TeacherID == identityID && rec.DateStr >= startKey && rec.DateStr <= endKey {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].DateStr < recs[j].DateStr
	})
	return recs, nil
}

// Len reports the number of stored records.
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
