package attendance

import (
	"context"
	"errors"
	"math"
	"testing"

	"eduonline/internal/geofence"
)

type staticFence struct {
	cfg geofence.Config
}

func (f staticFence) GeofenceConfig(context.Context) (geofence.Config, error) {
	return f.cfg, nil
}

func TestUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	svc := NewService(ledger, staticFence{})
	ctx := context.Background()

	meta := RecordMeta{TeacherName: "R. Kumar", Department: "CS"}
	first, err := svc.UpsertStatus(ctx, "2026-08-03", "t1", StatusPresent, "", meta)
	if err != nil {
		t.Fatalf("UpsertStatus() error: %v", err)
	}
	second, err := svc.UpsertStatus(ctx, "2026-08-03", "t1", StatusPresent, "", meta)
	if err != nil {
		t.Fatalf("UpsertStatus() repeat error: %v", err)
	}

	if ledger.Len() != 1 {
		t.Errorf("ledger has %d records after repeated upsert, want 1", ledger.Len())
	}
	if first.Status != StatusPresent || second.Status != StatusPresent {
		t.Error("upsert did not preserve status")
	}

	// A later write for the same key merges over the earlier one.
	if _, err := svc.UpsertStatus(ctx, "2026-08-03", "t1", StatusHalfDay, "left early", meta); err != nil {
		t.Fatalf("UpsertStatus() overwrite error: %v", err)
	}
	recs, _ := svc.QueryByDateRange(ctx, "2026-08-03", "2026-08-03")
	if len(recs) != 1 || recs[0].Status != StatusHalfDay || recs[0].Remarks != "left early" {
		t.Errorf("overwrite result = %+v, want single HL record", recs)
	}
}

func TestUpsertValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryLedger(), staticFence{})
	ctx := context.Background()

	if _, err := svc.UpsertStatus(ctx, "2026-08-03", "t1", "X", "", RecordMeta{}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bad status error = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.UpsertStatus(ctx, "03/08/2026", "t1", StatusPresent, "", RecordMeta{}); !errors.Is(err, ErrInvalidDateKey) {
		t.Errorf("bad date error = %v, want ErrInvalidDateKey", err)
	}
}

func TestCheckInFailsClosedOnBadPosition(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	svc := NewService(ledger, staticFence{cfg: geofence.Config{
		Lat: 13.0827, Lng: 80.2707, RadiusMeters: 100, Enabled: true,
	}})
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "t1", geofence.Position{Lat: math.NaN(), Lng: math.NaN()}, RecordMeta{})
	if !errors.Is(err, ErrOutsideFence) {
		t.Fatalf("CheckIn(NaN position) = %v, want ErrOutsideFence", err)
	}
	if ledger.Len() != 0 {
		t.Error("denied check-in still wrote a record")
	}
}

func TestCheckInInsideFence(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	svc := NewService(ledger, staticFence{cfg: geofence.Config{
		Lat: 13.0827, Lng: 80.2707, RadiusMeters: 100, Enabled: true,
	}})
	ctx := context.Background()

	rec, err := svc.CheckIn(ctx, "t1", geofence.Position{Lat: 13.0827, Lng: 80.2707, Accuracy: 15}, RecordMeta{TeacherName: "R. Kumar"})
	if err != nil {
		t.Fatalf("CheckIn() error: %v", err)
	}
	if rec.Status != StatusPresent {
		t.Errorf("check-in status = %q, want P", rec.Status)
	}
}

func TestRollupPercentage(t *testing.T) {
	t.Parallel()

	var recs []Record
	add := func(status string, n int) {
		for i := 0; i < n; i++ {
			recs = append(recs, Record{Status: status})
		}
	}
	add(StatusPresent, 10)
	add(StatusAbsent, 2)
	add(StatusHalfDay, 2)

	s := Rollup(recs)
	if s.PresentCount != 10 || s.AbsentCount != 2 || s.HalfDayCount != 2 || s.Total != 14 {
		t.Fatalf("Rollup counts = %+v", s)
	}
	want := (10 + 0.5*2) / 14.0 * 100
	if math.Abs(s.Percentage-want) > 1e-9 {
		t.Errorf("Percentage = %f, want %f", s.Percentage, want)
	}

	if s := Rollup(nil); s.Percentage != 0 || s.Total != 0 {
		t.Errorf("Rollup(nil) = %+v, want zero summary", s)
	}
}

func TestSummaryForIdentityScopesToIdentity(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryLedger(), staticFence{})
	ctx := context.Background()

	seed := func(day, id, status string) {
		if _, err := svc.UpsertStatus(ctx, day, id, status, "", RecordMeta{}); err != nil {
			t.Fatalf("seed %s/%s: %v", day, id, err)
		}
	}
	seed("2026-08-01", "t1", StatusPresent)
	seed("2026-08-02", "t1", StatusAbsent)
	seed("2026-08-01", "t2", StatusPresent)
	seed("2026-08-02", "t2", StatusPresent)

	s, err := svc.SummaryForIdentity(ctx, "t1", "2026-08-01", "2026-08-02")
	if err != nil {
		t.Fatalf("SummaryForIdentity() error: %v", err)
	}
	if s.Total != 2 || s.PresentCount != 1 || s.AbsentCount != 1 {
		t.Errorf("summary mixed in another identity's records: %+v", s)
	}

	if _, err := svc.SummaryForIdentity(ctx, "t1", "2026-08-02", "2026-08-01"); err == nil {
		t.Error("inverted range accepted, want error")
	}
}

func TestQueryByDateRangeInclusive(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryLedger(), staticFence{})
	ctx := context.Background()

	for _, day := range []string{"2026-08-01", "2026-08-02", "2026-08-03"} {
		if _, err := svc.UpsertStatus(ctx, day, "t1", StatusPresent, "", RecordMeta{}); err != nil {
			t.Fatalf("seed %s: %v", day, err)
		}
	}

	recs, err := svc.QueryByDateRange(ctx, "2026-08-01", "2026-08-02")
	if err != nil {
		t.Fatalf("QueryByDateRange() error: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("range returned %d records, want 2 (inclusive bounds)", len(recs))
	}

	if _, err := svc.QueryByDateRange(ctx, "2026-08-03", "2026-08-01"); err == nil {
		t.Error("inverted range accepted, want error")
	}
}
