package presence

import (
	"context"
	"testing"
	"time"
)

func TestBeginAndOnline(t *testing.T) {
	t.Parallel()

	tr := NewTracker(NewMemoryStore(), time.Minute)
	ctx := context.Background()

	online, err := tr.Online(ctx, "u1")
	if err != nil || online {
		t.Fatalf("Online() before connect = %v, %v; want false, nil", online, err)
	}

	rec, err := tr.Begin(ctx, "u1", "Mozilla/5.0", "")
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if rec.ConnectionID == "" {
		t.Fatal("Begin() returned empty connection id")
	}

	online, _ = tr.Online(ctx, "u1")
	if !online {
		t.Error("Online() after connect = false, want true")
	}

	if err := tr.End(ctx, rec); err != nil {
		t.Fatalf("End() error: %v", err)
	}
	online, _ = tr.Online(ctx, "u1")
	if online {
		t.Error("Online() after End = true, want false")
	}
}

func TestBeginReplacesPreviousConnection(t *testing.T) {
	t.Parallel()

	tr := NewTracker(NewMemoryStore(), time.Minute)
	ctx := context.Background()

	first, _ := tr.Begin(ctx, "u1", "tab", "")
	second, err := tr.Begin(ctx, "u1", "tab", first.ConnectionID)
	if err != nil {
		t.Fatalf("Begin(reconnect) error: %v", err)
	}

	recs, _ := tr.Snapshot(ctx, "u1")
	if len(recs) != 1 {
		t.Fatalf("Snapshot() has %d records after reconnect, want 1", len(recs))
	}
	if recs[0].ConnectionID != second.ConnectionID {
		t.Error("surviving record is not the reconnected one")
	}
}

func TestExpiryWithoutHeartbeat(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	tr := NewTracker(store, time.Minute)
	ctx := context.Background()

	rec, _ := tr.Begin(ctx, "u1", "tab", "")

	// Heartbeat keeps the record alive past its original expiry.
	base := time.Now()
	store.SetClock(func() time.Time { return base.Add(50 * time.Second) })
	if err := tr.Heartbeat(ctx, rec); err != nil {
		t.Fatalf("Heartbeat() error: %v", err)
	}
	store.SetClock(func() time.Time { return base.Add(100 * time.Second) })
	if online, _ := tr.Online(ctx, "u1"); !online {
		t.Error("record expired despite heartbeat")
	}

	// Without further heartbeats the record ages out.
	store.SetClock(func() time.Time { return base.Add(5 * time.Minute) })
	if online, _ := tr.Online(ctx, "u1"); online {
		t.Error("record still live long after heartbeats stopped")
	}
}

func TestTwoDevicesTrackedSeparately(t *testing.T) {
	t.Parallel()

	tr := NewTracker(NewMemoryStore(), time.Minute)
	ctx := context.Background()

	a, _ := tr.Begin(ctx, "u1", "laptop", "")
	_, _ = tr.Begin(ctx, "u1", "phone", "")

	recs, _ := tr.Snapshot(ctx, "u1")
	if len(recs) != 2 {
		t.Fatalf("Snapshot() has %d records, want 2", len(recs))
	}

	_ = tr.End(ctx, a)
	if online, _ := tr.Online(ctx, "u1"); !online {
		t.Error("identity offline while one device still connected")
	}
}
