package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eduonline/internal/geofence"
	"eduonline/internal/metrics"
)

// Status values mirror the stored register codes.
const (
	StatusPresent = "P"
	StatusAbsent  = "A"
	StatusHalfDay = "HL"
)

var (
	// ErrOutsideFence means the reported position failed the geofence check.
	ErrOutsideFence = errors.New("attendance: reported position outside the allowed zone")

	// ErrInvalidStatus means the status code is not one of P, A, HL.
	ErrInvalidStatus = errors.New("attendance: invalid status")

	// ErrInvalidDateKey means the date key is not a calendar day in YYYY-MM-DD form.
	ErrInvalidDateKey = errors.New("attendance: invalid date key")
)

// ConfigSource supplies the current geofence config at check-in time.
type ConfigSource interface {
	GeofenceConfig(ctx context.Context) (geofence.Config, error)
}

// Ledger is the persistence surface the service writes through.
// *Repository is the Postgres implementation; tests use MemoryLedger.
type Ledger interface {
	Upsert(ctx context.Context, rec Record) (Record, error)
	ListRange(ctx context.Context, startKey, endKey string) ([]Record, error)
	ListForIdentity(ctx context.Context, identityID, startKey, endKey string) ([]Record, error)
}

// Service coordinates attendance writes and the geofence gate in front of
// self check-ins.
type Service struct {
	repo   Ledger
	fences ConfigSource
}

// NewService creates a service backed by a ledger.
func NewService(repo Ledger, fences ConfigSource) *Service {
	return &Service{repo: repo, fences: fences}
}

// validStatus reports whether s is a known register code.
func validStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent || s == StatusHalfDay
}

// DateKey formats a time as the ledger's day key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseDateKey(key string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", key)
	if err != nil {
		return time.Time{}, ErrInvalidDateKey
	}
	return day, nil
}

// UpsertStatus merge-writes one status per (day, identity). Repeated calls
// with the same arguments are no-ops in effect.
func (s *Service) UpsertStatus(ctx context.Context, dateKey, identityID, status, remarks string, meta RecordMeta) (Record, error) {
	if !validStatus(status) {
		return Record{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	day, err := parseDateKey(dateKey)
	if err != nil {
		return Record{}, err
	}
	if identityID == "" {
		return Record{}, errors.New("attendance: identity id required")
	}
	rec := Record{
		DateStr:    dateKey,
		Date:       day,
		TeacherID:  identityID,
		Status:     status,
		Remarks:    remarks,
		RecordMeta: meta,
	}
	return s.repo.Upsert(ctx, rec)
}

// CheckIn is the self-service path: the geofence is evaluated synchronously
// before the write is accepted. A missing or unusable position fails
// closed regardless of the fence being enabled.
func (s *Service) CheckIn(ctx context.Context, identityID string, pos geofence.Position, meta RecordMeta) (Record, error) {
	cfg, err := s.fences.GeofenceConfig(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("attendance: load geofence config: %w", err)
	}
	if !geofence.IsWithinFence(cfg, pos) {
		metrics.CheckinsDenied.WithLabelValues("fence").Inc()
		return Record{}, ErrOutsideFence
	}
	return s.UpsertStatus(ctx, DateKey(time.Now().UTC()), identityID, StatusPresent, "", meta)
}

// QueryByDateRange returns records whose day falls in [startKey, endKey].
func (s *Service) QueryByDateRange(ctx context.Context, startKey, endKey string) ([]Record, error) {
	if _, err := parseDateKey(startKey); err != nil {
		return nil, err
	}
	if _, err := parseDateKey(endKey); err != nil {
		return nil, err
	}
	if startKey > endKey {
		return nil, errors.New("attendance: start after end")
	}
	return s.repo.ListRange(ctx, startKey, endKey)
}

// SummaryForIdentity rolls up one identity's records over a range.
func (s *Service) SummaryForIdentity(ctx context.Context, identityID, startKey, endKey string) (Summary, error) {
	if _, err := parseDateKey(startKey); err != nil {
		return Summary{}, err
	}
	if _, err := parseDateKey(endKey); err != nil {
		return Summary{}, err
	}
	if startKey > endKey {
		return Summary{}, errors.New("attendance: start after end")
	}
	recs, err := s.repo.ListForIdentity(ctx, identityID, startKey, endKey)
	if err != nil {
		return Summary{}, err
	}
	return Rollup(recs), nil
}
