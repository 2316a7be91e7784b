package geofence

import (
	"context"
	"database/sql"
)

// Repository persists the singleton geofence config in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GeofenceConfig returns the active config. No stored row means no
// constraint: a disabled zero config.
func (r *Repository) GeofenceConfig(ctx context.Context) (Config, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT lat, lng, radius_meters, enabled FROM geofence_config WHERE id = 1
	`)
	var cfg Config
	if err := row.Scan(&cfg.Lat, &cfg.Lng, &cfg.RadiusMeters, &cfg.Enabled); err != nil {
		if err == sql.ErrNoRows {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// Save upserts the singleton config.
func (r *Repository) Save(ctx context.Context, cfg Config) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO geofence_config (id, lat, lng, radius_meters, enabled, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			radius_meters = EXCLUDED.radius_meters,
			enabled = EXCLUDED.enabled,
			updated_at = NOW()
	`, cfg.Lat, cfg.Lng, cfg.RadiusMeters, cfg.Enabled)
	return err
}
