package geofence

import (
	"math"
)

const (
	earthRadiusMeters = 6371000.0

	// jitterEpsilonMeters pads the radius so a fix sitting exactly on the
	// boundary is not rejected by GPS noise.
	jitterEpsilonMeters = 1.0
)

// Config is the administrator-set circular allow-zone. One active config
// per deployment; Enabled=false imposes no constraint.
type Config struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius"`
	Enabled      bool    `json:"isEnabled"`
}

// Position is a device-reported fix. Accuracy is the radius of the 68%
// confidence circle in meters, as reported by the browser geolocation API.
type Position struct {
	Lat      float64 `json:"latitude"`
	Lng      float64 `json:"longitude"`
	Accuracy float64 `json:"accuracy"`
}

// Valid reports whether the position carries usable coordinates.
// NaN/Inf or out-of-range values make a fix unusable.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// LowConfidence reports whether the fix accuracy is worse than the given
// threshold (meters). Zero accuracy means the device did not report one.
func (p Position) LowConfidence(thresholdMeters float64) bool {
	return thresholdMeters > 0 && p.Accuracy > thresholdMeters
}

// IsWithinFence decides whether a reported position lies inside the zone.
// A disabled config always allows; an invalid position always denies,
// even when the fence is enabled the check never fails open.
func IsWithinFence(cfg Config, pos Position) bool {
	if !pos.Valid() {
		return false
	}
	if !cfg.Enabled {
		return true
	}
	d := Distance(cfg.Lat, cfg.Lng, pos.Lat, pos.Lng)
	return d <= cfg.RadiusMeters+jitterEpsilonMeters
}

// Distance calculates the great-circle distance in meters between two
// points on Earth using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
