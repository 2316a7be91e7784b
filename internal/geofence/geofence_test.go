package geofence

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	// Chennai Central to a point ~1km north (1 degree latitude ~ 111.19km).
	anchor := Position{Lat: 13.0827, Lng: 80.2707}
	north1km := Position{Lat: anchor.Lat + 1.0/111.194, Lng: anchor.Lng}

	d := Distance(anchor.Lat, anchor.Lng, north1km.Lat, north1km.Lng)
	if math.Abs(d-1000) > 5 {
		t.Errorf("Distance() = %.1fm, want ~1000m", d)
	}

	if d := Distance(anchor.Lat, anchor.Lng, anchor.Lat, anchor.Lng); d != 0 {
		t.Errorf("Distance(self) = %f, want 0", d)
	}
}

func TestIsWithinFence(t *testing.T) {
	t.Parallel()

	cfg := Config{Lat: 13.0827, Lng: 80.2707, RadiusMeters: 100, Enabled: true}

	tests := []struct {
		name string
		cfg  Config
		pos  Position
		want bool
	}{
		{"at anchor", cfg, Position{Lat: 13.0827, Lng: 80.2707}, true},
		{"1km away denied", cfg, Position{Lat: 13.0827 + 1.0/111.194, Lng: 80.2707}, false},
		{"disabled fence allows anywhere", Config{Lat: 13.0827, Lng: 80.2707, RadiusMeters: 100}, Position{Lat: 51.5, Lng: -0.12}, true},
		{"zero radius admits anchor via epsilon", Config{Lat: 13.0827, Lng: 80.2707, RadiusMeters: 0, Enabled: true}, Position{Lat: 13.0827, Lng: 80.2707}, true},
		{"NaN coordinates fail closed", cfg, Position{Lat: math.NaN(), Lng: 80.2707}, false},
		{"NaN fails closed even when disabled", Config{}, Position{Lat: math.NaN(), Lng: math.NaN()}, false},
		{"out of range latitude fails closed", cfg, Position{Lat: 213.0, Lng: 80.2707}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsWithinFence(tt.cfg, tt.pos); got != tt.want {
				t.Errorf("IsWithinFence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLowConfidence(t *testing.T) {
	t.Parallel()

	if (Position{Accuracy: 2500}).LowConfidence(2000) != true {
		t.Error("accuracy 2500m should be low confidence at 2000m threshold")
	}
	if (Position{Accuracy: 50}).LowConfidence(2000) != false {
		t.Error("accuracy 50m should not be low confidence")
	}
	if (Position{Accuracy: 5000}).LowConfidence(0) != false {
		t.Error("zero threshold disables the low-confidence flag")
	}
}
